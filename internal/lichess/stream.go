package lichess

import (
	"bufio"
	"io"
)

const maxLineBytes = 1 << 20

// Stream yields newline-delimited messages from a long-lived response body.
// An empty line is a keep-alive and is returned as a zero-length slice.
type Stream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
}

func NewStream(body io.ReadCloser) *Stream {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 4096), maxLineBytes)
	return &Stream{body: body, scanner: scanner}
}

// Next returns the next line without its terminator, or io.EOF once the
// platform closes the stream.
func (s *Stream) Next() ([]byte, error) {
	if s.scanner.Scan() {
		line := s.scanner.Bytes()
		out := make([]byte, len(line))
		copy(out, line)
		return trimCR(out), nil
	}
	if err := s.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

func (s *Stream) Close() error {
	return s.body.Close()
}

func trimCR(line []byte) []byte {
	for len(line) > 0 && (line[len(line)-1] == '\r' || line[len(line)-1] == ' ') {
		line = line[:len(line)-1]
	}
	return line
}
