package lichess

import (
	"io"
	"net/http"
	"strings"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestClient(fn roundTripFunc) *Client {
	httpClient := &http.Client{Transport: fn}
	return &Client{
		baseURL:   "https://lichess.test/",
		token:     "tok",
		userAgent: "lichess-bot/test",
		inner:     httpClient,
		streaming: httpClient,
	}
}

func textResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

type errReader struct {
	err error
}

func (r errReader) Read([]byte) (int, error) {
	return 0, r.err
}

func stringsReader(s string) io.Reader {
	return strings.NewReader(s)
}
