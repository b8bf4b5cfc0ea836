package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"lichess-bot/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	writerMu sync.RWMutex
	writer   io.Writer = os.Stdout
)

// Init configures the global zerolog logger. When cfg.File is set, output is
// appended to that file, which rotates once it grows past cfg.MaxMB.
func Init(cfg config.LogConfig) error {
	level := zerolog.InfoLevel
	if v := strings.TrimSpace(cfg.Level); v != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(v)); err == nil {
			level = parsed
		}
	}

	var sink io.Writer = os.Stdout
	if path := strings.TrimSpace(cfg.File); path != "" {
		fileWriter, err := newSizeLimitedWriter(path, cfg.MaxMB, cfg.MaxBackups)
		if err != nil {
			return err
		}
		sink = fileWriter
	}
	setWriter(sink)

	var output io.Writer = sink
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: sink, NoColor: sink != io.Writer(os.Stdout)}
	}

	zerolog.SetGlobalLevel(level)
	fields := zerolog.New(output).With().Timestamp()
	if component := strings.TrimSpace(cfg.Component); component != "" {
		fields = fields.Str("component", component)
	}
	logger := fields.Logger()
	if cfg.SampleEvery > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(cfg.SampleEvery)})
	}
	log.Logger = logger
	return nil
}

// Writer returns the sink chosen by Init so other loggers can share it.
func Writer() io.Writer {
	writerMu.RLock()
	defer writerMu.RUnlock()
	return writer
}

func setWriter(w io.Writer) {
	writerMu.Lock()
	defer writerMu.Unlock()
	writer = w
}
