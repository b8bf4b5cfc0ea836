package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

type LogConfig struct {
	Level       string `env:"LOG_LEVEL" envDefault:"info"`
	Pretty      bool   `env:"LOG_PRETTY" envDefault:"false"`
	SampleEvery int    `env:"LOG_SAMPLE_EVERY" envDefault:"0"`
	File        string `env:"LOG_FILE"`
	MaxMB       int    `env:"LOG_MAX_MB" envDefault:"10"`
	MaxBackups  int    `env:"LOG_MAX_BACKUPS" envDefault:"1"`
	Component   string `env:"LOG_COMPONENT" envDefault:"lichess-bot"`
}

func LoadLog() (LogConfig, error) {
	var cfg LogConfig
	if err := env.Parse(&cfg); err != nil {
		return LogConfig{}, fmt.Errorf("parse log env: %w", err)
	}
	return cfg, nil
}

// WithFlags applies the command line switches on top of the environment:
// verbose forces debug level and a non-empty file redirects output.
func (c LogConfig) WithFlags(verbose bool, file string) LogConfig {
	if verbose {
		c.Level = "debug"
	}
	if file = strings.TrimSpace(file); file != "" {
		c.File = file
	}
	return c
}
