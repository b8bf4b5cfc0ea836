package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// TestConfig points integration tests at optional external dependencies.
// Tests that need one skip when it is not configured.
type TestConfig struct {
	PostgresDSN string `env:"TEST_POSTGRES_DSN"`
	EnginePath  string `env:"TEST_ENGINE_PATH" envDefault:"stockfish"`
}

func LoadTest() (TestConfig, error) {
	var cfg TestConfig
	if err := env.Parse(&cfg); err != nil {
		return TestConfig{}, fmt.Errorf("parse test env: %w", err)
	}
	return cfg, nil
}
