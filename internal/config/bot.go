package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

var ErrMissingToken = errors.New("lichess token is required")

type BotConfig struct {
	Token       string          `env:"LICHESS_TOKEN" yaml:"token"`
	URL         string          `env:"LICHESS_URL" envDefault:"https://lichess.org/" yaml:"url"`
	AbortTime   int             `env:"ABORT_TIME" envDefault:"20" yaml:"abort_time"`
	ConfigPath  string          `env:"CONFIG_PATH" yaml:"-"`
	PostgresDSN string          `env:"POSTGRES_DSN" yaml:"postgres_dsn"`
	StatusAddr  string          `env:"STATUS_ADDR" yaml:"status_addr"`
	Engine      EngineConfig    `envPrefix:"ENGINE_" yaml:"engine"`
	Challenge   ChallengeConfig `envPrefix:"CHALLENGE_" yaml:"challenge"`
	Notify      NotifyConfig    `envPrefix:"NOTIFY_" yaml:"notify"`
}

type EngineConfig struct {
	Path       string            `env:"PATH" envDefault:"stockfish" yaml:"path"`
	UCIOptions map[string]string `env:"UCI_OPTIONS" yaml:"uci_options"`
}

type ChallengeConfig struct {
	Concurrency  int      `env:"CONCURRENCY" envDefault:"1" yaml:"concurrency"`
	Variants     []string `env:"VARIANTS" envDefault:"standard" yaml:"variants"`
	TimeControls []string `env:"TIME_CONTROLS" envDefault:"bullet,blitz,rapid,classical" yaml:"time_controls"`
	Modes        []string `env:"MODES" envDefault:"casual,rated" yaml:"modes"`
	AcceptBot    bool     `env:"ACCEPT_BOT" envDefault:"false" yaml:"accept_bot"`
}

// NotifyConfig configures optional chat webhooks for challenge and game
// updates. Notifications are off when no webhook is set.
type NotifyConfig struct {
	DiscordWebhook string `env:"DISCORD_WEBHOOK" yaml:"discord_webhook"`
	FeishuWebhook  string `env:"FEISHU_WEBHOOK" yaml:"feishu_webhook"`
	FeishuSecret   string `env:"FEISHU_SECRET" yaml:"feishu_secret"`
	RetryMax       int    `env:"RETRY_MAX" envDefault:"3" yaml:"retry_max"`
	RetryBaseMS    int    `env:"RETRY_BASE_MS" envDefault:"500" yaml:"retry_base_ms"`
	QueueSize      int    `env:"QUEUE_SIZE" envDefault:"64" yaml:"queue_size"`
}

func (c BotConfig) AbortDuration() time.Duration {
	return time.Duration(c.AbortTime) * time.Second
}

// LoadBot reads the environment, then overlays the YAML file at path (or
// CONFIG_PATH when path is empty). Keys present in the file win.
func LoadBot(path string) (BotConfig, error) {
	var cfg BotConfig
	if err := env.Parse(&cfg); err != nil {
		return BotConfig{}, fmt.Errorf("parse env: %w", err)
	}
	if strings.TrimSpace(path) == "" {
		path = cfg.ConfigPath
	}
	if path = strings.TrimSpace(path); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return BotConfig{}, fmt.Errorf("read config path %q: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return BotConfig{}, fmt.Errorf("parse config %q: %w", path, err)
		}
		cfg.ConfigPath = path
	}
	if strings.TrimSpace(cfg.Token) == "" {
		return BotConfig{}, ErrMissingToken
	}
	if cfg.AbortTime <= 0 {
		cfg.AbortTime = 20
	}
	return cfg, nil
}
