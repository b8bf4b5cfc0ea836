package notify

import (
	"strings"
	"time"

	"lichess-bot/internal/config"
)

type Target struct {
	Platform string
	Endpoint string
	Secret   string
}

type Config struct {
	Targets        []Target
	RetryMax       int
	RetryBase      time.Duration
	QueueSize      int
	RequestTimeout time.Duration
	// GameURL links a game id to its page on the platform.
	GameURL func(gameID string) string
}

func ConfigFromBot(cfg config.NotifyConfig, gameURL func(string) string) Config {
	out := Config{
		RetryMax:       cfg.RetryMax,
		RetryBase:      time.Duration(cfg.RetryBaseMS) * time.Millisecond,
		QueueSize:      cfg.QueueSize,
		RequestTimeout: 5 * time.Second,
		GameURL:        gameURL,
	}
	if endpoint := strings.TrimSpace(cfg.DiscordWebhook); endpoint != "" {
		out.Targets = append(out.Targets, Target{Platform: "discord", Endpoint: endpoint})
	}
	if endpoint := strings.TrimSpace(cfg.FeishuWebhook); endpoint != "" {
		out.Targets = append(out.Targets, Target{Platform: "feishu", Endpoint: endpoint, Secret: cfg.FeishuSecret})
	}
	return out
}

func (c Config) Enabled() bool {
	return len(c.Targets) > 0
}
