package bot

import (
	"strings"

	"lichess-bot/internal/config"
	"lichess-bot/internal/lichess"
)

// Acceptor decides whether a challenge is worth playing.
type Acceptor interface {
	Accept(c lichess.Challenge) bool
}

type ChallengePolicy struct {
	Variants     []string
	TimeControls []string
	Modes        []string
	AcceptBot    bool
}

func NewChallengePolicy(cfg config.ChallengeConfig) ChallengePolicy {
	return ChallengePolicy{
		Variants:     cfg.Variants,
		TimeControls: cfg.TimeControls,
		Modes:        cfg.Modes,
		AcceptBot:    cfg.AcceptBot,
	}
}

func (p ChallengePolicy) Accept(c lichess.Challenge) bool {
	if c.ChallengerIsBot() && !p.AcceptBot {
		return false
	}
	return contains(p.Variants, c.Variant.Key) &&
		contains(p.TimeControls, c.Speed) &&
		contains(p.Modes, c.Mode())
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(strings.TrimSpace(item), v) {
			return true
		}
	}
	return false
}
