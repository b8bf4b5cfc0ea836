package notify

import (
	"strconv"
	"time"

	"lichess-bot/internal/bot"
	"lichess-bot/internal/lichess"
	"lichess-bot/internal/notify/platforms"
)

const (
	colorPlaying = 0x3498db
	colorWon     = 0x2ecc71
	colorNeutral = 0x95a5a6
	colorFailed  = 0xe74c3c
)

func challengeMessage(c lichess.Challenge, now time.Time) platforms.Message {
	return platforms.Message{
		Title:       "Challenge accepted",
		Description: c.URL,
		Color:       colorPlaying,
		SentAt:      now,
		Fields: []platforms.Field{
			{Name: "Challenger", Value: fallback(c.ChallengerName(), "anonymous"), Inline: true},
			{Name: "Variant", Value: fallback(c.Variant.Key, "standard"), Inline: true},
			{Name: "Speed", Value: c.Speed, Inline: true},
			{Name: "Mode", Value: c.Mode(), Inline: true},
		},
	}
}

func gameStartMessage(sessionID, gameID, link string, now time.Time) platforms.Message {
	return platforms.Message{
		Key:         sessionID,
		Title:       "Game " + gameID,
		Description: link,
		Color:       colorPlaying,
		SentAt:      now,
		Fields:      []platforms.Field{{Name: "State", Value: "playing", Inline: true}},
	}
}

func gameEndMessage(res bot.SessionResult, sessionErr error, link string, now time.Time) platforms.Message {
	fields := []platforms.Field{
		{Name: "State", Value: string(res.State), Inline: true},
		{Name: "Status", Value: fallback(res.Status, "unknown"), Inline: true},
		{Name: "Color", Value: fallback(res.Color, "unknown"), Inline: true},
		{Name: "Plies", Value: strconv.Itoa(res.Plies), Inline: true},
		{Name: "Moves sent", Value: strconv.Itoa(res.MovesSubmitted), Inline: true},
	}
	if sessionErr != nil {
		fields = append(fields, platforms.Field{Name: "Error", Value: sessionErr.Error()})
	}
	return platforms.Message{
		Key:         res.SessionID,
		Title:       "Game " + res.GameID,
		Description: link,
		Color:       resultColor(res, sessionErr),
		SentAt:      now,
		Fields:      fields,
	}
}

func resultColor(res bot.SessionResult, sessionErr error) int {
	switch {
	case sessionErr != nil || res.State == bot.StateErrored:
		return colorFailed
	case res.State == bot.StateOver && res.Status == "mate":
		return colorWon
	default:
		return colorNeutral
	}
}

func fallback(v, d string) string {
	if v == "" {
		return d
	}
	return v
}
