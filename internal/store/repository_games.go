package store

import (
	"context"

	"lichess-bot/internal/bot"
)

func (s *Store) RecordGameStart(ctx context.Context, sessionID, gameID string) error {
	_, err := s.Pool.Exec(ctx, `
INSERT INTO bot_games (session_id, game_id, state)
VALUES ($1, $2, $3)
ON CONFLICT (session_id) DO NOTHING`,
		sessionID, gameID, string(bot.StateInit))
	return err
}

// RecordGameEnd closes the row opened by RecordGameStart. sessionErr is the
// final error after retries, if any.
func (s *Store) RecordGameEnd(ctx context.Context, res bot.SessionResult, sessionErr error) error {
	errText := ""
	if sessionErr != nil {
		errText = sessionErr.Error()
	}
	tag, err := s.Pool.Exec(ctx, `
UPDATE bot_games
SET color = $2, state = $3, status = $4, plies = $5, moves_submitted = $6, error = $7, ended_at = now()
WHERE session_id = $1`,
		res.SessionID, res.Color, string(res.State), res.Status, res.Plies, res.MovesSubmitted, errText)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) GetGame(ctx context.Context, sessionID string) (*GameRecord, error) {
	var r GameRecord
	err := s.Pool.QueryRow(ctx, `
SELECT session_id, game_id, color, state, status, plies, moves_submitted, error, started_at, ended_at
FROM bot_games
WHERE session_id = $1`, sessionID).Scan(
		&r.SessionID, &r.GameID, &r.Color, &r.State, &r.Status,
		&r.Plies, &r.MovesSubmitted, &r.Error, &r.StartedAt, &r.EndedAt,
	)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &r, nil
}

var _ bot.Recorder = (*Store)(nil)
