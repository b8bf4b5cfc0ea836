package store

import (
	"context"

	"lichess-bot/internal/id"
	"lichess-bot/internal/lichess"
)

func (s *Store) RecordChallenge(ctx context.Context, c lichess.Challenge, accepted bool) error {
	_, err := s.Pool.Exec(ctx, `
INSERT INTO bot_challenges (id, challenge_id, challenger, variant, speed, rated, accepted)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id.New(), c.ID, c.ChallengerName(), c.Variant.Key, c.Speed, c.Rated, accepted)
	return err
}

func (s *Store) ListChallenges(ctx context.Context, limit int) ([]ChallengeRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx, `
SELECT id, challenge_id, challenger, variant, speed, rated, accepted, created_at
FROM bot_challenges
ORDER BY id DESC
LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ChallengeRecord, 0, limit)
	for rows.Next() {
		var r ChallengeRecord
		if err := rows.Scan(&r.ID, &r.ChallengeID, &r.Challenger, &r.Variant, &r.Speed, &r.Rated, &r.Accepted, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
