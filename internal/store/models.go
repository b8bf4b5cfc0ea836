package store

import "time"

type ChallengeRecord struct {
	ID          string
	ChallengeID string
	Challenger  string
	Variant     string
	Speed       string
	Rated       bool
	Accepted    bool
	CreatedAt   time.Time
}

type GameRecord struct {
	SessionID      string
	GameID         string
	Color          string
	State          string
	Status         string
	Plies          int
	MovesSubmitted int
	Error          string
	StartedAt      time.Time
	EndedAt        *time.Time
}
