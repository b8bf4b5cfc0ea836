package store

import (
	"errors"
	"testing"

	"lichess-bot/internal/bot"
	"lichess-bot/internal/lichess"
)

func TestRecordChallengeDecisions(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()

	accepted := lichess.Challenge{
		ID:         "c1",
		Challenger: &lichess.User{Name: "alice"},
		Variant:    lichess.Variant{Key: "standard"},
		Speed:      "blitz",
		Rated:      true,
	}
	declined := lichess.Challenge{ID: "c2", Variant: lichess.Variant{Key: "atomic"}, Speed: "bullet"}
	if err := st.RecordChallenge(ctx, accepted, true); err != nil {
		t.Fatalf("record accepted: %v", err)
	}
	if err := st.RecordChallenge(ctx, declined, false); err != nil {
		t.Fatalf("record declined: %v", err)
	}

	got, err := st.ListChallenges(ctx, 10)
	if err != nil {
		t.Fatalf("list challenges: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 challenges, got %d", len(got))
	}
	// newest first
	if got[0].ChallengeID != "c2" || got[0].Accepted {
		t.Fatalf("unexpected newest challenge: %+v", got[0])
	}
	if got[1].ChallengeID != "c1" || !got[1].Accepted || got[1].Challenger != "alice" || !got[1].Rated {
		t.Fatalf("unexpected oldest challenge: %+v", got[1])
	}
}

func TestRecordGameLifecycle(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()

	if err := st.RecordGameStart(ctx, "s1", "g1"); err != nil {
		t.Fatalf("record start: %v", err)
	}
	got, err := st.GetGame(ctx, "s1")
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if got.GameID != "g1" || got.State != string(bot.StateInit) || got.EndedAt != nil {
		t.Fatalf("unexpected started game: %+v", got)
	}

	res := bot.SessionResult{
		SessionID:      "s1",
		GameID:         "g1",
		Color:          "black",
		State:          bot.StateOver,
		Status:         "mate",
		Plies:          4,
		MovesSubmitted: 2,
	}
	if err := st.RecordGameEnd(ctx, res, errors.New("stream reset")); err != nil {
		t.Fatalf("record end: %v", err)
	}
	got, err = st.GetGame(ctx, "s1")
	if err != nil {
		t.Fatalf("get finished game: %v", err)
	}
	if got.State != "over" || got.Status != "mate" || got.Plies != 4 || got.MovesSubmitted != 2 {
		t.Fatalf("unexpected finished game: %+v", got)
	}
	if got.Error != "stream reset" || got.EndedAt == nil {
		t.Fatalf("expected error and end time recorded: %+v", got)
	}
}

func TestRecordGameEndUnknownSession(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()

	err := st.RecordGameEnd(ctx, bot.SessionResult{SessionID: "missing"}, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := st.GetGame(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from GetGame, got %v", err)
	}
}
