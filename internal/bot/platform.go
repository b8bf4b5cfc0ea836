package bot

import (
	"context"
	"errors"
	"time"

	"lichess-bot/internal/lichess"

	"github.com/notnil/chess"
)

// LineStream is a newline-delimited feed. Next returns io.EOF when the
// platform closes it and a zero-length line for keep-alives.
type LineStream interface {
	Next() ([]byte, error)
	Close() error
}

type EventSource interface {
	StreamEvents(ctx context.Context) (LineStream, error)
}

type Platform interface {
	EventSource
	StreamGame(ctx context.Context, gameID string) (LineStream, error)
	AcceptChallenge(ctx context.Context, challengeID string) error
	DeclineChallenge(ctx context.Context, challengeID string) error
	MakeMove(ctx context.Context, gameID, move string) error
	Abort(ctx context.Context, gameID string) error
}

// MoveEngine is the move-decision service. One call is in flight at a time.
type MoveEngine interface {
	BestMove(pos *chess.Position, budget time.Duration) (*chess.Move, error)
	Close() error
}

type EngineFactory func() (MoveEngine, error)

// Recorder persists challenge decisions and game outcomes. Failures are
// logged by the caller and never affect play.
type Recorder interface {
	RecordChallenge(ctx context.Context, c lichess.Challenge, accepted bool) error
	RecordGameStart(ctx context.Context, sessionID, gameID string) error
	RecordGameEnd(ctx context.Context, res SessionResult, sessionErr error) error
}

type noopRecorder struct{}

func (noopRecorder) RecordChallenge(context.Context, lichess.Challenge, bool) error { return nil }
func (noopRecorder) RecordGameStart(context.Context, string, string) error { return nil }
func (noopRecorder) RecordGameEnd(context.Context, SessionResult, error) error { return nil }

// MultiRecorder fans every record out to each non-nil recorder and joins
// their errors.
func MultiRecorder(recs ...Recorder) Recorder {
	out := make(multiRecorder, 0, len(recs))
	for _, r := range recs {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

type multiRecorder []Recorder

func (m multiRecorder) RecordChallenge(ctx context.Context, c lichess.Challenge, accepted bool) error {
	var errs []error
	for _, r := range m {
		errs = append(errs, r.RecordChallenge(ctx, c, accepted))
	}
	return errors.Join(errs...)
}

func (m multiRecorder) RecordGameStart(ctx context.Context, sessionID, gameID string) error {
	var errs []error
	for _, r := range m {
		errs = append(errs, r.RecordGameStart(ctx, sessionID, gameID))
	}
	return errors.Join(errs...)
}

func (m multiRecorder) RecordGameEnd(ctx context.Context, res SessionResult, sessionErr error) error {
	var errs []error
	for _, r := range m {
		errs = append(errs, r.RecordGameEnd(ctx, res, sessionErr))
	}
	return errors.Join(errs...)
}

type lichessPlatform struct {
	client *lichess.Client
}

func NewLichessPlatform(client *lichess.Client) Platform {
	return lichessPlatform{client: client}
}

func (p lichessPlatform) StreamEvents(ctx context.Context) (LineStream, error) {
	stream, err := p.client.StreamEvents(ctx)
	if err != nil {
		return nil, err
	}
	return stream, nil
}

func (p lichessPlatform) StreamGame(ctx context.Context, gameID string) (LineStream, error) {
	stream, err := p.client.StreamGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return stream, nil
}

func (p lichessPlatform) AcceptChallenge(ctx context.Context, challengeID string) error {
	return p.client.AcceptChallenge(ctx, challengeID)
}

func (p lichessPlatform) DeclineChallenge(ctx context.Context, challengeID string) error {
	return p.client.DeclineChallenge(ctx, challengeID)
}

func (p lichessPlatform) MakeMove(ctx context.Context, gameID, move string) error {
	return p.client.MakeMove(ctx, gameID, move)
}

func (p lichessPlatform) Abort(ctx context.Context, gameID string) error {
	return p.client.Abort(ctx, gameID)
}
