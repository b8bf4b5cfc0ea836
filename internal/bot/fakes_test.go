package bot

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"lichess-bot/internal/lichess"

	"github.com/notnil/chess"
)

type fakeStream struct {
	mu     sync.Mutex
	lines  []string
	pos    int
	err    error
	closes int
}

func newFakeStream(lines ...string) *fakeStream {
	return &fakeStream{lines: lines}
}

func (s *fakeStream) Next() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pos < len(s.lines) {
		line := s.lines[s.pos]
		s.pos++
		return []byte(line), nil
	}
	if s.err != nil {
		return nil, s.err
	}
	return nil, io.EOF
}

func (s *fakeStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes++
	return nil
}

// blockingStream delivers nothing and ends only when ctx is done.
type blockingStream struct {
	ctx context.Context
}

func (s blockingStream) Next() ([]byte, error) {
	<-s.ctx.Done()
	return nil, s.ctx.Err()
}

func (blockingStream) Close() error { return nil }

type fakePlatform struct {
	mu sync.Mutex

	eventStreams []*fakeStream
	eventOpenErr []error
	eventOpens   int

	gameLines  map[string][]string
	gameOpens  []string
	acceptErr  error
	declineErr error
	moveErr    error
	abortErr   error

	accepted []string
	declined []string
	moves    []string
	aborts   []string
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{gameLines: make(map[string][]string)}
}

func (p *fakePlatform) StreamEvents(ctx context.Context) (LineStream, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := p.eventOpens
	p.eventOpens++
	if n < len(p.eventOpenErr) && p.eventOpenErr[n] != nil {
		return nil, p.eventOpenErr[n]
	}
	if len(p.eventStreams) == 0 {
		return blockingStream{ctx: ctx}, nil
	}
	s := p.eventStreams[0]
	p.eventStreams = p.eventStreams[1:]
	return s, nil
}

func (p *fakePlatform) StreamGame(_ context.Context, gameID string) (LineStream, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gameOpens = append(p.gameOpens, gameID)
	lines, ok := p.gameLines[gameID]
	if !ok {
		return nil, &lichess.HTTPError{Method: "GET", Path: "/api/bot/game/stream/" + gameID, StatusCode: 404}
	}
	return newFakeStream(lines...), nil
}

func (p *fakePlatform) AcceptChallenge(_ context.Context, challengeID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.accepted = append(p.accepted, challengeID)
	return p.acceptErr
}

func (p *fakePlatform) DeclineChallenge(_ context.Context, challengeID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.declined = append(p.declined, challengeID)
	return p.declineErr
}

func (p *fakePlatform) MakeMove(_ context.Context, _ string, move string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.moves = append(p.moves, move)
	return p.moveErr
}

func (p *fakePlatform) Abort(_ context.Context, gameID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.aborts = append(p.aborts, gameID)
	return p.abortErr
}

type platformCalls struct {
	gameOpens []string
	accepted  []string
	declined  []string
	moves     []string
	aborts    []string
}

func (p *fakePlatform) calls() platformCalls {
	p.mu.Lock()
	defer p.mu.Unlock()
	return platformCalls{
		gameOpens: append([]string(nil), p.gameOpens...),
		accepted:  append([]string(nil), p.accepted...),
		declined:  append([]string(nil), p.declined...),
		moves:     append([]string(nil), p.moves...),
		aborts:    append([]string(nil), p.aborts...),
	}
}

// fakeEngine answers with scripted UCI moves, one per call.
type fakeEngine struct {
	mu        sync.Mutex
	replies   []string
	calls     int
	closes    int
	budgets   []time.Duration
	positions []string
}

func (e *fakeEngine) BestMove(pos *chess.Position, budget time.Duration) (*chess.Move, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	e.budgets = append(e.budgets, budget)
	e.positions = append(e.positions, pos.String())
	if len(e.replies) == 0 {
		return nil, errors.New("no scripted move")
	}
	reply := e.replies[0]
	e.replies = e.replies[1:]
	return chess.UCINotation{}.Decode(pos, reply)
}

func (e *fakeEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closes++
	return nil
}

type engineBox struct {
	mu      sync.Mutex
	engines []*fakeEngine
	replies []string
	err     error
}

func (b *engineBox) factory() (MoveEngine, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return nil, b.err
	}
	eng := &fakeEngine{replies: append([]string(nil), b.replies...)}
	b.engines = append(b.engines, eng)
	return eng, nil
}

func (b *engineBox) started() []*fakeEngine {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*fakeEngine(nil), b.engines...)
}

type acceptFunc func(lichess.Challenge) bool

func (f acceptFunc) Accept(c lichess.Challenge) bool { return f(c) }

type fakeRecorder struct {
	mu         sync.Mutex
	challenges map[string]bool
	started    []string
	ended      []SessionResult
	endErrs    []error
}

func (r *fakeRecorder) RecordChallenge(_ context.Context, c lichess.Challenge, accepted bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.challenges == nil {
		r.challenges = make(map[string]bool)
	}
	r.challenges[c.ID] = accepted
	return nil
}

func (r *fakeRecorder) RecordGameStart(_ context.Context, _ string, gameID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, gameID)
	return nil
}

func (r *fakeRecorder) RecordGameEnd(_ context.Context, res SessionResult, err error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ended = append(r.ended, res)
	r.endErrs = append(r.endErrs, err)
	return nil
}

// steppingClock advances by step on every read.
func steppingClock(step time.Duration) func() time.Time {
	var mu sync.Mutex
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(step)
		return now
	}
}
