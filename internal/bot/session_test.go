package bot

import (
	"context"
	"errors"
	"testing"
	"time"

	"lichess-bot/internal/lichess"
)

const (
	gameFullBlack = `{"type":"gameFull","id":"g1","white":{"id":"alice","name":"alice"},"black":{"id":"knightbot","name":"KnightBot"},"clock":{"initial":60000,"increment":0},"initialFen":"startpos","state":{"type":"gameState","moves":"","wtime":60000,"btime":600,"winc":0,"binc":0,"status":"started"}}`
	gameFullWhite = `{"type":"gameFull","id":"g1","white":{"id":"knightbot","name":"KnightBot"},"black":{"id":"alice","name":"alice"},"clock":{"initial":60000,"increment":0},"initialFen":"startpos","state":{"type":"gameState","moves":"","wtime":60000,"btime":60000,"winc":0,"binc":0,"status":"started"}}`
)

func newTestSession(p *fakePlatform, engines *engineBox, now func() time.Time) *Session {
	return NewSession("g1", "s1", SessionConfig{
		Platform:  p,
		NewEngine: engines.factory,
		Username:  "KnightBot",
		AbortTime: 20 * time.Second,
		Now:       now,
	})
}

func TestSessionPlaysBlack(t *testing.T) {
	p := newFakePlatform()
	p.gameLines["g1"] = []string{
		gameFullBlack,
		``,
		`{"type":"gameState","moves":"e2e4","wtime":59000,"btime":600,"status":"started"}`,
		`{"type":"chatLine","username":"alice","text":"hi","room":"player"}`,
		`{"type":"gameState","moves":"e2e4 e7e5","wtime":59000,"btime":590,"status":"started"}`,
		`{"type":"gameState","moves":"e2e4 e7e5","wtime":59000,"btime":590,"status":"resign","winner":"black"}`,
	}
	engines := &engineBox{replies: []string{"e7e5"}}

	res, err := newTestSession(p, engines, time.Now).Play(context.Background())
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if res.State != StateOver || res.Status != "resign" || res.Color != "black" {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Plies != 2 || res.MovesSubmitted != 1 {
		t.Fatalf("unexpected counts %+v", res)
	}
	calls := p.calls()
	if len(calls.moves) != 1 || calls.moves[0] != "e7e5" {
		t.Fatalf("unexpected moves %v", calls.moves)
	}
	started := engines.started()
	if len(started) != 1 {
		t.Fatalf("expected one engine, got %d", len(started))
	}
	eng := started[0]
	if eng.calls != 1 || eng.closes != 1 {
		t.Fatalf("engine calls=%d closes=%d", eng.calls, eng.closes)
	}
	if eng.budgets[0] != 3*time.Second {
		t.Fatalf("budget = %v, want 3s", eng.budgets[0])
	}
	if want := mustBoard(t, "e4").FEN(); eng.positions[0] != want {
		t.Fatalf("engine saw %s, want %s", eng.positions[0], want)
	}
}

func TestSessionWhiteMovesFirst(t *testing.T) {
	p := newFakePlatform()
	p.gameLines["g1"] = []string{gameFullWhite}
	engines := &engineBox{replies: []string{"e2e4"}}

	res, err := newTestSession(p, engines, time.Now).Play(context.Background())
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if res.State != StateOver || res.MovesSubmitted != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	if calls := p.calls(); len(calls.moves) != 1 || calls.moves[0] != "e2e4" {
		t.Fatalf("unexpected moves %v", calls.moves)
	}
	if eng := engines.started()[0]; eng.closes != 1 {
		t.Fatalf("engine closes = %d", eng.closes)
	}
}

func TestSessionResumesMidGame(t *testing.T) {
	p := newFakePlatform()
	p.gameLines["g1"] = []string{
		`{"type":"gameFull","id":"g1","white":{"name":"alice"},"black":{"name":"KnightBot"},"clock":{"initial":60000,"increment":0},"initialFen":"startpos","state":{"type":"gameState","moves":"e2e4 e7e5 g1f3","wtime":50000,"btime":50000,"status":"started"}}`,
		`{"type":"gameState","moves":"e2e4 e7e5 g1f3 b8c6","wtime":50000,"btime":49000,"status":"draw"}`,
	}
	engines := &engineBox{replies: []string{"b8c6"}}

	res, err := newTestSession(p, engines, time.Now).Play(context.Background())
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if res.Status != "draw" || res.Plies != 4 {
		t.Fatalf("unexpected result %+v", res)
	}
	eng := engines.started()[0]
	if want := mustBoard(t, "e4", "e5", "Nf3").FEN(); eng.positions[0] != want {
		t.Fatalf("engine saw %s, want %s", eng.positions[0], want)
	}
}

func TestSessionIgnoresIllegalUpdate(t *testing.T) {
	p := newFakePlatform()
	p.gameLines["g1"] = []string{
		gameFullBlack,
		`{"type":"gameState","moves":"e2e5","wtime":59000,"btime":600,"status":"started"}`,
		`{"type":"gameState","moves":"e2e5","wtime":59000,"btime":600,"status":"resign","winner":"black"}`,
	}
	engines := &engineBox{replies: []string{"e7e5"}}

	res, err := newTestSession(p, engines, time.Now).Play(context.Background())
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if res.State != StateOver || res.Status != "resign" || res.MovesSubmitted != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
	if calls := p.calls(); len(calls.moves) != 0 {
		t.Fatalf("unexpected moves %v", calls.moves)
	}
	eng := engines.started()[0]
	if len(eng.positions) != 0 {
		t.Fatalf("engine consulted on a board out of step with the platform: %v", eng.positions)
	}
	if eng.closes != 1 {
		t.Fatalf("engine closes = %d", eng.closes)
	}
}

func TestSessionRecoversAfterIllegalUpdate(t *testing.T) {
	p := newFakePlatform()
	p.gameLines["g1"] = []string{
		gameFullBlack,
		`{"type":"gameState","moves":"e2e5","wtime":59000,"btime":600,"status":"started"}`,
		`{"type":"gameState","moves":"e2e4 e7e5 g1f3","wtime":58000,"btime":600,"status":"started"}`,
		`{"type":"gameState","moves":"e2e4 e7e5 g1f3 b8c6","wtime":58000,"btime":590,"status":"started"}`,
		`{"type":"gameState","moves":"e2e4 e7e5 g1f3 b8c6","wtime":58000,"btime":590,"status":"draw"}`,
	}
	engines := &engineBox{replies: []string{"b8c6"}}

	res, err := newTestSession(p, engines, time.Now).Play(context.Background())
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if res.State != StateOver || res.MovesSubmitted != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	eng := engines.started()[0]
	if want := mustBoard(t, "e4", "e5", "Nf3").FEN(); len(eng.positions) != 1 || eng.positions[0] != want {
		t.Fatalf("engine positions %v, want [%s]", eng.positions, want)
	}
}

func TestSessionAbortsUnstartedGame(t *testing.T) {
	p := newFakePlatform()
	p.gameLines["g1"] = []string{gameFullBlack, ``, ``}
	engines := &engineBox{}

	res, err := newTestSession(p, engines, steppingClock(30*time.Second)).Play(context.Background())
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if res.State != StateAborted {
		t.Fatalf("state = %s, want aborted", res.State)
	}
	if calls := p.calls(); len(calls.aborts) != 1 || calls.aborts[0] != "g1" {
		t.Fatalf("unexpected aborts %v", calls.aborts)
	}
	eng := engines.started()[0]
	if eng.calls != 0 || eng.closes != 1 {
		t.Fatalf("engine calls=%d closes=%d", eng.calls, eng.closes)
	}
}

func TestSessionTerminatesStalledGame(t *testing.T) {
	p := newFakePlatform()
	p.gameLines["g1"] = []string{
		`{"type":"gameFull","id":"g1","white":{"name":"alice"},"black":{"name":"KnightBot"},"clock":{"initial":60000,"increment":0},"initialFen":"startpos","state":{"type":"gameState","moves":"e2e4","wtime":1000,"btime":60000,"status":"started"}}`,
		``,
		``,
	}
	engines := &engineBox{replies: []string{"e7e5"}}

	res, err := newTestSession(p, engines, steppingClock(time.Hour)).Play(context.Background())
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if res.State != StateIdleTerminated {
		t.Fatalf("state = %s, want idle_terminated", res.State)
	}
	calls := p.calls()
	if len(calls.aborts) != 0 {
		t.Fatalf("a game with plies must not be aborted, got %v", calls.aborts)
	}
	if len(calls.moves) != 1 {
		t.Fatalf("unexpected moves %v", calls.moves)
	}
	if eng := engines.started()[0]; eng.closes != 1 {
		t.Fatalf("engine closes = %d", eng.closes)
	}
}

func TestSessionEmptyStream(t *testing.T) {
	p := newFakePlatform()
	p.gameLines["g1"] = []string{``}
	engines := &engineBox{}

	res, err := newTestSession(p, engines, time.Now).Play(context.Background())
	if !errors.Is(err, lichess.ErrEmptyGameStream) {
		t.Fatalf("expected ErrEmptyGameStream, got %v", err)
	}
	if res.State != StateErrored {
		t.Fatalf("state = %s", res.State)
	}
	if len(engines.started()) != 0 {
		t.Fatal("engine must not start without an initial state")
	}
}

func TestSessionClosesEngineOnFailure(t *testing.T) {
	p := newFakePlatform()
	p.gameLines["g1"] = []string{gameFullWhite}
	p.moveErr = &lichess.HTTPError{Method: "POST", Path: "/api/bot/game/g1/move/e2e4", StatusCode: 503}
	engines := &engineBox{replies: []string{"e2e4"}}

	res, err := newTestSession(p, engines, time.Now).Play(context.Background())
	if err == nil {
		t.Fatal("expected move submission error")
	}
	if lichess.IsFinal(err) {
		t.Fatalf("503 should not be final: %v", err)
	}
	if res.State != StateErrored {
		t.Fatalf("state = %s", res.State)
	}
	if eng := engines.started()[0]; eng.closes != 1 {
		t.Fatalf("engine closes = %d", eng.closes)
	}
}

func TestSessionStopsOnCancel(t *testing.T) {
	p := newFakePlatform()
	p.gameLines["g1"] = []string{gameFullBlack, ``, ``}
	engines := &engineBox{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestSession(p, engines, time.Now).Play(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if eng := engines.started()[0]; eng.closes != 1 {
		t.Fatalf("engine closes = %d", eng.closes)
	}
}

func TestSessionEngineStartFailure(t *testing.T) {
	p := newFakePlatform()
	p.gameLines["g1"] = []string{gameFullBlack}
	engines := &engineBox{err: errors.New("no such binary")}

	if _, err := newTestSession(p, engines, time.Now).Play(context.Background()); err == nil {
		t.Fatal("expected engine start error")
	}
}
