package bot

import (
	"strings"
	"time"

	"lichess-bot/internal/lichess"
)

const (
	terminateMargin = 60 * time.Second
	// Correspondence and unlimited games have no clock; treat them as ten years.
	unlimitedClock = 10 * 365 * 24 * time.Hour
)

// Game is the session's view of one platform game: colours, clocks, the last
// reported state and the two idle deadlines.
type Game struct {
	ID             string
	IsWhite        bool
	WhiteStarts    bool
	InitialFEN     string
	ClockInitial   time.Duration
	ClockIncrement time.Duration
	State          lichess.GameState

	abortAt     time.Time
	terminateAt time.Time
}

func NewGame(full lichess.GameFull, username string, abortTime time.Duration, now time.Time) *Game {
	g := &Game{
		ID:             full.ID,
		IsWhite:        isPlayer(full.White, username),
		WhiteStarts:    whiteStarts(full.InitialFen),
		InitialFEN:     full.InitialFen,
		ClockInitial:   unlimitedClock,
		ClockIncrement: 0,
		State:          full.State,
	}
	if full.Clock != nil {
		g.ClockInitial = millis(full.Clock.Initial)
		g.ClockIncrement = millis(full.Clock.Increment)
	}
	g.abortAt = now.Add(abortTime)
	g.terminateAt = now.Add(g.ClockInitial + g.ClockIncrement + abortTime + terminateMargin)
	return g
}

func (g *Game) Color() string {
	if g.IsWhite {
		return "white"
	}
	return "black"
}

func (g *Game) Moves() []string {
	return strings.Fields(g.State.Moves)
}

func (g *Game) Plies() int {
	return len(g.Moves())
}

// SecondMoverTime is the starting clock, in ms, of the side that does not
// make the first move.
func (g *Game) SecondMoverTime() int64 {
	if g.WhiteStarts {
		return g.State.BTime
	}
	return g.State.WTime
}

// IsAbortable is true until the first ply is played.
func (g *Game) IsAbortable() bool {
	return g.Plies() == 0
}

// IsOngoing gates engine moves: the platform only accepts moves in "started".
func (g *Game) IsOngoing() bool {
	return g.State.Status == "started"
}

// IsOver reports a concluded game (mate, resign, draw, timeout, aborted ...).
func (g *Game) IsOver() bool {
	switch g.State.Status {
	case "", "created", "started":
		return false
	default:
		return true
	}
}

// IsEngineMove reports whether, after the given history, it is this side's turn.
func (g *Game) IsEngineMove(moves []string) bool {
	return g.IsWhite == isWhiteToMove(g.WhiteStarts, len(moves))
}

// Deadline is how long the side to move may stay silent before the game is
// considered dead: its remaining time plus increment plus a fixed margin.
func (g *Game) Deadline(whiteToMove bool) time.Duration {
	if whiteToMove {
		return millis(g.State.WTime+g.State.WInc) + terminateMargin
	}
	return millis(g.State.BTime+g.State.BInc) + terminateMargin
}

// Ping pushes both deadlines forward after a state update.
func (g *Game) Ping(now time.Time, abortIn, terminateIn time.Duration) {
	if g.IsAbortable() {
		g.abortAt = now.Add(abortIn)
	}
	g.terminateAt = now.Add(terminateIn)
}

func (g *Game) ShouldAbortNow(now time.Time) bool {
	return g.IsAbortable() && now.After(g.abortAt)
}

func (g *Game) ShouldTerminateNow(now time.Time) bool {
	return now.After(g.terminateAt)
}

func isWhiteToMove(whiteStarts bool, plies int) bool {
	if whiteStarts {
		return plies%2 == 0
	}
	return plies%2 == 1
}

func whiteStarts(initialFEN string) bool {
	if initialFEN == "" || initialFEN == "startpos" {
		return true
	}
	fields := strings.Fields(initialFEN)
	return len(fields) < 2 || fields[1] == "w"
}

func isPlayer(p lichess.GamePlayer, username string) bool {
	if username == "" {
		return false
	}
	return strings.EqualFold(p.Name, username) || strings.EqualFold(p.ID, username)
}

func millis(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
