// Package engine runs a UCI chess engine as a subprocess and asks it for
// moves under a fixed time budget.
package engine

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/notnil/chess"
	"github.com/notnil/chess/uci"
	"github.com/rs/zerolog/log"
)

var (
	ErrNoMove = errors.New("engine returned no move")
	ErrClosed = errors.New("engine closed")
)

type Options struct {
	Path       string
	UCIOptions map[string]string
}

// Engine owns one engine process. Calls are serialized; one search runs at a
// time.
type Engine struct {
	mu     sync.Mutex
	proc   *uci.Engine
	closed bool
}

func Start(opts Options) (*Engine, error) {
	if opts.Path == "" {
		return nil, errors.New("engine path is required")
	}
	proc, err := uci.New(opts.Path)
	if err != nil {
		return nil, fmt.Errorf("start engine %q: %w", opts.Path, err)
	}
	cmds := []uci.Cmd{uci.CmdUCI}
	for _, name := range sortedKeys(opts.UCIOptions) {
		cmds = append(cmds, uci.CmdSetOption{Name: name, Value: opts.UCIOptions[name]})
	}
	cmds = append(cmds, uci.CmdIsReady, uci.CmdUCINewGame)
	if err := proc.Run(cmds...); err != nil {
		_ = proc.Close()
		return nil, fmt.Errorf("init engine %q: %w", opts.Path, err)
	}
	log.Debug().Str("path", opts.Path).Msg("engine_started")
	return &Engine{proc: proc}, nil
}

// BestMove searches pos for budget and returns the engine's choice.
func (e *Engine) BestMove(pos *chess.Position, budget time.Duration) (*chess.Move, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, ErrClosed
	}
	if err := e.proc.Run(uci.CmdPosition{Position: pos}, uci.CmdGo{MoveTime: budget}); err != nil {
		return nil, fmt.Errorf("engine search: %w", err)
	}
	move := e.proc.SearchResults().BestMove
	if move == nil {
		return nil, ErrNoMove
	}
	return move, nil
}

// Close stops the engine process. Calling it more than once is a no-op.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	log.Debug().Msg("engine_stopped")
	return e.proc.Close()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
