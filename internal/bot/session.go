package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"lichess-bot/internal/lichess"

	"github.com/notnil/chess"
	"github.com/rs/zerolog/log"
)

type SessionState string

const (
	StateInit           SessionState = "init"
	StateActive         SessionState = "active"
	StateOver           SessionState = "over"
	StateAborted        SessionState = "aborted"
	StateIdleTerminated SessionState = "idle_terminated"
	StateErrored        SessionState = "errored"
)

type SessionConfig struct {
	Platform  Platform
	NewEngine EngineFactory
	Username  string
	AbortTime time.Duration
	Now       func() time.Time
}

type SessionResult struct {
	SessionID      string       `json:"session_id"`
	GameID         string       `json:"game_id"`
	Color          string       `json:"color"`
	State          SessionState `json:"state"`
	Status         string       `json:"status"`
	Plies          int          `json:"plies"`
	MovesSubmitted int          `json:"moves_submitted"`
}

// Session plays one game from its per-game feed until the game concludes,
// goes idle, or the feed ends. A Session is single use.
type Session struct {
	cfg       SessionConfig
	id        string
	gameID    string
	state     SessionState
	game      *Game
	board     *chess.Game
	budget    time.Duration
	engine    MoveEngine
	submitted int
	reqCtx    context.Context
}

func NewSession(gameID, sessionID string, cfg SessionConfig) *Session {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.AbortTime <= 0 {
		cfg.AbortTime = 20 * time.Second
	}
	return &Session{cfg: cfg, id: sessionID, gameID: gameID, state: StateInit}
}

func (s *Session) State() SessionState {
	return s.state
}

// Play runs the session to completion. The termination flag (ctx) is only
// checked between feed messages; requests already sent and engine searches
// already started are never cut short.
func (s *Session) Play(ctx context.Context) (SessionResult, error) {
	s.reqCtx = context.WithoutCancel(ctx)
	stream, err := s.cfg.Platform.StreamGame(s.reqCtx, s.gameID)
	if err != nil {
		return s.fail(fmt.Errorf("open game stream: %w", err))
	}
	defer stream.Close()

	if err := s.init(stream); err != nil {
		return s.fail(err)
	}
	eng, err := s.cfg.NewEngine()
	if err != nil {
		return s.fail(fmt.Errorf("start engine: %w", err))
	}
	s.engine = eng
	defer s.stopEngine()

	s.state = StateActive
	log.Info().
		Str("game_id", s.gameID).
		Str("session_id", s.id).
		Str("color", s.game.Color()).
		Dur("move_budget", s.budget).
		Msg("game_session_start")

	if err := s.handleState(s.game.State); err != nil {
		return s.fail(err)
	}
	for s.state == StateActive {
		if s.game.IsOver() {
			s.finish(StateOver, "game_over")
			break
		}
		if err := ctx.Err(); err != nil {
			return s.fail(err)
		}
		line, err := stream.Next()
		if errors.Is(err, io.EOF) {
			s.finish(StateOver, "game_stream_closed")
			break
		}
		if err != nil {
			return s.fail(fmt.Errorf("read game stream: %w", err))
		}
		if len(line) == 0 {
			if err := s.checkIdle(); err != nil {
				return s.fail(err)
			}
			continue
		}
		if err := s.handleMessage(line); err != nil {
			return s.fail(err)
		}
	}
	return s.result(), nil
}

// init reads the full initial game state and fixes the per-move budget.
func (s *Session) init(stream LineStream) error {
	var line []byte
	for len(line) == 0 {
		next, err := stream.Next()
		if errors.Is(err, io.EOF) {
			return lichess.ErrEmptyGameStream
		}
		if err != nil {
			return fmt.Errorf("read initial state: %w", err)
		}
		line = next
	}
	var full lichess.GameFull
	if err := json.Unmarshal(line, &full); err != nil {
		return fmt.Errorf("decode initial state: %w", err)
	}
	if full.ID == "" {
		full.ID = s.gameID
	}
	s.game = NewGame(full, s.cfg.Username, s.cfg.AbortTime, s.cfg.Now())
	s.budget = MoveBudget(s.game.SecondMoverTime())
	s.board = newBoard(full.InitialFen)
	return nil
}

func (s *Session) handleMessage(line []byte) error {
	var msg lichess.GameMessage
	if err := json.Unmarshal(line, &msg); err != nil {
		return fmt.Errorf("decode game message: %w", err)
	}
	if msg.Type != "gameState" {
		log.Debug().Str("game_id", s.gameID).Str("type", msg.Type).Msg("game_message_ignored")
		return nil
	}
	var st lichess.GameState
	if err := json.Unmarshal(line, &st); err != nil {
		return fmt.Errorf("decode game state: %w", err)
	}
	return s.handleState(st)
}

func (s *Session) handleState(st lichess.GameState) error {
	s.game.State = st
	moves := s.game.Moves()
	s.syncBoard(moves)
	if s.game.IsOngoing() && s.isOurTurn(moves) {
		if err := s.playEngineMove(); err != nil {
			return err
		}
	}
	whiteToMove := s.board.Position().Turn() == chess.White
	s.game.Ping(s.cfg.Now(), s.cfg.AbortTime, s.game.Deadline(whiteToMove))
	return nil
}

// syncBoard brings the local board in line with the platform history. The
// usual update carries exactly one new ply; an equal count is the echo of our
// own move; anything else means updates were missed and the history is
// replayed from the start.
func (s *Session) syncBoard(moves []string) {
	played := len(s.board.Moves())
	switch {
	case len(moves) == played:
	case len(moves) == played+1:
		applyUCIMove(s.board, moves[len(moves)-1])
	default:
		board, ok := replayMoves(s.game.InitialFEN, moves)
		if !ok {
			log.Warn().Str("game_id", s.gameID).Int("local_plies", played).Int("remote_plies", len(moves)).Msg("board_resync_failed")
			return
		}
		log.Info().Str("game_id", s.gameID).Int("local_plies", played).Int("remote_plies", len(moves)).Msg("board_resync")
		s.board = board
	}
}

// isOurTurn requires the platform's ply count and the local board to agree on
// the side to move. They disagree after a dropped illegal ply; the engine is
// then left alone until a later update brings the board back in line.
func (s *Session) isOurTurn(moves []string) bool {
	if !s.game.IsEngineMove(moves) {
		return false
	}
	boardWhite := s.board.Position().Turn() == chess.White
	if boardWhite != s.game.IsWhite {
		log.Warn().
			Str("game_id", s.gameID).
			Int("local_plies", len(s.board.Moves())).
			Int("remote_plies", len(moves)).
			Msg("engine_move_skipped_board_mismatch")
		return false
	}
	return true
}

func (s *Session) playEngineMove() error {
	move, err := s.engine.BestMove(s.board.Position(), s.budget)
	if err != nil {
		return fmt.Errorf("choose move: %w", err)
	}
	uci := move.String()
	if err := s.board.Move(move); err != nil {
		return fmt.Errorf("apply engine move %s: %w", uci, err)
	}
	if err := s.cfg.Platform.MakeMove(s.reqCtx, s.gameID, uci); err != nil {
		return fmt.Errorf("submit move %s: %w", uci, err)
	}
	s.submitted++
	metricMovesSubmitted.Add(1)
	log.Info().Str("game_id", s.gameID).Str("move", uci).Msg("move_submitted")
	return nil
}

// checkIdle runs on every keep-alive: abort a game nobody started, give up on
// a game where the side to move has outlived its clock.
func (s *Session) checkIdle() error {
	now := s.cfg.Now()
	switch {
	case s.game.ShouldAbortNow(now):
		log.Info().Str("game_id", s.gameID).Msg("game_abort_idle")
		if err := s.cfg.Platform.Abort(s.reqCtx, s.gameID); err != nil {
			return fmt.Errorf("abort game: %w", err)
		}
		s.finish(StateAborted, "game_aborted")
	case s.game.ShouldTerminateNow(now):
		log.Info().Str("game_id", s.gameID).Msg("game_terminate_idle")
		if s.game.IsAbortable() {
			if err := s.cfg.Platform.Abort(s.reqCtx, s.gameID); err != nil {
				return fmt.Errorf("abort game: %w", err)
			}
		}
		s.finish(StateIdleTerminated, "game_terminated")
	}
	return nil
}

func (s *Session) finish(state SessionState, msg string) {
	s.state = state
	log.Info().
		Str("game_id", s.gameID).
		Str("session_id", s.id).
		Str("status", s.game.State.Status).
		Int("plies", s.game.Plies()).
		Msg(msg)
}

func (s *Session) fail(err error) (SessionResult, error) {
	s.state = StateErrored
	return s.result(), err
}

// stopEngine runs exactly once per started engine, on every exit path.
func (s *Session) stopEngine() {
	if s.engine == nil {
		return
	}
	if err := s.engine.Close(); err != nil {
		log.Warn().Err(err).Str("game_id", s.gameID).Msg("engine_stop_failed")
	}
	s.engine = nil
}

func (s *Session) result() SessionResult {
	res := SessionResult{
		SessionID:      s.id,
		GameID:         s.gameID,
		State:          s.state,
		MovesSubmitted: s.submitted,
	}
	if s.game != nil {
		res.Color = s.game.Color()
		res.Status = s.game.State.Status
		res.Plies = s.game.Plies()
	}
	return res
}
