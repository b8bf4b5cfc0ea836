package bot

import (
	"context"
	"errors"

	"lichess-bot/internal/id"
	"lichess-bot/internal/lichess"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"
)

type DispatcherConfig struct {
	Platform Platform
	Acceptor Acceptor
	Session  SessionConfig
	Retry    RetryPolicy
	Recorder Recorder
	Guard    *SessionGuard
	// ReconnectBackOff spaces notification feed reconnects; nil uses the default.
	ReconnectBackOff func() backoff.BackOff
}

// Dispatcher consumes control events one at a time. A game start runs the
// whole game synchronously; after one completed game the dispatcher returns.
type Dispatcher struct {
	platform Platform
	acceptor Acceptor
	session  SessionConfig
	retry    RetryPolicy
	recorder Recorder
	guard    *SessionGuard
	queue    *Queue
	watcher  *Watcher
}

func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	if cfg.Recorder == nil {
		cfg.Recorder = noopRecorder{}
	}
	if cfg.Guard == nil {
		cfg.Guard = NewSessionGuard()
	}
	if cfg.Session.Platform == nil {
		cfg.Session.Platform = cfg.Platform
	}
	queue := NewQueue()
	return &Dispatcher{
		platform: cfg.Platform,
		acceptor: cfg.Acceptor,
		session:  cfg.Session,
		retry:    cfg.Retry,
		recorder: cfg.Recorder,
		guard:    cfg.Guard,
		queue:    queue,
		watcher:  NewWatcher(cfg.Platform, queue, cfg.ReconnectBackOff),
	}
}

func (d *Dispatcher) Guard() *SessionGuard {
	return d.guard
}

// Run starts the watcher and dispatches events until a terminated event, the
// end of the first game, or ctx cancellation. The watcher is stopped and
// joined before Run returns.
func (d *Dispatcher) Run(ctx context.Context) error {
	watchCtx, stopWatcher := context.WithCancel(ctx)
	watcherDone := make(chan struct{})
	go func() {
		defer close(watcherDone)
		d.watcher.Run(watchCtx)
	}()
	defer func() {
		stopWatcher()
		<-watcherDone
		log.Info().Msg("dispatcher_terminated")
	}()

	for ctx.Err() == nil {
		ev, err := d.queue.Pop(ctx)
		if err != nil {
			break
		}
		switch ev.Kind {
		case EventTerminated:
			return nil
		case EventChallenge:
			d.handleChallenge(ctx, ev.Challenge)
		case EventGameStart:
			if d.handleGameStart(ctx, ev.GameID) {
				return nil
			}
		default:
			log.Debug().Str("type", string(ev.Kind)).Msg("event_ignored")
		}
	}
	return nil
}

// handleChallenge never fails: accept and decline errors are logged at most.
func (d *Dispatcher) handleChallenge(ctx context.Context, c lichess.Challenge) {
	reqCtx := context.WithoutCancel(ctx)
	accept := d.acceptor.Accept(c) && d.guard.Idle()
	if err := d.recorder.RecordChallenge(reqCtx, c, accept); err != nil {
		log.Warn().Err(err).Str("challenge_id", c.ID).Msg("record_challenge_failed")
	}

	if !accept {
		if err := d.platform.DeclineChallenge(reqCtx, c.ID); err != nil {
			log.Debug().Err(err).Str("challenge_id", c.ID).Msg("challenge_decline_failed")
			return
		}
		metricChallengesDeclined.Add(1)
		log.Info().Str("challenge_id", c.ID).Str("challenger", c.ChallengerName()).Msg("challenge_decline")
		return
	}

	log.Info().
		Str("challenge_id", c.ID).
		Str("challenger", c.ChallengerName()).
		Str("variant", c.Variant.Key).
		Str("speed", c.Speed).
		Str("mode", c.Mode()).
		Msg("challenge_accept")
	if err := d.platform.AcceptChallenge(reqCtx, c.ID); err != nil {
		if lichess.IsNotFound(err) {
			log.Info().Str("challenge_id", c.ID).Msg("challenge_missing_skip")
			return
		}
		log.Debug().Err(err).Str("challenge_id", c.ID).Msg("challenge_accept_failed")
		return
	}
	metricChallengesAccepted.Add(1)
	d.queue.Push(ControlEvent{Kind: EventGameStart, GameID: c.ID})
}

// handleGameStart reports whether a game was played.
func (d *Dispatcher) handleGameStart(ctx context.Context, gameID string) bool {
	if gameID == "" {
		return false
	}
	sessionID := id.New()
	release, ok := d.guard.Acquire(gameID, sessionID)
	if !ok {
		log.Debug().Str("game_id", gameID).Msg("game_start_ignored_busy")
		return false
	}
	defer release()

	metricGamesStarted.Add(1)
	reqCtx := context.WithoutCancel(ctx)
	if err := d.recorder.RecordGameStart(reqCtx, sessionID, gameID); err != nil {
		log.Warn().Err(err).Str("game_id", gameID).Msg("record_game_start_failed")
	}

	res, err := d.retry.Run(ctx, gameID, func(ctx context.Context) (SessionResult, error) {
		return NewSession(gameID, sessionID, d.session).Play(ctx)
	})
	metricGamesFinished.Add(1)
	switch {
	case err == nil:
		log.Info().Str("game_id", gameID).Str("state", string(res.State)).Int("moves_submitted", res.MovesSubmitted).Msg("game_session_done")
	case errors.Is(err, context.Canceled):
		log.Info().Str("game_id", gameID).Msg("game_session_interrupted")
	default:
		log.Error().Err(err).Str("game_id", gameID).Str("state", string(res.State)).Msg("game_session_failed")
	}
	if recErr := d.recorder.RecordGameEnd(reqCtx, res, err); recErr != nil {
		log.Warn().Err(recErr).Str("game_id", gameID).Msg("record_game_end_failed")
	}
	return true
}
