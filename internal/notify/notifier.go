package notify

import (
	"context"
	"sync"
	"time"

	"lichess-bot/internal/bot"
	"lichess-bot/internal/lichess"
	"lichess-bot/internal/notify/platforms"

	"github.com/rs/zerolog/log"
)

type job struct {
	target   Target
	msg      platforms.Message
	terminal bool
	attempt  int
}

// Notifier posts challenge and game updates to chat webhooks from a single
// background worker. Enqueueing never blocks the caller; a full queue drops.
type Notifier struct {
	cfg      Config
	adapters map[string]platforms.Adapter
	now      func() time.Time

	jobs   chan job
	retryQ *retryQueue
	stop   chan struct{}
	done   chan struct{}

	mu       sync.Mutex
	started  bool
	stopOnce sync.Once
}

func New(cfg Config) *Notifier {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.RetryMax < 0 {
		cfg.RetryMax = 0
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = 500 * time.Millisecond
	}
	if cfg.GameURL == nil {
		cfg.GameURL = func(gameID string) string { return gameID }
	}
	client := platforms.NewHTTPClient(cfg.RequestTimeout)
	n := &Notifier{
		cfg: cfg,
		adapters: map[string]platforms.Adapter{
			"discord": platforms.NewDiscordAdapter(client),
			"feishu":  platforms.NewFeishuAdapter(client),
		},
		now:  time.Now,
		jobs: make(chan job, cfg.QueueSize),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	n.retryQ = newRetryQueue(n.jobs, n.stop)
	return n
}

func (n *Notifier) Enabled() bool {
	return n.cfg.Enabled()
}

func (n *Notifier) Start(ctx context.Context) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.started || !n.Enabled() {
		return
	}
	n.started = true
	go n.worker(ctx)
}

// Stop delivers what is already queued, drops pending retries, and waits for
// the worker until ctx is done.
func (n *Notifier) Stop(ctx context.Context) {
	n.mu.Lock()
	started := n.started
	n.mu.Unlock()
	n.stopOnce.Do(func() { close(n.stop) })
	if !started {
		return
	}
	select {
	case <-n.done:
	case <-ctx.Done():
		log.Warn().Int("pending", len(n.jobs)).Msg("notify_stop_timeout")
	}
}

func (n *Notifier) RecordChallenge(_ context.Context, c lichess.Challenge, accepted bool) error {
	if accepted {
		n.enqueue(challengeMessage(c, n.now()), false)
	}
	return nil
}

func (n *Notifier) RecordGameStart(_ context.Context, sessionID, gameID string) error {
	n.enqueue(gameStartMessage(sessionID, gameID, n.cfg.GameURL(gameID), n.now()), false)
	return nil
}

func (n *Notifier) RecordGameEnd(_ context.Context, res bot.SessionResult, sessionErr error) error {
	n.enqueue(gameEndMessage(res, sessionErr, n.cfg.GameURL(res.GameID), n.now()), true)
	return nil
}

func (n *Notifier) enqueue(msg platforms.Message, terminal bool) {
	if !n.Enabled() {
		return
	}
	for _, target := range n.cfg.Targets {
		select {
		case <-n.stop:
			metricNotifyDroppedTotal.Add(1)
			return
		default:
		}
		select {
		case n.jobs <- job{target: target, msg: msg, terminal: terminal}:
			metricNotifyQueuedTotal.Add(1)
			metricNotifyQueueLen.Set(int64(len(n.jobs)))
		default:
			metricNotifyDroppedTotal.Add(1)
			log.Warn().Str("platform", target.Platform).Str("title", msg.Title).Msg("notify_queue_full")
		}
	}
}

var _ bot.Recorder = (*Notifier)(nil)
