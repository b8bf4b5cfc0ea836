package notify

import (
	"context"
	"time"

	"lichess-bot/internal/notify/platforms"

	"github.com/rs/zerolog/log"
)

func (n *Notifier) worker(ctx context.Context) {
	defer close(n.done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-n.stop:
			n.drain(ctx)
			return
		case j := <-n.jobs:
			metricNotifyQueueLen.Set(int64(len(n.jobs)))
			n.process(ctx, j)
		}
	}
}

func (n *Notifier) drain(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-n.jobs:
			n.process(ctx, j)
		default:
			return
		}
	}
}

func (n *Notifier) process(ctx context.Context, j job) {
	adapter := n.adapters[j.target.Platform]
	if adapter == nil {
		metricNotifyDroppedTotal.Add(1)
		return
	}
	target := platforms.Target{Endpoint: j.target.Endpoint, Secret: j.target.Secret}
	if err := adapter.Send(ctx, target, j.msg); err != nil {
		metricNotifyFailedTotal.Add(1)
		log.Debug().Err(err).Str("platform", adapter.Name()).Int("attempt", j.attempt).Msg("notify_send_failed")
		if platforms.IsPermanent(err) {
			metricNotifyDroppedTotal.Add(1)
			log.Warn().Err(err).Str("platform", adapter.Name()).Str("title", j.msg.Title).Msg("notify_rejected")
			return
		}
		n.retryOrDrop(j, platforms.RetryAfter(err))
		return
	}
	metricNotifySentTotal.Add(1)
	if j.terminal {
		adapter.Forget(target, j.msg.Key)
	}
}

// retryOrDrop schedules attempt n+1 after RetryBase*2^n, or later when the
// webhook asked for a longer pause.
func (n *Notifier) retryOrDrop(j job, minDelay time.Duration) {
	if j.attempt >= n.cfg.RetryMax {
		metricNotifyRetryDroppedTotal.Add(1)
		log.Warn().Str("platform", j.target.Platform).Str("title", j.msg.Title).Msg("notify_dropped")
		return
	}
	j.attempt++
	metricNotifyRetryTotal.Add(1)
	n.retryQ.Enqueue(j, max(n.cfg.RetryBase*time.Duration(1<<(j.attempt-1)), minDelay))
}
