package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"
)

// Watcher keeps the notification feed open and pushes every decoded event onto
// the queue in arrival order. It runs in its own goroutine so a stalled read
// never holds up the dispatcher.
type Watcher struct {
	source     EventSource
	queue      *Queue
	newBackOff func() backoff.BackOff
}

func NewWatcher(source EventSource, queue *Queue, newBackOff func() backoff.BackOff) *Watcher {
	if newBackOff == nil {
		newBackOff = newReconnectBackOff
	}
	return &Watcher{source: source, queue: queue, newBackOff: newBackOff}
}

// Run reopens the feed after any failure until ctx is done. Reconnects are
// spaced by a capped backoff that resets once a connection delivers events.
func (w *Watcher) Run(ctx context.Context) {
	log.Info().Msg("event_stream_start")
	delays := w.newBackOff()
	for ctx.Err() == nil {
		delivered, err := w.watchOnce(ctx)
		if ctx.Err() != nil {
			break
		}
		if delivered > 0 {
			delays.Reset()
		}
		wait := delays.NextBackOff()
		if wait == backoff.Stop {
			wait = time.Second
		}
		metricStreamReconnects.Add(1)
		log.Info().Err(err).Int("delivered", delivered).Dur("retry_in", wait).Msg("event_stream_reconnect")

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
		case <-timer.C:
		}
	}
	log.Info().Msg("event_stream_stop")
}

func (w *Watcher) watchOnce(ctx context.Context) (int, error) {
	stream, err := w.source.StreamEvents(ctx)
	if err != nil {
		return 0, fmt.Errorf("open event stream: %w", err)
	}
	defer stream.Close()

	delivered := 0
	for ctx.Err() == nil {
		line, err := stream.Next()
		if errors.Is(err, io.EOF) {
			return delivered, io.EOF
		}
		if err != nil {
			return delivered, fmt.Errorf("read event stream: %w", err)
		}
		if len(line) == 0 {
			continue
		}
		ev, err := DecodeEvent(line)
		if err != nil {
			return delivered, err
		}
		w.queue.Push(ev)
		delivered++
		metricEventsReceived.Add(1)
		log.Info().Str("type", string(ev.Kind)).Msg("event_received")
	}
	return delivered, ctx.Err()
}

func newReconnectBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.Multiplier = 2
	b.MaxInterval = 30 * time.Second
	return b
}
