package bot

import (
	"context"
	"errors"
	"time"

	"lichess-bot/internal/lichess"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"
)

const DefaultRetryMaxElapsed = 600 * time.Second

// RetryPolicy reruns a whole game session with exponential backoff until it
// succeeds, hits a final error, or MaxElapsed runs out.
type RetryPolicy struct {
	MaxElapsed time.Duration
	NewBackOff func() backoff.BackOff
	IsFinal    func(error) bool
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxElapsed: DefaultRetryMaxElapsed,
		NewBackOff: newSessionBackOff,
		IsFinal:    IsFinalError,
	}
}

// IsFinalError classifies request rejections (4xx) and process termination
// as not worth retrying. Everything else is treated as transient.
func IsFinalError(err error) bool {
	return lichess.IsFinal(err) || errors.Is(err, context.Canceled)
}

func (p RetryPolicy) Run(ctx context.Context, gameID string, op func(context.Context) (SessionResult, error)) (SessionResult, error) {
	var (
		last     SessionResult
		attempts int
	)
	_, err := backoff.Retry(ctx, func() (SessionResult, error) {
		attempts++
		res, err := op(ctx)
		last = res
		if err == nil {
			return res, nil
		}
		if p.isFinal(err) {
			return res, backoff.Permanent(err)
		}
		return res, err
	},
		backoff.WithBackOff(p.newBackOff()),
		backoff.WithMaxElapsedTime(p.maxElapsed()),
		backoff.WithNotify(func(err error, next time.Duration) {
			metricSessionRetries.Add(1)
			log.Warn().Err(err).Str("game_id", gameID).Int("attempt", attempts).Dur("retry_in", next).Msg("game_session_retry")
		}),
	)
	return last, err
}

func (p RetryPolicy) isFinal(err error) bool {
	if p.IsFinal == nil {
		return IsFinalError(err)
	}
	return p.IsFinal(err)
}

func (p RetryPolicy) newBackOff() backoff.BackOff {
	if p.NewBackOff == nil {
		return newSessionBackOff()
	}
	return p.NewBackOff()
}

func (p RetryPolicy) maxElapsed() time.Duration {
	if p.MaxElapsed <= 0 {
		return DefaultRetryMaxElapsed
	}
	return p.MaxElapsed
}

func newSessionBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.Multiplier = 2
	b.MaxInterval = time.Minute
	return b
}
