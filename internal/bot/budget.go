package bot

import (
	"math"
	"time"
)

const (
	minBudgetTenths = 3
	maxBudgetTenths = 30
)

// MoveBudget derives the fixed per-move search time from the second mover's
// starting clock t0: round(t0/200*60, 1) seconds, clamped to [0.3, 3.0].
func MoveBudget(t0 int64) time.Duration {
	tenths := math.RoundToEven(float64(t0) / 200 * 60 * 10)
	tenths = math.Min(math.Max(tenths, minBudgetTenths), maxBudgetTenths)
	return time.Duration(tenths) * 100 * time.Millisecond
}
