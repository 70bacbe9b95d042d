package scrape

import (
	"context"
	"time"

	"github.com/serplens/serplens"
	"golang.org/x/time/rate"
)

var _ serplens.RateLimiter = (*IntervalLimiter)(nil)

// IntervalLimiter enforces a fixed minimum interval between calls using a
// token bucket with no bursting. A zero or negative interval disables
// pacing entirely, which is what tests want.
type IntervalLimiter struct {
	limiter *rate.Limiter
}

// NewIntervalLimiter creates a limiter allowing one call per interval.
func NewIntervalLimiter(interval time.Duration) *IntervalLimiter {
	return &IntervalLimiter{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until the interval since the previous call has elapsed.
func (l *IntervalLimiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}
