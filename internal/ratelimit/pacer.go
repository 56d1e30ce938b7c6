package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultPaceInterval is the politeness gap between dependent calls to the
// same remote service (e.g. the two steps of a local-search lookup).
const DefaultPaceInterval = 1100 * time.Millisecond

// Pacer spaces out sequential calls against the same remote budget. It is a
// thin wrapper over x/time/rate so waits honor context cancellation.
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer creates a pacer allowing one call per interval. A non-positive
// interval falls back to DefaultPaceInterval.
func NewPacer(interval time.Duration) *Pacer {
	if interval <= 0 {
		interval = DefaultPaceInterval
	}
	limiter := rate.NewLimiter(rate.Every(interval), 1)
	// The bucket starts full; drain it so even the first dependent call
	// waits out the gap.
	limiter.Allow()
	return &Pacer{limiter: limiter}
}

// Wait blocks until the next call is allowed or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}
