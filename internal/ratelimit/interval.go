// Package ratelimit provides the minimum-interval limiter that protects the
// shared embedding quota. The limiter owns the "last request" clock; every
// embedding call in the process waits on the same instance, so concurrent
// requests serialise through it.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultMinInterval is the default floor between consecutive requests.
const DefaultMinInterval = 100 * time.Millisecond

// Limiter blocks until the next outbound request is allowed.
// It is injected into adapters so tests can substitute a zero-delay limiter.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Interval enforces a minimum interval between consecutive calls, measured
// from the start of the previous call. Safe for concurrent use.
type Interval struct {
	bucket *rate.Limiter
}

var _ Limiter = (*Interval)(nil)

// NewInterval creates a limiter that admits one call per min interval.
func NewInterval(min time.Duration) *Interval {
	if min <= 0 {
		min = DefaultMinInterval
	}
	return &Interval{
		bucket: rate.NewLimiter(rate.Every(min), 1),
	}
}

// Wait blocks until the interval since the previous admitted call has
// elapsed, or the context is cancelled.
func (l *Interval) Wait(ctx context.Context) error {
	return l.bucket.Wait(ctx)
}

// Unlimited is a pass-through limiter for tests and offline stores.
type Unlimited struct{}

var _ Limiter = (*Unlimited)(nil)

// Wait returns immediately unless the context is already cancelled.
func (Unlimited) Wait(ctx context.Context) error {
	return ctx.Err()
}
