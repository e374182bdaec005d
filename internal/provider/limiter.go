package provider

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter spaces requests to one provider so that no more than perMinute
// calls start in any minute. Waiters are admitted in the order they
// arrive, and a waiter whose context ends gives its slot back.
type Limiter struct {
	perMinute int
	limiter   *rate.Limiter
}

// NewLimiter creates a limiter for perMinute requests. A non-positive
// value disables limiting.
func NewLimiter(perMinute int) *Limiter {
	if perMinute <= 0 {
		return &Limiter{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Limiter{
		perMinute: perMinute,
		limiter:   rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
	}
}

// Wait blocks until the caller may issue a request or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// PerMinute returns the configured rate, 0 when unlimited.
func (l *Limiter) PerMinute() int {
	return l.perMinute
}
