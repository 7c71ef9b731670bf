// Package ratelimit enforces the request budget against the Data-API.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter admits callers at a configured sustained rate. It is safe for
// concurrent use; all fetchers targeting the same source share one instance.
type Limiter struct {
	lim *rate.Limiter
}

// New creates a limiter admitting rps requests per second.
//
// The burst is a single token so admissions are spaced evenly rather than
// clustered at window boundaries.
func New(rps float64) *Limiter {
	return &Limiter{
		lim: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// Wait blocks until the caller may issue one request, or until ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.lim.Wait(ctx)
}
