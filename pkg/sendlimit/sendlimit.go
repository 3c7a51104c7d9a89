// Package sendlimit provides an adaptive rate limiter for outbound sends.
// The rate creeps up while sends keep succeeding and is cut back when the
// sink starts failing, which keeps the bot under the platform's limits
// without hardcoding them.
//
// Example usage:
//
//	lim := sendlimit.New(5, 1, 20, 1, 0.5)
//	err := lim.Do(ctx, func() error {
//	    return sendSomething()
//	})
package sendlimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter manages a send rate that adjusts automatically: it increases on
// success and decreases on failure. Thread-safe.
type Limiter struct {
	mu        sync.RWMutex
	limiter   *rate.Limiter
	minLimit  rate.Limit
	maxLimit  rate.Limit
	stepUp    rate.Limit
	stepDown  float64
	lastError time.Time
}

// New creates a Limiter.
//
// Parameters:
//   - initial: starting sends per second
//   - min: minimum allowed rate
//   - max: maximum allowed rate
//   - stepUp: increment on success
//   - stepDown: multiplier applied on failure (e.g., 0.5 to halve)
func New(initial, min, max rate.Limit, stepUp rate.Limit, stepDown float64) *Limiter {
	if initial < 1 {
		initial = 1
	}
	if min < 1 {
		min = 1
	}
	burst := maxInt(1, int(initial))
	return &Limiter{
		limiter:  rate.NewLimiter(initial, burst),
		minLimit: min,
		maxLimit: max,
		stepUp:   stepUp,
		stepDown: stepDown,
	}
}

// Wait blocks until a token is available or the context is canceled.
func (l *Limiter) Wait(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return l.limiter.Wait(ctx)
}

// Success increases the rate after a successful send.
func (l *Limiter) Success() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if time.Since(l.lastError) > 10*time.Second {
		l.adjustLimit(l.limiter.Limit() + l.stepUp)
	}
}

// Failure reduces the rate after a failed send.
func (l *Limiter) Failure() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastError = time.Now()
	l.adjustLimit(rate.Limit(float64(l.limiter.Limit()) * l.stepDown))
}

// Do waits for a token, runs fn, and feeds the result back into the rate.
func (l *Limiter) Do(ctx context.Context, fn func() error) error {
	if err := l.Wait(ctx); err != nil {
		return err
	}
	if err := fn(); err != nil {
		l.Failure()
		return err
	}
	l.Success()
	return nil
}

// CurrentLimit returns the current sends per second.
func (l *Limiter) CurrentLimit() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return float64(l.limiter.Limit())
}

// adjustLimit sets the limiter to a new rate, respecting min/max boundaries.
func (l *Limiter) adjustLimit(newLimit rate.Limit) {
	oldLimit := l.limiter.Limit()

	if newLimit > l.maxLimit {
		newLimit = l.maxLimit
	} else if newLimit < l.minLimit {
		newLimit = l.minLimit
	}

	if newLimit != oldLimit {
		l.limiter.SetLimit(newLimit)
		l.limiter.SetBurst(maxInt(1, int(newLimit)))
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
