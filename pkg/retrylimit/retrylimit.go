// Package retrylimit paces calls to throttled upstream APIs. An
// AdaptiveLimiter backs its rate off when the upstream pushes back and
// creeps back toward the configured ceiling on success; Do wraps a call
// with the limiter plus bounded exponential retry.
package retrylimit

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// AdaptiveLimiter wraps a token bucket whose rate self-adjusts between
// base/8 and base. Safe for concurrent use.
type AdaptiveLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	base    rate.Limit
	min     rate.Limit
}

// New returns a limiter running at rps requests per second with the given
// burst. Fractional rates are fine; free-tier APIs often sit well under
// one request per second.
func New(rps float64, burst int) *AdaptiveLimiter {
	if rps <= 0 {
		rps = 1
	}
	if burst < 1 {
		burst = 1
	}
	base := rate.Limit(rps)
	return &AdaptiveLimiter{
		limiter: rate.NewLimiter(base, burst),
		base:    base,
		min:     base / 8,
	}
}

// Wait blocks until a token is available or the context ends.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// Success nudges the rate back up toward the configured ceiling.
func (a *AdaptiveLimiter) Success() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if cur := a.limiter.Limit(); cur < a.base {
		next := cur * 2
		if next > a.base {
			next = a.base
		}
		a.limiter.SetLimit(next)
	}
}

// Throttled halves the rate after upstream pushback, bounded below.
func (a *AdaptiveLimiter) Throttled() {
	a.mu.Lock()
	defer a.mu.Unlock()
	next := a.limiter.Limit() / 2
	if next < a.min {
		next = a.min
	}
	a.limiter.SetLimit(next)
}

// CurrentRate reports the limiter's present requests per second.
func (a *AdaptiveLimiter) CurrentRate() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return float64(a.limiter.Limit())
}

// Config tunes the retry loop in Do.
type Config struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	Jitter       bool

	// Retryable decides whether an error is worth another attempt.
	// Nil retries everything.
	Retryable func(error) bool

	// OnRetry runs before each backoff sleep.
	OnRetry func(attempt int, err error)
}

// Do runs fn under the limiter with exponential backoff. It stops on
// success, on a non-retryable error, on context cancellation, or once
// MaxAttempts is spent.
func Do(ctx context.Context, lim *AdaptiveLimiter, cfg Config, fn func() error) error {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.Multiplier <= 1 {
		cfg.Multiplier = 2
	}

	delay := cfg.InitialDelay
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if lim != nil {
			if err := lim.Wait(ctx); err != nil {
				return err
			}
		}

		err := fn()
		if err == nil {
			if lim != nil {
				lim.Success()
			}
			return nil
		}
		lastErr = err

		if cfg.Retryable != nil && !cfg.Retryable(err) {
			return err
		}
		if lim != nil {
			lim.Throttled()
		}
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err)
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		sleep := delay
		if cfg.Jitter && delay > 0 {
			sleep += time.Duration(rand.Int63n(int64(delay/4) + 1))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}

		delay = time.Duration(float64(delay) * cfg.Multiplier)
		if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}
	return fmt.Errorf("gave up after %d attempts: %w", cfg.MaxAttempts, lastErr)
}
