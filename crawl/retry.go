package crawl

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/fwojciec/recipefeed"
)

// RetryPolicy retries transient failures with bounded exponential backoff.
//
// The wait before attempt n+1 is BaseDelay * Factor^(n-1), so three attempts
// with a 2s base and factor 2 wait 2s then 4s. Permanent failures, as
// classified by recipefeed.IsPermanent, stop immediately without waiting.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Factor      float64

	// Sleep waits for d or until ctx is done. Defaults to a timer-based wait.
	Sleep func(ctx context.Context, d time.Duration) error

	// OnRetry, if set, is called before each backoff wait with the attempt
	// that just failed.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// NewRetryPolicy builds a RetryPolicy from a source's retry configuration.
func NewRetryPolicy(cfg recipefeed.RetryConfig) *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts: cfg.MaxAttempts,
		BaseDelay:   cfg.BaseDelay,
		Factor:      cfg.BackoffFactor,
	}
}

// RetryError reports that every attempt failed with a transient error.
type RetryError struct {
	Attempts int
	Err      error
}

func (e *RetryError) Error() string {
	return fmt.Sprintf("giving up after %d attempts: %v", e.Attempts, e.Err)
}

func (e *RetryError) Unwrap() error { return e.Err }

// Delay returns the backoff wait after the given failed attempt (1-based).
func (p *RetryPolicy) Delay(attempt int) time.Duration {
	factor := p.Factor
	if factor <= 0 {
		factor = 1
	}
	return time.Duration(float64(p.BaseDelay) * math.Pow(factor, float64(attempt-1)))
}

// Do calls fn until it succeeds, fails permanently or runs out of attempts.
// A permanent error is returned as is; exhaustion returns a *RetryError
// wrapping the last error.
func (p *RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	maxAttempts := max(p.MaxAttempts, 1)
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if recipefeed.IsPermanent(err) || ctx.Err() != nil {
			return err
		}

		// Don't wait after the last attempt
		if attempt == maxAttempts {
			break
		}

		delay := p.Delay(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt, delay, err)
		}
		if err := sleep(ctx, delay); err != nil {
			return err
		}
	}

	return &RetryError{Attempts: maxAttempts, Err: lastErr}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
