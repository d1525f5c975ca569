package crawl

import (
	"context"
	"time"

	"github.com/fwojciec/recipefeed"
)

var _ recipefeed.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter holds every request to a host apart by a fixed delay. The
// delay is taken after each request, so a slow response or a retry backoff
// never shortens the gap before the next one.
type DomainLimiter struct {
	interval time.Duration

	// Sleep waits for d or until ctx is done. Defaults to a timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewDomainLimiter creates a DomainLimiter pausing for interval after each
// request. A non-positive interval disables the pause.
func NewDomainLimiter(interval time.Duration) *DomainLimiter {
	return &DomainLimiter{interval: interval}
}

// Interval returns the fixed delay.
func (d *DomainLimiter) Interval() time.Duration {
	return d.interval
}

// Wait blocks for the fixed delay. Returns an error if the context is
// canceled before the delay has elapsed.
func (d *DomainLimiter) Wait(ctx context.Context, _ string) error {
	if d.interval <= 0 {
		return ctx.Err()
	}
	sleep := d.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	return sleep(ctx, d.interval)
}
