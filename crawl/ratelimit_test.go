package crawl_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/recipefeed"
	"github.com/fwojciec/recipefeed/crawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainLimiter(t *testing.T) {
	t.Parallel()

	t.Run("implements recipefeed.DomainLimiter interface", func(t *testing.T) {
		t.Parallel()
		var _ recipefeed.DomainLimiter = crawl.NewDomainLimiter(time.Second)
	})

	t.Run("every wait lasts the full interval", func(t *testing.T) {
		t.Parallel()

		var slept []time.Duration
		limiter := crawl.NewDomainLimiter(2 * time.Second)
		limiter.Sleep = func(_ context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		}

		for range 3 {
			require.NoError(t, limiter.Wait(context.Background(), "example.com"))
		}

		assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second, 2 * time.Second}, slept)
	})

	t.Run("waits after a slow request as long as after a fast one", func(t *testing.T) {
		t.Parallel()

		limiter := crawl.NewDomainLimiter(50 * time.Millisecond)

		require.NoError(t, limiter.Wait(context.Background(), "example.com"))
		time.Sleep(60 * time.Millisecond) // a request slower than the interval

		start := time.Now()
		err := limiter.Wait(context.Background(), "example.com")

		require.NoError(t, err)
		assert.GreaterOrEqual(t, time.Since(start), 45*time.Millisecond)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		limiter := crawl.NewDomainLimiter(time.Second)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		start := time.Now()
		err := limiter.Wait(ctx, "example.com")

		require.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), 500*time.Millisecond)
	})

	t.Run("zero interval never waits", func(t *testing.T) {
		t.Parallel()

		limiter := crawl.NewDomainLimiter(0)

		start := time.Now()
		for range 3 {
			require.NoError(t, limiter.Wait(context.Background(), "example.com"))
		}
		assert.Less(t, time.Since(start), 50*time.Millisecond)
		assert.Equal(t, time.Duration(0), limiter.Interval())
	})
}
