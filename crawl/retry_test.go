package crawl_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/fwojciec/recipefeed"
	"github.com/fwojciec/recipefeed/crawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSleep returns a Sleep func that records requested waits.
func recordingSleep(waits *[]time.Duration) func(context.Context, time.Duration) error {
	return func(ctx context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		return ctx.Err()
	}
}

func newTestPolicy(waits *[]time.Duration) *crawl.RetryPolicy {
	return &crawl.RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
		Factor:      2,
		Sleep:       recordingSleep(waits),
	}
}

func TestRetryPolicy_Do(t *testing.T) {
	t.Parallel()

	transient := &recipefeed.NetworkError{URL: "https://example.com", Kind: "*net.OpError", Err: errors.New("connection refused")}

	t.Run("returns immediately on success", func(t *testing.T) {
		t.Parallel()

		var waits []time.Duration
		calls := 0
		err := newTestPolicy(&waits).Do(context.Background(), func(ctx context.Context) error {
			calls++
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 1, calls)
		assert.Empty(t, waits)
	})

	t.Run("backs off 2s then 4s across three failed attempts", func(t *testing.T) {
		t.Parallel()

		var waits []time.Duration
		calls := 0
		err := newTestPolicy(&waits).Do(context.Background(), func(ctx context.Context) error {
			calls++
			return transient
		})

		var retryErr *crawl.RetryError
		require.ErrorAs(t, err, &retryErr)
		assert.Equal(t, 3, retryErr.Attempts)
		assert.ErrorIs(t, err, transient)
		assert.Equal(t, 3, calls)
		assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, waits)
	})

	t.Run("stops after one attempt on not found", func(t *testing.T) {
		t.Parallel()

		var waits []time.Duration
		calls := 0
		notFound := &recipefeed.StatusError{URL: "https://example.com/gone", StatusCode: http.StatusNotFound}
		err := newTestPolicy(&waits).Do(context.Background(), func(ctx context.Context) error {
			calls++
			return notFound
		})

		require.ErrorIs(t, err, notFound)
		assert.Equal(t, 1, calls)
		assert.Empty(t, waits)
	})

	t.Run("stops on parse errors", func(t *testing.T) {
		t.Parallel()

		var waits []time.Duration
		calls := 0
		err := newTestPolicy(&waits).Do(context.Background(), func(ctx context.Context) error {
			calls++
			return recipefeed.Errorf(recipefeed.EPARSE, "no title")
		})

		require.Error(t, err)
		assert.Equal(t, recipefeed.EPARSE, recipefeed.ErrorCode(err))
		assert.Equal(t, 1, calls)
		assert.Empty(t, waits)
	})

	t.Run("retries server errors", func(t *testing.T) {
		t.Parallel()

		var waits []time.Duration
		calls := 0
		err := newTestPolicy(&waits).Do(context.Background(), func(ctx context.Context) error {
			calls++
			if calls < 3 {
				return &recipefeed.StatusError{URL: "https://example.com", StatusCode: http.StatusBadGateway}
			}
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 3, calls)
		assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, waits)
	})

	t.Run("continues the backoff sequence for more attempts", func(t *testing.T) {
		t.Parallel()

		var waits []time.Duration
		policy := newTestPolicy(&waits)
		policy.MaxAttempts = 5

		_ = policy.Do(context.Background(), func(ctx context.Context) error {
			return transient
		})

		assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second}, waits)
	})

	t.Run("reports each retry", func(t *testing.T) {
		t.Parallel()

		var waits []time.Duration
		var attempts []int
		policy := newTestPolicy(&waits)
		policy.OnRetry = func(attempt int, delay time.Duration, err error) {
			attempts = append(attempts, attempt)
			assert.ErrorIs(t, err, transient)
		}

		_ = policy.Do(context.Background(), func(ctx context.Context) error {
			return transient
		})

		assert.Equal(t, []int{1, 2}, attempts)
	})

	t.Run("stops waiting when context is canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		policy := &crawl.RetryPolicy{
			MaxAttempts: 3,
			BaseDelay:   time.Hour,
			Factor:      2,
		}

		go func() {
			time.Sleep(20 * time.Millisecond)
			cancel()
		}()

		err := policy.Do(ctx, func(ctx context.Context) error {
			calls++
			return transient
		})

		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})

	t.Run("treats zero attempts as one", func(t *testing.T) {
		t.Parallel()

		calls := 0
		policy := &crawl.RetryPolicy{}
		err := policy.Do(context.Background(), func(ctx context.Context) error {
			calls++
			return transient
		})

		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})
}

func TestNewRetryPolicy(t *testing.T) {
	t.Parallel()

	policy := crawl.NewRetryPolicy(recipefeed.RetryConfig{
		MaxAttempts:   3,
		BaseDelay:     2 * time.Second,
		BackoffFactor: 2,
	})

	assert.Equal(t, 3, policy.MaxAttempts)
	assert.Equal(t, 2*time.Second, policy.Delay(1))
	assert.Equal(t, 4*time.Second, policy.Delay(2))
	assert.Equal(t, 8*time.Second, policy.Delay(3))
}
