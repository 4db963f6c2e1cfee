package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBackend = errors.New("backend down")

func TestBreaker_TripsAfterConsecutiveFailures(t *testing.T) {
	var transitions []string
	b := NewBreaker(BreakerConfig{
		Name:             "test",
		FailureThreshold: 3,
		OpenTimeout:      time.Minute,
		OnStateChange: func(_, from, to string) {
			transitions = append(transitions, from+"->"+to)
		},
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err := b.Execute(ctx, func(context.Context) error { return errBackend })
		assert.ErrorIs(t, err, errBackend)
	}
	assert.True(t, b.IsOpen())
	assert.Equal(t, []string{"closed->open"}, transitions)

	called := false
	err := b.Execute(ctx, func(context.Context) error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.True(t, IsBreakerError(err))
	assert.False(t, called)
}

func TestBreaker_SuccessResetsCount(t *testing.T) {
	b := NewBreaker(BreakerConfig{Name: "test", FailureThreshold: 2})
	ctx := context.Background()

	_ = b.Execute(ctx, func(context.Context) error { return errBackend })
	require.NoError(t, b.Execute(ctx, func(context.Context) error { return nil }))
	_ = b.Execute(ctx, func(context.Context) error { return errBackend })

	assert.False(t, b.IsOpen())
	stats := b.Stats()
	assert.Equal(t, "closed", stats.State)
	assert.Equal(t, uint32(1), stats.ConsecutiveFailures)
}

func TestBreaker_CancelledContext(t *testing.T) {
	b := NewBreaker(BreakerConfig{Name: "test", FailureThreshold: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := b.Execute(ctx, func(context.Context) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, b.IsOpen())
}

func TestRetry(t *testing.T) {
	cfg := RetryConfig{Retries: 2, Base: time.Millisecond}

	t.Run("succeeds after failures", func(t *testing.T) {
		calls := 0
		err := Retry(context.Background(), cfg, func(context.Context) error {
			calls++
			if calls < 3 {
				return errBackend
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("bounded attempts", func(t *testing.T) {
		calls := 0
		err := Retry(context.Background(), cfg, func(context.Context) error {
			calls++
			return errBackend
		})
		assert.ErrorIs(t, err, errBackend)
		assert.Equal(t, 3, calls)
	})

	t.Run("permanent stops", func(t *testing.T) {
		calls := 0
		err := Retry(context.Background(), cfg, func(context.Context) error {
			calls++
			return Permanent(errBackend)
		})
		assert.ErrorIs(t, err, errBackend)
		assert.Equal(t, 1, calls)
	})

	t.Run("context cancels wait", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		err := Retry(ctx, RetryConfig{Retries: 5, Base: time.Hour}, func(context.Context) error {
			calls++
			cancel()
			return errBackend
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.ErrorIs(t, err, errBackend)
		assert.Equal(t, 1, calls)
	})
}

func TestRetryConfig_Delay(t *testing.T) {
	cfg := DefaultRetryConfig()
	assert.Equal(t, 300*time.Millisecond, cfg.Delay(0))
	assert.Equal(t, 600*time.Millisecond, cfg.Delay(1))
	assert.Equal(t, 1200*time.Millisecond, cfg.Delay(2))
	assert.Equal(t, 2*time.Second, cfg.Delay(10))
}
