package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(maxAttempts int) *Config {
	return &Config{
		MaxAttempts:  maxAttempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestWithBackoff(t *testing.T) {
	ctx := context.Background()

	t.Run("returns on first success", func(t *testing.T) {
		calls := 0
		err := WithBackoff(ctx, fastConfig(5), nil, func(ctx context.Context, attempt int) error {
			calls++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries until success", func(t *testing.T) {
		calls := 0
		err := WithBackoff(ctx, fastConfig(5), nil, func(ctx context.Context, attempt int) error {
			calls++
			if attempt < 3 {
				return errors.New("transient")
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after the attempt budget", func(t *testing.T) {
		wantErr := errors.New("still down")
		calls := 0
		err := WithBackoff(ctx, fastConfig(3), nil, func(ctx context.Context, attempt int) error {
			calls++
			return wantErr
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, wantErr)
		assert.Equal(t, 3, calls)
	})

	t.Run("cancelled context stops retrying", func(t *testing.T) {
		cancelCtx, cancel := context.WithCancel(ctx)
		calls := 0
		err := WithBackoff(cancelCtx, fastConfig(0), nil, func(ctx context.Context, attempt int) error {
			calls++
			if calls == 2 {
				cancel()
			}
			return errors.New("down")
		})
		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 2, calls)
	})

	t.Run("nil config falls back to defaults", func(t *testing.T) {
		err := WithBackoff(ctx, nil, nil, func(ctx context.Context, attempt int) error {
			return nil
		})
		require.NoError(t, err)
	})
}

func TestDelayFor(t *testing.T) {
	cfg := &Config{
		InitialDelay: time.Second,
		MaxDelay:     60 * time.Second,
		Multiplier:   2.0,
	}

	assert.Equal(t, time.Second, delayFor(cfg, 1))
	assert.Equal(t, 2*time.Second, delayFor(cfg, 2))
	assert.Equal(t, 16*time.Second, delayFor(cfg, 5))
	assert.Equal(t, 60*time.Second, delayFor(cfg, 10))
}
