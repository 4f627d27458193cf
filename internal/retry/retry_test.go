package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remintlab/collection-harvester/internal/adapter"
	"github.com/remintlab/collection-harvester/internal/retry"
)

func fastPolicy(maxAttempts uint64) retry.Policy {
	return retry.Policy{
		MaxAttempts:     maxAttempts,
		InitialInterval: time.Millisecond,
		Multiplier:      2.0,
	}
}

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	result, err := retry.Do(context.Background(), fastPolicy(5), "test-op", func(ctx context.Context) (string, error) {
		calls++
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 1, calls)
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	result, err := retry.Do(context.Background(), fastPolicy(5), "test-op", func(ctx context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	calls := 0
	_, err := retry.Do(context.Background(), fastPolicy(3), "test-op", func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("still broken")
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, retry.ErrExhausted)
	assert.Contains(t, err.Error(), "still broken")
	assert.Equal(t, 3, calls)
}

func TestDo_PermanentErrorStopsImmediately(t *testing.T) {
	sentinel := errors.New("not found")
	calls := 0
	_, err := retry.Do(context.Background(), fastPolicy(5), "test-op", func(ctx context.Context) (int, error) {
		calls++
		return 0, retry.Permanent(sentinel)
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
	assert.NotErrorIs(t, err, retry.ErrExhausted)
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	_, err := retry.Do(ctx, fastPolicy(10), "test-op", func(ctx context.Context) (int, error) {
		calls++
		if calls == 2 {
			cancel()
		}
		return 0, errors.New("transient")
	})

	require.Error(t, err)
	assert.NotErrorIs(t, err, retry.ErrExhausted)
	assert.LessOrEqual(t, calls, 3)
}

func TestDo_SingleAttemptPolicy(t *testing.T) {
	calls := 0
	_, err := retry.Do(context.Background(), fastPolicy(1), "test-op", func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("broken")
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, retry.ErrExhausted)
	assert.Equal(t, 1, calls)
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		permanent bool
	}{
		{
			name:      "not found is permanent",
			err:       &adapter.StatusError{StatusCode: 404},
			permanent: true,
		},
		{
			name:      "unauthorized is permanent",
			err:       &adapter.StatusError{StatusCode: 401},
			permanent: true,
		},
		{
			name:      "rate limit stays retryable",
			err:       &adapter.StatusError{StatusCode: 429},
			permanent: false,
		},
		{
			name:      "server error stays retryable",
			err:       &adapter.StatusError{StatusCode: 503},
			permanent: false,
		},
		{
			name:      "network error stays retryable",
			err:       errors.New("connection refused"),
			permanent: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified := retry.ClassifyStatus(tt.err)

			calls := 0
			_, err := retry.Do(context.Background(), fastPolicy(3), "classified-op", func(ctx context.Context) (int, error) {
				calls++
				return 0, classified
			})

			require.Error(t, err)
			if tt.permanent {
				assert.Equal(t, 1, calls)
			} else {
				assert.Equal(t, 3, calls)
			}
		})
	}
}

func TestDefaultPolicy(t *testing.T) {
	p := retry.DefaultPolicy()
	assert.Equal(t, uint64(5), p.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, p.InitialInterval)
	assert.Equal(t, 2.0, p.Multiplier)
}
