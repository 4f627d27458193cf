package retry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/remintlab/collection-harvester/internal/adapter"
	"github.com/remintlab/collection-harvester/internal/logger"
)

// ErrExhausted is returned when an operation keeps failing after the
// configured number of attempts.
var ErrExhausted = errors.New("retry attempts exhausted")

// Policy bounds the exponential-backoff retry of a single operation.
// The first attempt runs immediately; each subsequent attempt is preceded
// by a delay growing by Multiplier, starting at InitialInterval.
type Policy struct {
	MaxAttempts     uint64
	InitialInterval time.Duration
	Multiplier      float64
}

// DefaultPolicy returns the policy used for marketplace calls
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     5,
		InitialInterval: 500 * time.Millisecond,
		Multiplier:      2.0,
	}
}

// Permanent marks an error as non-retryable. Do surfaces it immediately
// without consuming further attempts.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// ClassifyStatus marks client errors other than rate limits as permanent.
// Rate limits, server errors and network failures stay retryable.
func ClassifyStatus(err error) error {
	var statusErr *adapter.StatusError
	if errors.As(err, &statusErr) &&
		statusErr.StatusCode >= http.StatusBadRequest &&
		statusErr.StatusCode < http.StatusInternalServerError &&
		!statusErr.RateLimited() {
		return Permanent(err)
	}
	return err
}

// Do executes op under the policy. Any error is treated as retryable unless
// wrapped with Permanent. The returned error wraps ErrExhausted once all
// attempts failed.
func Do[T any](ctx context.Context, p Policy, name string, op func(ctx context.Context) (T, error)) (T, error) {
	var result T
	var permanent bool
	attempts := uint64(0)

	operation := func() error {
		attempts++
		value, err := op(ctx)
		if err != nil {
			var perr *backoff.PermanentError
			permanent = errors.As(err, &perr)
			return err
		}
		result = value
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.Multiplier = p.Multiplier
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0

	notify := func(err error, next time.Duration) {
		logger.Warn("retrying operation",
			zap.String("operation", name),
			zap.Uint64("attempt", attempts),
			zap.Duration("next_delay", next),
			zap.Error(err),
		)
	}

	maxRetries := uint64(0)
	if p.MaxAttempts > 0 {
		maxRetries = p.MaxAttempts - 1
	}

	err := backoff.RetryNotify(operation, backoff.WithContext(backoff.WithMaxRetries(b, maxRetries), ctx), notify)
	if err != nil {
		var zero T
		if permanent || ctx.Err() != nil {
			return zero, err
		}
		return zero, fmt.Errorf("%s: %w after %d attempts: %w", name, ErrExhausted, attempts, err)
	}

	return result, nil
}
