package pagination

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/remintlab/collection-harvester/internal/adapter"
	"github.com/remintlab/collection-harvester/internal/logger"
	"github.com/remintlab/collection-harvester/internal/retry"
)

// ErrDone is returned by Next once the cursor chain has ended
var ErrDone = errors.New("no more pages")

// Page is one page of a cursor-paginated listing. An empty NextCursor
// terminates the sequence.
type Page[T any] struct {
	Items      []T
	NextCursor string
}

// FetchFunc fetches a single page. An empty cursor requests the first page.
type FetchFunc[T any] func(ctx context.Context, cursor string) (*Page[T], error)

// Pager lazily walks a cursor-paginated listing. Page N+1 is never requested
// before page N's cursor is known. A Pager is single-traversal: restarting
// means constructing a new one.
type Pager[T any] struct {
	name   string
	fetch  FetchFunc[T]
	policy retry.Policy
	clock  adapter.Clock

	cursor string
	done   bool
}

// NewPager creates a pager over fetch, retrying each page under policy
func NewPager[T any](name string, fetch FetchFunc[T], policy retry.Policy, clock adapter.Clock) *Pager[T] {
	return &Pager[T]{
		name:   name,
		fetch:  fetch,
		policy: policy,
		clock:  clock,
	}
}

// Next fetches the next page, or ErrDone when the sequence is finished.
// Rate-limited responses carrying a server wait hint suspend for that
// duration first; the hint wait composes with, and precedes, the policy's
// own backoff.
func (p *Pager[T]) Next(ctx context.Context) (*Page[T], error) {
	if p.done {
		return nil, ErrDone
	}

	page, err := retry.Do(ctx, p.policy, p.name, func(ctx context.Context) (*Page[T], error) {
		page, err := p.fetch(ctx, p.cursor)
		if err != nil {
			return nil, p.classify(err)
		}
		return page, nil
	})
	if err != nil {
		return nil, err
	}

	p.cursor = page.NextCursor
	if page.NextCursor == "" {
		p.done = true
	}

	return page, nil
}

// Collect drains the remaining pages and returns the concatenated items
func (p *Pager[T]) Collect(ctx context.Context) ([]T, error) {
	var items []T
	for {
		page, err := p.Next(ctx)
		if errors.Is(err, ErrDone) {
			return items, nil
		}
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)
	}
}

// classify maps HTTP failures onto the retry taxonomy: rate limits honor the
// server wait hint then stay retryable, other 4xx are permanent, everything
// else (network errors, 5xx) is retryable.
func (p *Pager[T]) classify(err error) error {
	var statusErr *adapter.StatusError
	if !errors.As(err, &statusErr) {
		return err
	}

	if statusErr.RateLimited() {
		if statusErr.RetryAfter > 0 {
			logger.Info("rate limited, honoring server wait hint",
				zap.String("pager", p.name),
				zap.Duration("retry_after", statusErr.RetryAfter),
			)
			p.clock.Sleep(statusErr.RetryAfter)
		}
		return err
	}

	return retry.ClassifyStatus(err)
}
