package harvest

import (
	"context"
	"errors"
	"fmt"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/remintlab/collection-harvester/internal/adapter"
	"github.com/remintlab/collection-harvester/internal/domain"
	"github.com/remintlab/collection-harvester/internal/logger"
	"github.com/remintlab/collection-harvester/internal/pagination"
	"github.com/remintlab/collection-harvester/internal/providers/marketplace"
	"github.com/remintlab/collection-harvester/internal/retry"
)

// CoordinatorConfig holds harvest run parameters.
// Concurrency defaults to 1: the marketplace rate-limits aggressively, and
// fanning enrichments out amplifies 429 storms.
type CoordinatorConfig struct {
	Concurrency  int
	SkipExisting bool
}

// Coordinator drives the top-level asset listing and dispatches each
// discovered asset to the enricher under bounded concurrency
type Coordinator struct {
	market   marketplace.Client
	enricher *Enricher
	storage  *Storage
	policy   retry.Policy
	clock    adapter.Clock
	config   CoordinatorConfig
}

// NewCoordinator creates a harvest coordinator
func NewCoordinator(market marketplace.Client, enricher *Enricher, storage *Storage, policy retry.Policy, clock adapter.Clock, config CoordinatorConfig) *Coordinator {
	if config.Concurrency <= 0 {
		config.Concurrency = 1
	}
	return &Coordinator{
		market:   market,
		enricher: enricher,
		storage:  storage,
		policy:   policy,
		clock:    clock,
		config:   config,
	}
}

// Harvest walks the collection listing and enriches every discovered asset.
// It does not fail fast: every dispatched enrichment settles before the run
// returns, and failures are aggregated rather than abandoning in-flight
// writes.
func (c *Coordinator) Harvest(ctx context.Context, collectionSlug string) error {
	logger.Info("Starting harvest",
		zap.String("collection", collectionSlug),
		zap.Int("concurrency", c.config.Concurrency),
	)

	pool := pond.NewPool(c.config.Concurrency)

	pager := pagination.NewPager(
		"list assets",
		func(ctx context.Context, cursor string) (*pagination.Page[domain.Asset], error) {
			return c.market.ListAssets(ctx, collectionSlug, cursor)
		},
		c.policy, c.clock,
	)

	var (
		tasks      []pond.Task
		discovered int
		skipped    int
		listingErr error
	)

	pages := 0
	for {
		page, err := pager.Next(ctx)
		if errors.Is(err, pagination.ErrDone) {
			break
		}
		if err != nil {
			// Stop listing but still drain everything already dispatched.
			listingErr = fmt.Errorf("asset listing failed: %w", err)
			break
		}

		pages++
		logger.Info("listing page consumed",
			zap.String("collection", collectionSlug),
			zap.Int("page", pages),
			zap.Int("assets", len(page.Items)),
		)

		for _, asset := range page.Items {
			if c.config.SkipExisting && c.storage.RecordExists(collectionSlug, asset.TokenID) {
				skipped++
				logger.Debug("skipping already-harvested asset", zap.String("token_id", asset.TokenID))
				continue
			}

			discovered++
			logger.Debug("asset discovered", zap.String("token_id", asset.TokenID))
			tasks = append(tasks, pool.SubmitErr(func() error {
				return c.enrichOne(ctx, asset)
			}))
		}
	}

	pool.StopAndWait()

	var failures []error
	for _, task := range tasks {
		if err := task.Wait(); err != nil {
			failures = append(failures, err)
		}
	}

	logger.Info("Harvest finished",
		zap.String("collection", collectionSlug),
		zap.Int("discovered", discovered),
		zap.Int("skipped", skipped),
		zap.Int("harvested", discovered-len(failures)),
		zap.Int("failed", len(failures)),
	)

	if listingErr != nil {
		failures = append([]error{listingErr}, failures...)
	}
	if len(failures) > 0 {
		return fmt.Errorf("harvest of %s completed with %d failure(s): %w",
			collectionSlug, len(failures), errors.Join(failures...))
	}

	return nil
}

// enrichOne runs one asset through the Discovered → Enriching →
// {Harvested | Failed} lifecycle. Both outcomes are terminal; retries only
// happen inside the HTTP-call retry policy.
func (c *Coordinator) enrichOne(ctx context.Context, asset domain.Asset) error {
	logger.Info("enriching asset",
		zap.String("collection", asset.CollectionSlug),
		zap.String("token_id", asset.TokenID),
	)

	if _, err := c.enricher.Enrich(ctx, asset); err != nil {
		logger.Error(err, zap.String("token_id", asset.TokenID))
		return err
	}

	logger.Info("asset harvested",
		zap.String("collection", asset.CollectionSlug),
		zap.String("token_id", asset.TokenID),
	)
	return nil
}
