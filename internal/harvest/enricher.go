package harvest

import (
	"context"
	"fmt"
	"mime"
	"net/url"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/sync/errgroup"

	"github.com/remintlab/collection-harvester/internal/adapter"
	"github.com/remintlab/collection-harvester/internal/domain"
	"github.com/remintlab/collection-harvester/internal/downloader"
	"github.com/remintlab/collection-harvester/internal/pagination"
	"github.com/remintlab/collection-harvester/internal/providers/marketplace"
	"github.com/remintlab/collection-harvester/internal/retry"
)

const (
	// imageHost is the canonical high-resolution image CDN host
	imageHost = "lh3.googleusercontent.com"
	// imageSizeSuffix requests the original resolution from the CDN
	imageSizeSuffix = "=s0"
)

// Enricher resolves one discovered asset into a committed HarvestedRecord
type Enricher struct {
	market  marketplace.Client
	dl      downloader.Downloader
	storage *Storage
	policy  retry.Policy
	clock   adapter.Clock
}

// NewEnricher creates an enricher writing committed records to storage
func NewEnricher(market marketplace.Client, dl downloader.Downloader, storage *Storage, policy retry.Policy, clock adapter.Clock) *Enricher {
	return &Enricher{
		market:  market,
		dl:      dl,
		storage: storage,
		policy:  policy,
		clock:   clock,
	}
}

// Enrich concurrently resolves the asset's image bytes, full event history
// and full ownership history, then joins the three into one record and
// commits it. Failure of any sub-resolution fails the whole call; nothing
// is persisted in that case.
func (e *Enricher) Enrich(ctx context.Context, asset domain.Asset) (*domain.HarvestedRecord, error) {
	var (
		image  []byte
		ext    string
		events []domain.ProvenanceEvent
		owners []domain.OwnershipRecord
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		image, ext, err = e.fetchImage(gctx, asset)
		if err != nil {
			return fmt.Errorf("image resolution failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		pager := pagination.NewPager(
			fmt.Sprintf("events %s/%s", asset.ContractAddress, asset.TokenID),
			func(ctx context.Context, cursor string) (*pagination.Page[domain.ProvenanceEvent], error) {
				return e.market.ListEvents(ctx, asset.ContractAddress, asset.TokenID, cursor)
			},
			e.policy, e.clock,
		)
		var err error
		events, err = pager.Collect(gctx)
		if err != nil {
			return fmt.Errorf("event history failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		pager := pagination.NewPager(
			fmt.Sprintf("owners %s/%s", asset.ContractAddress, asset.TokenID),
			func(ctx context.Context, cursor string) (*pagination.Page[domain.OwnershipRecord], error) {
				return e.market.ListOwners(ctx, asset.ContractAddress, asset.TokenID, cursor)
			},
			e.policy, e.clock,
		)
		var err error
		owners, err = pager.Collect(gctx)
		if err != nil {
			return fmt.Errorf("ownership history failed: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to enrich asset %s/%s: %w", asset.ContractAddress, asset.TokenID, err)
	}

	record := &domain.HarvestedRecord{
		Name:        asset.Name,
		Description: asset.Description,
		Attributes:  asset.Traits,
		Owners:      owners,
		Events:      events,
	}

	if err := e.storage.CommitRecord(asset.CollectionSlug, asset.TokenID, record, image, ext); err != nil {
		return nil, err
	}

	return record, nil
}

// fetchImage downloads the asset's image under the retry policy and returns
// the bytes plus the file extension derived from the response content type
func (e *Enricher) fetchImage(ctx context.Context, asset domain.Asset) ([]byte, string, error) {
	imageURL := RewriteImageURL(asset)
	if imageURL == "" {
		return nil, "", retry.Permanent(fmt.Errorf("asset %s/%s has no image URL", asset.ContractAddress, asset.TokenID))
	}

	result, err := retry.Do(ctx, e.policy, "download image", func(ctx context.Context) (*downloader.DownloadResult, error) {
		res, err := e.dl.Download(ctx, imageURL)
		if err != nil {
			return nil, retry.ClassifyStatus(err)
		}
		return res, nil
	})
	if err != nil {
		return nil, "", err
	}

	data, err := result.Bytes()
	if err != nil {
		return nil, "", err
	}

	return data, extensionFor(result.ContentType(), data), nil
}

// RewriteImageURL picks the asset's best image URL and applies the
// deterministic rewrite: strip the query string, redirect to the canonical
// high-resolution host, and append the original-size suffix.
func RewriteImageURL(asset domain.Asset) string {
	raw := asset.ImageOriginalURL
	if raw == "" {
		raw = asset.ImageURL
	}
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	parsed.RawQuery = ""
	parsed.Host = imageHost

	return parsed.String() + imageSizeSuffix
}

// extensionFor derives a file extension from the response content type,
// sniffing the payload when the header is missing or unknown
func extensionFor(contentType string, data []byte) string {
	if contentType != "" {
		if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
			if m := mimetype.Lookup(parsed); m != nil && m.Extension() != "" {
				return m.Extension()
			}
		}
	}
	return mimetype.Detect(data).Extension()
}
