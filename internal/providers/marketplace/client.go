package marketplace

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/remintlab/collection-harvester/internal/adapter"
	"github.com/remintlab/collection-harvester/internal/domain"
	"github.com/remintlab/collection-harvester/internal/pagination"
	"github.com/remintlab/collection-harvester/internal/ratelimit"
)

const PROVIDER_NAME = "marketplace"

var ErrNoAPIKey = errors.New("no API key provided")

// assetsResponse represents the response from the marketplace asset listing endpoint
type assetsResponse struct {
	Assets []domain.Asset `json:"assets"`
	Next   string         `json:"next"`
}

// eventEnvelope represents one event as returned by the events endpoint.
// The asset back-reference is decoded only to be discarded; it is a weak
// reference and is stripped before persistence.
type eventEnvelope struct {
	domain.ProvenanceEvent
	Asset interface{} `json:"asset,omitempty"`
}

// eventsResponse represents the response from the marketplace events endpoint
type eventsResponse struct {
	AssetEvents []eventEnvelope `json:"asset_events"`
	Next        string          `json:"next"`
}

// ownersResponse represents the response from the marketplace owners endpoint
type ownersResponse struct {
	Owners []domain.OwnershipRecord `json:"owners"`
	Next   string                   `json:"next"`
}

// Client defines the interface for marketplace client operations to enable mocking
//
//go:generate mockgen -source=client.go -destination=../../mocks/marketplace_client.go -package=mocks -mock_names=Client=MockMarketplaceClient
type Client interface {
	// ListAssets fetches one page of a collection's assets
	ListAssets(ctx context.Context, collectionSlug, cursor string) (*pagination.Page[domain.Asset], error)

	// ListEvents fetches one page of an asset's trade/transfer history
	ListEvents(ctx context.Context, contractAddress, tokenID, cursor string) (*pagination.Page[domain.ProvenanceEvent], error)

	// ListOwners fetches one page of an asset's ownership history
	ListOwners(ctx context.Context, contractAddress, tokenID, cursor string) (*pagination.Page[domain.OwnershipRecord], error)
}

// MarketplaceClient implements the marketplace client
type MarketplaceClient struct {
	httpClient     adapter.HTTPClient
	rateLimitProxy ratelimit.Proxy
	apiURL         string
	apiKey         string
	json           adapter.JSON
}

// NewClient creates a new marketplace client
func NewClient(httpClient adapter.HTTPClient, rateLimitProxy ratelimit.Proxy, apiURL string, apiKey string, json adapter.JSON) Client {
	return &MarketplaceClient{
		httpClient:     httpClient,
		rateLimitProxy: rateLimitProxy,
		apiURL:         apiURL,
		apiKey:         apiKey,
		json:           json,
	}
}

// ListAssets fetches one page of a collection's assets
func (c *MarketplaceClient) ListAssets(ctx context.Context, collectionSlug, cursor string) (*pagination.Page[domain.Asset], error) {
	query := url.Values{}
	query.Set("collection", collectionSlug)
	if cursor != "" {
		query.Set("cursor", cursor)
	}

	var response assetsResponse
	if err := c.get(ctx, fmt.Sprintf("%s/assets?%s", c.apiURL, query.Encode()), &response); err != nil {
		return nil, fmt.Errorf("failed to list assets for %s: %w", collectionSlug, err)
	}

	return &pagination.Page[domain.Asset]{
		Items:      response.Assets,
		NextCursor: response.Next,
	}, nil
}

// ListEvents fetches one page of an asset's trade/transfer history
func (c *MarketplaceClient) ListEvents(ctx context.Context, contractAddress, tokenID, cursor string) (*pagination.Page[domain.ProvenanceEvent], error) {
	query := url.Values{}
	query.Set("asset_contract_address", strings.ToLower(contractAddress))
	query.Set("token_id", tokenID)
	if cursor != "" {
		query.Set("cursor", cursor)
	}

	var response eventsResponse
	if err := c.get(ctx, fmt.Sprintf("%s/events?%s", c.apiURL, query.Encode()), &response); err != nil {
		return nil, fmt.Errorf("failed to list events for %s/%s: %w", contractAddress, tokenID, err)
	}

	events := make([]domain.ProvenanceEvent, 0, len(response.AssetEvents))
	for _, envelope := range response.AssetEvents {
		events = append(events, envelope.ProvenanceEvent)
	}

	return &pagination.Page[domain.ProvenanceEvent]{
		Items:      events,
		NextCursor: response.Next,
	}, nil
}

// ListOwners fetches one page of an asset's ownership history
func (c *MarketplaceClient) ListOwners(ctx context.Context, contractAddress, tokenID, cursor string) (*pagination.Page[domain.OwnershipRecord], error) {
	query := url.Values{}
	if cursor != "" {
		query.Set("cursor", cursor)
	}

	endpoint := fmt.Sprintf("%s/asset/%s/%s/owners", c.apiURL, strings.ToLower(contractAddress), tokenID)
	if encoded := query.Encode(); encoded != "" {
		endpoint = endpoint + "?" + encoded
	}

	var response ownersResponse
	if err := c.get(ctx, endpoint, &response); err != nil {
		return nil, fmt.Errorf("failed to list owners for %s/%s: %w", contractAddress, tokenID, err)
	}

	return &pagination.Page[domain.OwnershipRecord]{
		Items:      response.Owners,
		NextCursor: response.Next,
	}, nil
}

// get performs an authenticated rate-limited GET and unmarshals the response
func (c *MarketplaceClient) get(ctx context.Context, url string, result interface{}) error {
	if c.apiKey == "" {
		return ErrNoAPIKey
	}

	headers := map[string]string{
		"X-API-KEY": c.apiKey,
	}

	respBody, err := ratelimit.Request(ctx, c.rateLimitProxy, PROVIDER_NAME, func(ctx context.Context) ([]byte, error) {
		return c.httpClient.GetBytes(ctx, url, headers)
	})
	if err != nil {
		return err
	}

	if err := c.json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("failed to unmarshal marketplace response: %w", err)
	}

	return nil
}
