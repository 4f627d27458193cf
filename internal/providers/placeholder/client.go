package placeholder

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/remintlab/collection-harvester/internal/adapter"
	"github.com/remintlab/collection-harvester/internal/ratelimit"
)

const PROVIDER_NAME = "placeholder"

var ErrNoAPIKey = errors.New("no API key provided")

// MediaItem represents one downloadable media item from the search endpoint
type MediaItem struct {
	ID  string
	URL string
}

// SearchResult is one page of the placeholder media search
type SearchResult struct {
	Items      []MediaItem
	TotalCount int
}

// mediaEntry represents one item as returned by the search endpoint
type mediaEntry struct {
	ID     string `json:"id"`
	Images struct {
		Original struct {
			URL string `json:"url"`
		} `json:"original"`
	} `json:"images"`
}

// searchResponse represents the search endpoint response
type searchResponse struct {
	Data       []mediaEntry `json:"data"`
	Pagination struct {
		TotalCount int `json:"total_count"`
		Count      int `json:"count"`
		Offset     int `json:"offset"`
	} `json:"pagination"`
}

// Client defines the interface for the placeholder media search API to enable mocking
//
//go:generate mockgen -source=client.go -destination=../../mocks/placeholder_client.go -package=mocks -mock_names=Client=MockPlaceholderClient
type Client interface {
	// Search fetches one offset-paginated page of media matching term
	Search(ctx context.Context, term string, offset, limit int) (*SearchResult, error)
}

// PlaceholderClient implements the placeholder media search client
type PlaceholderClient struct {
	httpClient     adapter.HTTPClient
	rateLimitProxy ratelimit.Proxy
	apiURL         string
	apiKey         string
	json           adapter.JSON
}

// NewClient creates a new placeholder media client
func NewClient(httpClient adapter.HTTPClient, rateLimitProxy ratelimit.Proxy, apiURL string, apiKey string, json adapter.JSON) Client {
	return &PlaceholderClient{
		httpClient:     httpClient,
		rateLimitProxy: rateLimitProxy,
		apiURL:         apiURL,
		apiKey:         apiKey,
		json:           json,
	}
}

// Search fetches one offset-paginated page of media matching term
func (c *PlaceholderClient) Search(ctx context.Context, term string, offset, limit int) (*SearchResult, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	query := url.Values{}
	query.Set("api_key", c.apiKey)
	query.Set("q", term)
	query.Set("offset", strconv.Itoa(offset))
	query.Set("limit", strconv.Itoa(limit))

	endpoint := fmt.Sprintf("%s/search?%s", c.apiURL, query.Encode())

	respBody, err := ratelimit.Request(ctx, c.rateLimitProxy, PROVIDER_NAME, func(ctx context.Context) ([]byte, error) {
		return c.httpClient.GetBytes(ctx, endpoint, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call placeholder search API: %w", err)
	}

	var response searchResponse
	if err := c.json.Unmarshal(respBody, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal placeholder response: %w", err)
	}

	items := make([]MediaItem, 0, len(response.Data))
	for _, entry := range response.Data {
		items = append(items, MediaItem{
			ID:  entry.ID,
			URL: entry.Images.Original.URL,
		})
	}

	return &SearchResult{
		Items:      items,
		TotalCount: response.Pagination.TotalCount,
	}, nil
}
