package marketplace_test

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remintlab/collection-harvester/internal/adapter"
	"github.com/remintlab/collection-harvester/internal/domain"
	"github.com/remintlab/collection-harvester/internal/mocks"
	"github.com/remintlab/collection-harvester/internal/providers/marketplace"
)

const (
	testAPIURL = "https://api.example.com/v1"
	testAPIKey = "test-api-key"
)

type testClientMocks struct {
	ctrl       *gomock.Controller
	httpClient *mocks.MockHTTPClient
	client     marketplace.Client
}

func setupTestClient(t *testing.T) *testClientMocks {
	ctrl := gomock.NewController(t)

	tm := &testClientMocks{
		ctrl:       ctrl,
		httpClient: mocks.NewMockHTTPClient(ctrl),
	}
	tm.client = marketplace.NewClient(tm.httpClient, nil, testAPIURL, testAPIKey, adapter.NewJSON())

	return tm
}

func apiKeyHeaders() map[string]string {
	return map[string]string{"X-API-KEY": testAPIKey}
}

func TestClient_ListAssets(t *testing.T) {
	tm := setupTestClient(t)
	defer tm.ctrl.Finish()

	body := `{
		"assets": [
			{"asset_contract_address": "0xabc", "token_id": "1", "name": "Token #1", "image_url": "https://img.example.com/1.png"},
			{"asset_contract_address": "0xabc", "token_id": "2", "name": "Token #2", "image_url": "https://img.example.com/2.png"}
		],
		"next": "cursor-2"
	}`

	tm.httpClient.
		EXPECT().
		GetBytes(gomock.Any(), testAPIURL+"/assets?collection=my-collection", apiKeyHeaders()).
		Return([]byte(body), nil)

	page, err := tm.client.ListAssets(context.Background(), "my-collection", "")
	require.NoError(t, err)

	assert.Equal(t, "cursor-2", page.NextCursor)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Token #1", page.Items[0].Name)
	assert.Equal(t, "1", page.Items[0].TokenID)
	assert.Equal(t, "0xabc", page.Items[1].ContractAddress)
}

func TestClient_ListAssets_WithCursor(t *testing.T) {
	tm := setupTestClient(t)
	defer tm.ctrl.Finish()

	tm.httpClient.
		EXPECT().
		GetBytes(gomock.Any(), testAPIURL+"/assets?collection=my-collection&cursor=cursor-2", apiKeyHeaders()).
		Return([]byte(`{"assets": [], "next": ""}`), nil)

	page, err := tm.client.ListAssets(context.Background(), "my-collection", "cursor-2")
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Empty(t, page.NextCursor)
}

func TestClient_ListEvents(t *testing.T) {
	tm := setupTestClient(t)
	defer tm.ctrl.Finish()

	// the asset back-reference must be decoded and discarded
	body := `{
		"asset_events": [
			{
				"event_type": "created",
				"created_date": "2021-03-01T12:00:00Z",
				"asset": {"token_id": "7", "name": "backref"}
			},
			{
				"event_type": "sold",
				"created_date": "2021-04-01T12:00:00Z",
				"from_account": {"address": "0xseller"},
				"to_account": {"address": "0xbuyer"},
				"price": {"amount": "1000000000000000000", "payment_symbol": "ETH"}
			}
		],
		"next": ""
	}`

	tm.httpClient.
		EXPECT().
		GetBytes(gomock.Any(), testAPIURL+"/events?asset_contract_address=0xabc&token_id=7", apiKeyHeaders()).
		Return([]byte(body), nil)

	page, err := tm.client.ListEvents(context.Background(), "0xABC", "7", "")
	require.NoError(t, err)

	require.Len(t, page.Items, 2)
	assert.Equal(t, domain.EventTypeCreated, page.Items[0].EventType)
	assert.Equal(t, domain.EventTypeSold, page.Items[1].EventType)
	require.NotNil(t, page.Items[1].Price)
	assert.Equal(t, "ETH", page.Items[1].Price.PaymentSymbol)
	assert.Equal(t, "0xbuyer", page.Items[1].ToAccount.Address)
}

func TestClient_ListOwners(t *testing.T) {
	tm := setupTestClient(t)
	defer tm.ctrl.Finish()

	body := `{
		"owners": [
			{"owner_address": "0xowner1", "quantity": "1", "created_at": "2020-06-15T00:00:00Z"}
		],
		"next": "owner-cursor"
	}`

	tm.httpClient.
		EXPECT().
		GetBytes(gomock.Any(), testAPIURL+"/asset/0xabc/7/owners", apiKeyHeaders()).
		Return([]byte(body), nil)

	page, err := tm.client.ListOwners(context.Background(), "0xABC", "7", "")
	require.NoError(t, err)

	assert.Equal(t, "owner-cursor", page.NextCursor)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "0xowner1", page.Items[0].OwnerAddress)
}

func TestClient_ListOwners_WithCursor(t *testing.T) {
	tm := setupTestClient(t)
	defer tm.ctrl.Finish()

	tm.httpClient.
		EXPECT().
		GetBytes(gomock.Any(), testAPIURL+"/asset/0xabc/7/owners?cursor=owner-cursor", apiKeyHeaders()).
		Return([]byte(`{"owners": [], "next": ""}`), nil)

	_, err := tm.client.ListOwners(context.Background(), "0xabc", "7", "owner-cursor")
	require.NoError(t, err)
}

func TestClient_NoAPIKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := marketplace.NewClient(mocks.NewMockHTTPClient(ctrl), nil, testAPIURL, "", adapter.NewJSON())

	_, err := client.ListAssets(context.Background(), "my-collection", "")
	assert.ErrorIs(t, err, marketplace.ErrNoAPIKey)
}

func TestClient_PropagatesStatusError(t *testing.T) {
	tm := setupTestClient(t)
	defer tm.ctrl.Finish()

	tm.httpClient.
		EXPECT().
		GetBytes(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, &adapter.StatusError{StatusCode: 429, Body: "slow down"})

	_, err := tm.client.ListAssets(context.Background(), "my-collection", "")
	require.Error(t, err)

	var statusErr *adapter.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 429, statusErr.StatusCode)
}

func TestClient_MalformedResponse(t *testing.T) {
	tm := setupTestClient(t)
	defer tm.ctrl.Finish()

	tm.httpClient.
		EXPECT().
		GetBytes(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]byte("not json"), nil)

	_, err := tm.client.ListAssets(context.Background(), "my-collection", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal")
}
