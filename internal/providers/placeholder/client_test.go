package placeholder_test

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remintlab/collection-harvester/internal/adapter"
	"github.com/remintlab/collection-harvester/internal/mocks"
	"github.com/remintlab/collection-harvester/internal/providers/placeholder"
)

const (
	testAPIURL = "https://media.example.com/v1"
	testAPIKey = "media-key"
)

func TestClient_Search(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	httpClient := mocks.NewMockHTTPClient(ctrl)
	client := placeholder.NewClient(httpClient, nil, testAPIURL, testAPIKey, adapter.NewJSON())

	body := `{
		"data": [
			{"id": "aaa", "images": {"original": {"url": "https://media.example.com/aaa.gif?cid=1"}}},
			{"id": "bbb", "images": {"original": {"url": "https://media.example.com/bbb.gif"}}}
		],
		"pagination": {"total_count": 5000, "count": 2, "offset": 50}
	}`

	httpClient.
		EXPECT().
		GetBytes(gomock.Any(), testAPIURL+"/search?api_key=media-key&limit=25&offset=50&q=art", nil).
		Return([]byte(body), nil)

	result, err := client.Search(context.Background(), "art", 50, 25)
	require.NoError(t, err)

	assert.Equal(t, 5000, result.TotalCount)
	require.Len(t, result.Items, 2)
	assert.Equal(t, "aaa", result.Items[0].ID)
	assert.Equal(t, "https://media.example.com/aaa.gif?cid=1", result.Items[0].URL)
}

func TestClient_Search_NoAPIKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := placeholder.NewClient(mocks.NewMockHTTPClient(ctrl), nil, testAPIURL, "", adapter.NewJSON())

	_, err := client.Search(context.Background(), "art", 0, 25)
	assert.ErrorIs(t, err, placeholder.ErrNoAPIKey)
}

func TestClient_Search_PropagatesStatusError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	httpClient := mocks.NewMockHTTPClient(ctrl)
	client := placeholder.NewClient(httpClient, nil, testAPIURL, testAPIKey, adapter.NewJSON())

	httpClient.
		EXPECT().
		GetBytes(gomock.Any(), gomock.Any(), nil).
		Return(nil, &adapter.StatusError{StatusCode: 500})

	_, err := client.Search(context.Background(), "art", 0, 25)
	require.Error(t, err)

	var statusErr *adapter.StatusError
	assert.ErrorAs(t, err, &statusErr)
}
