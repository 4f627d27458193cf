package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0600))
	return configFile
}

func TestLoadHarvesterConfig(t *testing.T) {
	tests := []struct {
		name        string
		configFile  string
		expectError bool
		validate    func(*testing.T, *HarvesterConfig)
	}{
		{
			name: "valid config file",
			configFile: `
debug: true
sentry_dsn: "https://sentry.example.com"
marketplace:
  api_url: "https://api.example.com/v1"
  api_key: "secret"
  http_timeout: "10s"
  requests_per_second: 4
  burst: 2
retry:
  max_attempts: 3
  initial_interval: "250ms"
  multiplier: 1.5
harvest:
  output_dir: "out"
  concurrency: 4
  skip_existing: true
`,
			expectError: false,
			validate: func(t *testing.T, cfg *HarvesterConfig) {
				assert.True(t, cfg.Debug)
				assert.Equal(t, "https://sentry.example.com", cfg.SentryDSN)
				assert.Equal(t, "https://api.example.com/v1", cfg.Marketplace.APIURL)
				assert.Equal(t, "secret", cfg.Marketplace.APIKey)
				assert.Equal(t, 10*time.Second, cfg.Marketplace.HTTPTimeout)
				assert.Equal(t, 4.0, cfg.Marketplace.RequestsPerSecond)
				assert.Equal(t, 2, cfg.Marketplace.Burst)
				assert.Equal(t, uint64(3), cfg.Retry.MaxAttempts)
				assert.Equal(t, 250*time.Millisecond, cfg.Retry.InitialInterval)
				assert.Equal(t, 1.5, cfg.Retry.Multiplier)
				assert.Equal(t, "out", cfg.Harvest.OutputDir)
				assert.Equal(t, 4, cfg.Harvest.Concurrency)
				assert.True(t, cfg.Harvest.SkipExisting)
			},
		},
		{
			name: "config with defaults",
			configFile: `
marketplace:
  api_key: "secret"
`,
			expectError: false,
			validate: func(t *testing.T, cfg *HarvesterConfig) {
				// Check defaults
				assert.Equal(t, "https://api.opensea.io/api/v1", cfg.Marketplace.APIURL)
				assert.Equal(t, 30*time.Second, cfg.Marketplace.HTTPTimeout)
				assert.Equal(t, 2.0, cfg.Marketplace.RequestsPerSecond)
				assert.Equal(t, 1, cfg.Marketplace.Burst)
				assert.Equal(t, uint64(5), cfg.Retry.MaxAttempts)
				assert.Equal(t, 500*time.Millisecond, cfg.Retry.InitialInterval)
				assert.Equal(t, 2.0, cfg.Retry.Multiplier)
				assert.Equal(t, "harvest", cfg.Harvest.OutputDir)
				assert.Equal(t, 1, cfg.Harvest.Concurrency)
				assert.False(t, cfg.Harvest.SkipExisting)
			},
		},
		{
			name: "missing api key",
			configFile: `
marketplace:
  api_url: "https://api.example.com/v1"
`,
			expectError: true,
			validate:    nil,
		},
		{
			name: "invalid yaml",
			configFile: `
marketplace:
  api_key: "secret"
  requests_per_second: not-a-number
`,
			expectError: true,
			validate:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configFile := writeConfigFile(t, tt.configFile)

			cfg, err := LoadHarvesterConfig(configFile, "")

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, cfg)
			} else {
				require.NoError(t, err)
				require.NotNil(t, cfg)
				if tt.validate != nil {
					tt.validate(t, cfg)
				}
			}
		})
	}
}

func TestLoadHarvesterConfig_EnvOverride(t *testing.T) {
	t.Setenv("REMINT_MARKETPLACE_API_KEY", "env-secret")
	t.Setenv("REMINT_HARVEST_CONCURRENCY", "8")

	// no config file anywhere on the search path; everything comes from env
	cfg, err := LoadHarvesterConfig("", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "env-secret", cfg.Marketplace.APIKey)
	assert.Equal(t, 8, cfg.Harvest.Concurrency)
}

func TestLoadNormalizerConfig(t *testing.T) {
	tests := []struct {
		name        string
		configFile  string
		expectError bool
		validate    func(*testing.T, *NormalizerConfig)
	}{
		{
			name: "valid config file",
			configFile: `
placeholder:
  api_url: "https://media.example.com/v1"
  api_key: "media-secret"
  page_limit: 50
normalize:
  input_dir: "harvest/my-collection"
  output_dir: "out"
  substitute_media: true
  media_source: "abstract"
  classify_names: false
  inject_mint_date: false
  split_layout: false
`,
			expectError: false,
			validate: func(t *testing.T, cfg *NormalizerConfig) {
				assert.Equal(t, "https://media.example.com/v1", cfg.Placeholder.APIURL)
				assert.Equal(t, "media-secret", cfg.Placeholder.APIKey)
				assert.Equal(t, 50, cfg.Placeholder.PageLimit)
				assert.Equal(t, "harvest/my-collection", cfg.Normalize.InputDir)
				assert.Equal(t, "out", cfg.Normalize.OutputDir)
				assert.True(t, cfg.Normalize.SubstituteMedia)
				assert.Equal(t, "abstract", cfg.Normalize.MediaSource)
				assert.False(t, cfg.Normalize.ClassifyNames)
				assert.False(t, cfg.Normalize.InjectMintDate)
				assert.False(t, cfg.Normalize.SplitLayout)
			},
		},
		{
			name:        "defaults without substitution need no api key",
			configFile:  `debug: false`,
			expectError: false,
			validate: func(t *testing.T, cfg *NormalizerConfig) {
				assert.Equal(t, "https://api.giphy.com/v1/gifs", cfg.Placeholder.APIURL)
				assert.Equal(t, 25, cfg.Placeholder.PageLimit)
				assert.Equal(t, "harvest", cfg.Normalize.InputDir)
				assert.Equal(t, "normalized", cfg.Normalize.OutputDir)
				assert.False(t, cfg.Normalize.SubstituteMedia)
				assert.Equal(t, "pixel art", cfg.Normalize.MediaSource)
				assert.True(t, cfg.Normalize.ClassifyNames)
				assert.True(t, cfg.Normalize.InjectMintDate)
				assert.True(t, cfg.Normalize.SplitLayout)
			},
		},
		{
			name: "substitution without api key",
			configFile: `
normalize:
  substitute_media: true
`,
			expectError: true,
			validate:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configFile := writeConfigFile(t, tt.configFile)

			cfg, err := LoadNormalizerConfig(configFile, "")

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, cfg)
			} else {
				require.NoError(t, err)
				require.NotNil(t, cfg)
				if tt.validate != nil {
					tt.validate(t, cfg)
				}
			}
		})
	}
}

func TestRetryConfig_Policy(t *testing.T) {
	cfg := RetryConfig{
		MaxAttempts:     7,
		InitialInterval: time.Second,
		Multiplier:      3.0,
	}

	policy := cfg.Policy()
	assert.Equal(t, uint64(7), policy.MaxAttempts)
	assert.Equal(t, time.Second, policy.InitialInterval)
	assert.Equal(t, 3.0, policy.Multiplier)
}
