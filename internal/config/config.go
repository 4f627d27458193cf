package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/remintlab/collection-harvester/internal/retry"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// MarketplaceConfig holds marketplace API configuration
type MarketplaceConfig struct {
	APIURL            string        `mapstructure:"api_url"`
	APIKey            string        `mapstructure:"api_key"`
	HTTPTimeout       time.Duration `mapstructure:"http_timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
}

// PlaceholderConfig holds placeholder media API configuration
type PlaceholderConfig struct {
	APIURL            string        `mapstructure:"api_url"`
	APIKey            string        `mapstructure:"api_key"`
	HTTPTimeout       time.Duration `mapstructure:"http_timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	PageLimit         int           `mapstructure:"page_limit"`
}

// RetryConfig holds the HTTP retry policy parameters
type RetryConfig struct {
	MaxAttempts     uint64        `mapstructure:"max_attempts"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	Multiplier      float64       `mapstructure:"multiplier"`
}

// Policy maps the config onto a retry policy
func (c *RetryConfig) Policy() retry.Policy {
	return retry.Policy{
		MaxAttempts:     c.MaxAttempts,
		InitialInterval: c.InitialInterval,
		Multiplier:      c.Multiplier,
	}
}

// HarvestConfig holds harvest run configuration
type HarvestConfig struct {
	OutputDir    string `mapstructure:"output_dir"`
	Concurrency  int    `mapstructure:"concurrency"`
	SkipExisting bool   `mapstructure:"skip_existing"`
}

// NormalizeConfig holds normalization run configuration
type NormalizeConfig struct {
	InputDir        string `mapstructure:"input_dir"`
	OutputDir       string `mapstructure:"output_dir"`
	SubstituteMedia bool   `mapstructure:"substitute_media"`
	MediaSource     string `mapstructure:"media_source"`
	ClassifyNames   bool   `mapstructure:"classify_names"`
	InjectMintDate  bool   `mapstructure:"inject_mint_date"`
	SplitLayout     bool   `mapstructure:"split_layout"`
}

// HarvesterConfig holds configuration for the harvester binary
type HarvesterConfig struct {
	BaseConfig  `mapstructure:",squash"`
	Marketplace MarketplaceConfig `mapstructure:"marketplace"`
	Retry       RetryConfig       `mapstructure:"retry"`
	Harvest     HarvestConfig     `mapstructure:"harvest"`
}

// NormalizerConfig holds configuration for the normalizer binary
type NormalizerConfig struct {
	BaseConfig  `mapstructure:",squash"`
	Placeholder PlaceholderConfig `mapstructure:"placeholder"`
	Retry       RetryConfig       `mapstructure:"retry"`
	Normalize   NormalizeConfig   `mapstructure:"normalize"`
}

// LoadHarvesterConfig loads configuration for the harvester binary
func LoadHarvesterConfig(configFile string, envPath string) (*HarvesterConfig, error) {
	v := configureViper("harvester", configFile, envPath)

	// Set defaults
	v.SetDefault("marketplace.api_url", "https://api.opensea.io/api/v1")
	v.SetDefault("marketplace.http_timeout", "30s")
	v.SetDefault("marketplace.requests_per_second", 2)
	v.SetDefault("marketplace.burst", 1)
	v.SetDefault("retry.max_attempts", 5)
	v.SetDefault("retry.initial_interval", "500ms")
	v.SetDefault("retry.multiplier", 2.0)
	v.SetDefault("harvest.output_dir", "harvest")
	v.SetDefault("harvest.concurrency", 1)
	v.SetDefault("harvest.skip_existing", false)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// Config file not found, use environment variables
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config HarvesterConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.Marketplace.APIKey == "" {
		return nil, errors.New("marketplace.api_key is required")
	}

	return &config, nil
}

// LoadNormalizerConfig loads configuration for the normalizer binary
func LoadNormalizerConfig(configFile string, envPath string) (*NormalizerConfig, error) {
	v := configureViper("normalizer", configFile, envPath)

	// Set defaults
	v.SetDefault("placeholder.api_url", "https://api.giphy.com/v1/gifs")
	v.SetDefault("placeholder.http_timeout", "30s")
	v.SetDefault("placeholder.requests_per_second", 5)
	v.SetDefault("placeholder.burst", 2)
	v.SetDefault("placeholder.page_limit", 25)
	v.SetDefault("retry.max_attempts", 5)
	v.SetDefault("retry.initial_interval", "500ms")
	v.SetDefault("retry.multiplier", 2.0)
	v.SetDefault("normalize.input_dir", "harvest")
	v.SetDefault("normalize.output_dir", "normalized")
	v.SetDefault("normalize.media_source", "pixel art")
	v.SetDefault("normalize.classify_names", true)
	v.SetDefault("normalize.inject_mint_date", true)
	v.SetDefault("normalize.split_layout", true)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// Config file not found, use environment variables
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config NormalizerConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.Normalize.SubstituteMedia && config.Placeholder.APIKey == "" {
		return nil, errors.New("placeholder.api_key is required when normalize.substitute_media is set")
	}

	return &config, nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	// Set config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		v.AddConfigPath("config/")
	}

	// Set environment variables
	v.SetEnvPrefix("REMINT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind all environment variables
	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables.
// This is required for viper to map env vars to config struct fields when no config file exists.
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		// Marketplace
		"marketplace.api_url",
		"marketplace.api_key",
		"marketplace.http_timeout",
		"marketplace.requests_per_second",
		"marketplace.burst",
		// Placeholder
		"placeholder.api_url",
		"placeholder.api_key",
		"placeholder.http_timeout",
		"placeholder.requests_per_second",
		"placeholder.burst",
		"placeholder.page_limit",
		// Retry
		"retry.max_attempts",
		"retry.initial_interval",
		"retry.multiplier",
		// Harvest
		"harvest.output_dir",
		"harvest.concurrency",
		"harvest.skip_existing",
		// Normalize
		"normalize.input_dir",
		"normalize.output_dir",
		"normalize.substitute_media",
		"normalize.media_source",
		"normalize.classify_names",
		"normalize.inject_mint_date",
		"normalize.split_layout",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	// Always try shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	// Default to config directory
	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}
