package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/remintlab/collection-harvester/internal/adapter"
	"github.com/remintlab/collection-harvester/internal/config"
	"github.com/remintlab/collection-harvester/internal/downloader"
	"github.com/remintlab/collection-harvester/internal/logger"
	"github.com/remintlab/collection-harvester/internal/normalize"
	"github.com/remintlab/collection-harvester/internal/providers/placeholder"
	"github.com/remintlab/collection-harvester/internal/ratelimit"
)

var (
	configPath = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "", "Path to the directory holding .env files")
	inputDir   = flag.String("input", "", "Harvested corpus directory (overrides config)")
	outputDir  = flag.String("output", "", "Normalized output directory (overrides config)")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadNormalizerConfig(*configPath, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}
	if *inputDir != "" {
		cfg.Normalize.InputDir = *inputDir
	}
	if *outputDir != "" {
		cfg.Normalize.OutputDir = *outputDir
	}

	// Initialize logger
	err = logger.Initialize(logger.Config{
		Debug:     cfg.Debug,
		SentryDSN: cfg.SentryDSN,
		Tags:      map[string]string{"service": "normalizer"},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize adapters
	httpClient := adapter.NewHTTPClient(cfg.Placeholder.HTTPTimeout)
	fs := adapter.NewFileSystem()
	jsonAdapter := adapter.NewJSON()

	// The placeholder client is only wired when media substitution is on
	var media placeholder.Client
	if cfg.Normalize.SubstituteMedia {
		proxy, err := ratelimit.NewProxy(ratelimit.Config{
			Providers: map[string]ratelimit.ProviderConfig{
				placeholder.PROVIDER_NAME: {
					RequestsPerSecond: cfg.Placeholder.RequestsPerSecond,
					Burst:             cfg.Placeholder.Burst,
				},
			},
		})
		if err != nil {
			logger.Fatal("Failed to initialize rate limit proxy", zap.Error(err))
		}
		defer func() {
			if err := proxy.Close(); err != nil {
				logger.Warn("Failed to close rate limit proxy", zap.Error(err))
			}
		}()

		media = placeholder.NewClient(httpClient, proxy, cfg.Placeholder.APIURL, cfg.Placeholder.APIKey, jsonAdapter)
	}

	dl := downloader.NewDownloader(httpClient, fs)
	normalizer := normalize.NewNormalizer(fs, jsonAdapter, dl, media, cfg.Retry.Policy())

	err = normalizer.Normalize(ctx, cfg.Normalize.InputDir, cfg.Normalize.OutputDir, normalize.Options{
		SubstituteMedia:      cfg.Normalize.SubstituteMedia,
		MediaSource:          cfg.Normalize.MediaSource,
		ClassifyNames:        cfg.Normalize.ClassifyNames,
		InjectMintDate:       cfg.Normalize.InjectMintDate,
		SplitLayout:          cfg.Normalize.SplitLayout,
		PlaceholderPageLimit: cfg.Placeholder.PageLimit,
	})
	if err != nil {
		if normalize.IsMediaExhausted(err) {
			logger.Error(err, zap.String("hint", "placeholder stream ran out before every token was assigned media"))
		} else {
			logger.Error(err)
		}
		logger.Flush(2 * time.Second)
		os.Exit(1)
	}
}
