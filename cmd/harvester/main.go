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
	"github.com/remintlab/collection-harvester/internal/harvest"
	"github.com/remintlab/collection-harvester/internal/logger"
	"github.com/remintlab/collection-harvester/internal/providers/marketplace"
	"github.com/remintlab/collection-harvester/internal/ratelimit"
)

var (
	configPath = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "", "Path to the directory holding .env files")
	collection = flag.String("collection", "", "Collection slug to harvest")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadHarvesterConfig(*configPath, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	err = logger.Initialize(logger.Config{
		Debug:     cfg.Debug,
		SentryDSN: cfg.SentryDSN,
		Tags:      map[string]string{"service": "harvester"},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)

	if *collection == "" {
		logger.Fatal("missing required -collection flag")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize adapters
	httpClient := adapter.NewHTTPClient(cfg.Marketplace.HTTPTimeout)
	fs := adapter.NewFileSystem()
	jsonAdapter := adapter.NewJSON()
	clock := adapter.NewClock()

	// Initialize the per-provider rate limit proxy
	proxy, err := ratelimit.NewProxy(ratelimit.Config{
		Providers: map[string]ratelimit.ProviderConfig{
			marketplace.PROVIDER_NAME: {
				RequestsPerSecond: cfg.Marketplace.RequestsPerSecond,
				Burst:             cfg.Marketplace.Burst,
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

	// Wire the harvest pipeline
	market := marketplace.NewClient(httpClient, proxy, cfg.Marketplace.APIURL, cfg.Marketplace.APIKey, jsonAdapter)
	dl := downloader.NewDownloader(httpClient, fs)
	storage := harvest.NewStorage(cfg.Harvest.OutputDir, fs, jsonAdapter)
	enricher := harvest.NewEnricher(market, dl, storage, cfg.Retry.Policy(), clock)
	coordinator := harvest.NewCoordinator(market, enricher, storage, cfg.Retry.Policy(), clock, harvest.CoordinatorConfig{
		Concurrency:  cfg.Harvest.Concurrency,
		SkipExisting: cfg.Harvest.SkipExisting,
	})

	if err := coordinator.Harvest(ctx, *collection); err != nil {
		logger.Error(err)
		logger.Flush(2 * time.Second)
		os.Exit(1)
	}
}
