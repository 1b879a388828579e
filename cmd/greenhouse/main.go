package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/soltixdb/greenhouse/internal/config"
	"github.com/soltixdb/greenhouse/internal/handlers"
	"github.com/soltixdb/greenhouse/internal/ingest"
	"github.com/soltixdb/greenhouse/internal/logging"
	"github.com/soltixdb/greenhouse/internal/metrics"
	"github.com/soltixdb/greenhouse/internal/queue"
	"github.com/soltixdb/greenhouse/internal/router"
	"github.com/soltixdb/greenhouse/internal/services"
	"github.com/soltixdb/greenhouse/internal/storage"
	"github.com/soltixdb/greenhouse/internal/utils"
)

var (
	Version   = "dev"     // Injected via ldflags during build
	GitCommit = "unknown" // Injected via ldflags during build
	BuildTime = "unknown" // Injected via ldflags during build
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)
	logger.Info("Greenhouse service starting...",
		"version", Version, "commit", GitCommit, "build time", BuildTime)

	metrics.Init()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Reading store
	logger.Info("Opening reading store", "driver", cfg.Database.Driver, "cache", cfg.Cache.Enabled)
	store, err := storage.NewStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open reading store", "error", err)
	}
	defer func() { _ = store.Close() }()

	readingService := services.NewReadingService(logger, store)

	var source services.BatchSource = services.NewStoreSource(store)
	if cfg.Monitor.DemoFallback {
		logger.Warn("Demo fallback enabled - analyzers use synthetic readings when the store fails")
		source = services.NewFallbackSource(source, services.NewSyntheticSource(time.Now().UnixNano()), logger)
	}
	analyticsService := services.NewAnalyticsService(logger, source, cfg.Analytics)

	// Queue: readings in, alerts out
	var queueClient queue.Queue
	var consumer *ingest.Consumer
	if cfg.QueueEnabled() {
		logger.Info("Connecting to Queue", "type", cfg.Queue.Type, "url", cfg.Queue.URL)
		queueClient, err = queue.NewQueue(cfg.Queue)
		if err != nil {
			logger.Fatal("Failed to connect to Queue", "error", err)
		}
		defer func() { _ = queueClient.Close() }()

		consumer = ingest.NewConsumer(logger, queueClient, cfg.Queue.ReadingsSubject, readingService)
		if err := consumer.Start(); err != nil {
			logger.Fatal("Failed to start ingest consumer", "error", err)
		}
	} else {
		logger.Info("Queue disabled - readings are accepted over HTTP only")
	}

	var monitor *services.Monitor
	if cfg.Monitor.Enabled {
		var publisher queue.Publisher
		if queueClient != nil {
			publisher = queueClient
		}
		monitor = services.NewMonitor(logger, analyticsService, publisher, cfg.Monitor,
			cfg.Analytics.HistoryLimit, cfg.Queue.AlertsSubject)
		monitor.Start(ctx)
	}

	if cfg.Auth.Enabled {
		logger.Info("API key authentication enabled", "num_keys", len(cfg.Auth.APIKeys))
	} else if cfg.IsProduction() {
		logger.Error("API key authentication DISABLED in production configuration - all requests will be allowed")
	} else {
		logger.Warn("API key authentication DISABLED - all requests will be allowed")
	}

	h := handlers.New(logger, readingService, analyticsService, monitor, cfg.Report)
	app := router.New(logger, h, *cfg)

	go func() {
		addr := cfg.GetServerAddress()
		logger.Info("Server listening", "address", addr)
		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	if consumer != nil {
		if err := consumer.Stop(); err != nil {
			logger.Warn("Failed to stop ingest consumer", "error", err)
		}
	}
	if monitor != nil {
		monitor.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), utils.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
