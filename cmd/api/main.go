package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/verimotive/claims-engine/internal/api/rest"
	"github.com/verimotive/claims-engine/internal/infrastructure/config"
	"github.com/verimotive/claims-engine/internal/infrastructure/storage"
	"github.com/verimotive/claims-engine/internal/infrastructure/telemetry"
	"github.com/verimotive/claims-engine/internal/metrics"
	"github.com/verimotive/claims-engine/internal/service/fraud"
	risksvc "github.com/verimotive/claims-engine/internal/service/risk"
	telsvc "github.com/verimotive/claims-engine/internal/service/telematics"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := telemetry.SetupLogger(cfg.LogLevel)
	logger.Info("starting claims engine",
		"version", cfg.Version,
		"environment", cfg.Environment,
		"storage_driver", cfg.Storage.Driver)

	ctx := context.Background()

	store, err := storage.NewStore(cfg.Storage)
	if err != nil {
		logger.Error("failed to open telemetry store", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	if err := store.Init(ctx); err != nil {
		logger.Error("failed to initialize telemetry store", "error", err)
		os.Exit(1)
	}

	registry, err := metrics.NewRegistry()
	if err != nil {
		logger.Error("failed to create metrics registry", "error", err)
		os.Exit(1)
	}

	stores := telsvc.NewStoreService(store, cfg.Telematics, logger, registry)
	classifier := fraud.LoadClassifier(cfg.Fraud.ModelPath, logger)

	handler := rest.NewHandler(rest.Services{
		Stores:   stores,
		Analyzer: telsvc.NewAnalyzer(stores, cfg.Telematics, logger, registry),
		Features: telsvc.NewFeatureEngineer(cfg.Telematics),
		Risk:     risksvc.NewAssessor(cfg.Risk, logger, registry),
		Fraud:    fraud.NewService(cfg.Fraud, classifier, logger, registry),
	}, logger, cfg.Version)

	server := rest.NewServer(cfg.Server, handler, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("shutdown failed", "error", err)
			os.Exit(1)
		}
	}
	logger.Info("stopped")
}
