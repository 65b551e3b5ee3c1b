// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

// Package main is the entry point for the Decidio duel server.
//
// Decidio learns what a player likes by making them choose between pairs of
// catalog items. Each duel session runs a fixed number of rounds; every pick
// updates an online preference model, and finished sessions feed an offline
// factorization that powers cross-session recommendations.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Load settings from environment variables and config files (Koanf v2)
//  2. Logging: Initialize zerolog with JSON or console output
//  3. MongoDB: Connect, verify the products schema, and ensure indexes
//  4. Recommender: Build the catalog feature space and load the taste models
//  5. Game Service: Duel session orchestration on top of the recommender
//  6. Supervisor Tree: Suture v4 manages the model trainer and HTTP server
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Environment variables (see .env.example)
//   - Config file (config.yaml)
//   - Built-in defaults
//
// Core settings:
//   - MONGODB_URL: MongoDB connection string (default: mongodb://localhost:27017)
//   - MONGODB_DB_NAME: Database name (default: decidio)
//   - HTTP_PORT: Server port (default: 8420)
//   - LOG_LEVEL / LOG_FORMAT: Logging verbosity and output mode
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (10s timeout)
//   - Stops the model trainer and closes the MongoDB connection
//   - Reports any services that failed to stop
//
// # Example Usage
//
// Development against a local MongoDB:
//
//	export MONGODB_URL=mongodb://localhost:27017
//	export LOG_FORMAT=console
//	go run ./cmd/server
//
// Production:
//
//	export MONGODB_URL=mongodb://mongo:27017
//	export MONGODB_DB_NAME=decidio
//	export CORS_ORIGINS=https://app.decidio.example
//	./duel-server
//
// Docker:
//
//	docker run -d \
//	  -e MONGODB_URL=mongodb://mongo:27017 \
//	  -p 8420:8420 \
//	  ghcr.io/decidio/duel
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/decidio/duel/internal/api"
	"github.com/decidio/duel/internal/config"
	"github.com/decidio/duel/internal/game"
	"github.com/decidio/duel/internal/logging"
	"github.com/decidio/duel/internal/recommend"
	"github.com/decidio/duel/internal/store/mongo"
	"github.com/decidio/duel/internal/supervisor"
	"github.com/decidio/duel/internal/supervisor/services"
)

// version is stamped at build time: go build -ldflags "-X main.version=v1.2.3".
var version = "dev"

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize zerolog with configuration
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Str("version", version).Msg("Starting Decidio duel server with supervisor tree")
	logging.Info().
		Str("db_name", cfg.MongoDB.DBName).
		Str("environment", cfg.Server.Environment).
		Int("port", cfg.Server.Port).
		Msg("Configuration loaded")

	// Connect to MongoDB. New pings the deployment before returning, so a
	// successful return means the database is reachable.
	connectCtx, connectCancel := context.WithTimeout(context.Background(), cfg.MongoDB.ConnectTimeout)
	st, err := mongo.New(connectCtx, &cfg.MongoDB)
	connectCancel()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		if err := st.Close(closeCtx); err != nil {
			logging.Error().Err(err).Msg("Error closing MongoDB connection")
		}
	}()
	logging.Info().Msg("MongoDB connection established")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Schema guard: refuse to start against a products collection whose
	// documents do not match the expected shape. Starting anyway would
	// poison the feature space with half-parsed items.
	if err := st.VerifyProductSchema(ctx); err != nil {
		logging.Fatal().Err(err).Msg("Product schema verification failed")
	}
	if err := st.EnsureIndexes(ctx); err != nil {
		logging.Fatal().Err(err).Msg("Failed to ensure MongoDB indexes")
	}
	logging.Info().Msg("Product schema verified and indexes ensured")

	engine := recommend.New(recommend.Config{
		PBCFLatentDim:  cfg.Recommend.PBCFLatentDim,
		PBCFIterations: cfg.Recommend.PBCFIterations,
		PBCFSeed:       cfg.Recommend.PBCFSeed,
	}, st, logging.Logger())

	// Build the initial catalog snapshot. Failure is not fatal: the model
	// stays unready (scoring endpoints return 503) and the supervised
	// trainer retries on its schedule.
	if err := engine.Refresh(ctx); err != nil {
		logging.Warn().Err(err).Msg("Initial catalog refresh failed, trainer will retry")
	} else {
		stats := engine.Stats()
		logging.Info().
			Int("catalog_size", stats.CatalogSize).
			Int("feature_dim", stats.FeatureDim).
			Msg("Catalog snapshot loaded")
	}

	games := game.New(cfg.Game, st, engine, logging.Logger())

	handler := api.NewHandler(st, engine, games, cfg, version)

	chiMw := api.NewChiMiddlewareFromSecurity(
		cfg.Security.CORSOrigins,
		cfg.Security.RateLimitReqs,
		cfg.Security.RateLimitWindow,
		cfg.Security.RateLimitDisabled,
	)
	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
		logging.Warn().Msg("This should only be used for load testing!")
	}

	router := api.NewRouter(handler, chiMw)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// Create structured logger for supervisor using our slog adapter
	// This bridges zerolog to slog for sutureslog compatibility
	slogLogger := logging.NewSlogLogger()

	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// === ADD SERVICES TO SUPERVISOR TREE ===

	// Model layer services
	tree.AddModelService(services.NewTrainerService(engine, services.TrainerConfig{
		TrainOnStartup:  cfg.Recommend.TrainOnStartup,
		RetrainInterval: cfg.Recommend.RetrainInterval,
	}, logging.Logger()))
	logging.Info().
		Dur("retrain_interval", cfg.Recommend.RetrainInterval).
		Bool("train_on_startup", cfg.Recommend.TrainOnStartup).
		Msg("Model trainer added to supervisor tree")

	// API layer services
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === START SUPERVISOR TREE ===

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// Wait for supervisor to finish (either from signal or error)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
