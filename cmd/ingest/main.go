// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

// Package main is the TMDB catalog ingestion command.
//
// It walks TMDB discovery newest year first, fetches full details for every
// movie that clears the configured quality floor and upserts the normalized
// items into the products collection. Progress is checkpointed after every
// page, so the command can be interrupted and rerun at any time; it resumes
// where it stopped.
//
// Required configuration:
//
//	export TMDB_API_KEY=your-v3-api-key
//	export MONGODB_URL=mongodb://localhost:27017
//	export MONGODB_DB_NAME=decidio
//
// Optional tuning:
//
//	export TMDB_START_YEAR=1970          # oldest year to ingest
//	export TMDB_END_YEAR=2026            # newest year to ingest
//	export TMDB_MIN_VOTE_COUNT=100       # quality floor
//	export TMDB_RATE_LIMIT_RPS=4         # client-side request cap
//	export TMDB_CHECKPOINT_PATH=/data/tmdb_checkpoint.json
//
// The game server reads the same catalog; run the ingester whenever the
// movie category should grow or refresh. A SIGINT or SIGTERM stops the run
// cleanly after the in-flight page.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/decidio/duel/internal/config"
	"github.com/decidio/duel/internal/ingest"
	"github.com/decidio/duel/internal/logging"
	"github.com/decidio/duel/internal/store/mongo"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	if err := cfg.ValidateIngest(); err != nil {
		logging.Fatal().Err(err).Msg("Invalid ingest configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, cfg.MongoDB.ConnectTimeout)
	st, err := mongo.New(connectCtx, &cfg.MongoDB)
	cancel()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := st.Close(closeCtx); err != nil {
			logging.Error().Err(err).Msg("Error closing MongoDB connection")
		}
	}()

	// The unique (category, source_id) index must exist before upserts so
	// concurrent runs cannot duplicate items.
	if err := st.EnsureIndexes(ctx); err != nil {
		logging.Fatal().Err(err).Msg("Failed to ensure indexes")
	}

	logging.Info().
		Int("start_year", cfg.TMDB.StartYear).
		Int("end_year", cfg.TMDB.EndYear).
		Int("min_vote_count", cfg.TMDB.MinVoteCount).
		Float64("rate_limit_rps", cfg.TMDB.RateLimitRPS).
		Str("checkpoint", cfg.TMDB.CheckpointPath).
		Msg("Starting TMDB catalog ingestion")

	client := ingest.NewClient(&cfg.TMDB)
	runner := ingest.NewRunner(client, st, cfg.TMDB)

	if err := runner.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			logging.Info().Msg("Ingest interrupted; rerun to resume from the checkpoint")
			return
		}
		logging.Fatal().Err(err).Msg("Ingest failed")
	}

	logging.Info().Msg("Ingest complete")
}
