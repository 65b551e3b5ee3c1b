// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

// Package ingest pulls a movie catalog from The Movie Database (TMDB) into
// the products collection.
//
// # Pipeline
//
// The Runner walks release years newest-first and, within each year, pages of
// /discover/movie sorted by popularity. Every discovered movie is fetched in
// full (details, keywords, credits, release dates), run through quality
// filters, normalized into a catalog.Item and upserted keyed by
// (category, source_id). Re-running the ingester refreshes existing items
// in place.
//
// # Quality Filters
//
// A movie enters the catalog only when it has at least one image, a
// description, a known runtime and a vote count at or above the configured
// floor. Adult titles and entries without an ID or title are dropped during
// normalization.
//
// # Resilience
//
//   - Rate limiter: token bucket capping requests per second
//     (TMDB_RATE_LIMIT_RPS) so the ingester stays inside TMDB's quota.
//   - Retries: up to 4 attempts per call with exponential backoff
//     (1s, 2s, 4s) on transient statuses 408/429/500/502/503/504 and on
//     network errors. Non-transient statuses fail immediately.
//   - Circuit breaker: opens after a 60% failure rate across at least 10
//     calls, rejecting requests for 2 minutes before probing again.
//   - Checkpoint: progress is written to a JSON file after every page, so a
//     killed run resumes at the year and page where it stopped.
//
// A transient discovery failure skips the page and moves on; a failed detail
// fetch skips just that movie. Only store errors and context cancellation
// abort a run.
//
// # Usage
//
//	client := ingest.NewClient(&cfg.TMDB)
//	runner := ingest.NewRunner(client, st, cfg.TMDB)
//	if err := runner.Run(ctx); err != nil {
//	    logging.Fatal().Err(err).Msg("Ingest failed")
//	}
package ingest
