// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

package ingest

import (
	"context"
	"fmt"

	"github.com/decidio/duel/internal/config"
	"github.com/decidio/duel/internal/core"
	"github.com/decidio/duel/internal/logging"
	"github.com/decidio/duel/internal/metrics"
	"github.com/decidio/duel/internal/models/tmdb"
	"github.com/decidio/duel/internal/store"
)

// tmdbMaxPage is TMDB's hard cap on discovery pagination.
const tmdbMaxPage = 500

// progressLogEvery controls how often upsert progress is logged.
const progressLogEvery = 50

// MovieSource is the slice of the TMDB client the runner needs. The
// concrete *Client satisfies it; tests substitute a fake.
type MovieSource interface {
	DiscoverMoviesByYear(ctx context.Context, year, page int) (*tmdb.DiscoverResponse, error)
	MovieDetail(ctx context.Context, movieID int64) (*tmdb.MovieDetail, error)
}

// Runner drives a catalog ingestion: release years newest-first, discovery
// pages by popularity within each year, details fetched per movie, filtered
// and normalized items upserted by (category, source_id).
//
// Failure policy: a transient discovery failure skips the page, a failed
// detail fetch skips the movie, store errors and context cancellation abort
// the run. The checkpoint written after every page makes aborting cheap.
type Runner struct {
	source MovieSource
	store  store.ProductStore
	cfg    config.TMDBConfig
}

// NewRunner creates a runner over a movie source and a product store.
func NewRunner(source MovieSource, st store.ProductStore, cfg config.TMDBConfig) *Runner {
	return &Runner{source: source, store: st, cfg: cfg}
}

// Run ingests every configured year, resuming from the checkpoint when one
// exists. It returns nil when the full year range has been processed.
func (r *Runner) Run(ctx context.Context) error {
	pageLimit := r.cfg.PageLimit
	if pageLimit < 1 || pageLimit > tmdbMaxPage {
		pageLimit = tmdbMaxPage
	}

	cp := LoadCheckpoint(r.cfg.CheckpointPath)
	year, page := r.resumePoint(cp, pageLimit)
	upserted := cp.UpsertedCount

	logging.Info().
		Int("year", year).
		Int("page", page).
		Int64("already_upserted", upserted).
		Int("oldest_year", r.cfg.StartYear).
		Msg("Starting TMDB ingest")

	for year >= r.cfg.StartYear {
		if err := ctx.Err(); err != nil {
			return err
		}
		metrics.IngestCheckpointYear.Set(float64(year))

		discover, err := r.source.DiscoverMoviesByYear(ctx, year, page)
		if err != nil {
			if !core.Transient(err) {
				return fmt.Errorf("discover failed for year %d page %d: %w", year, page, err)
			}
			logging.Warn().Err(err).
				Int("year", year).
				Int("page", page).
				Msg("Transient discover failure, skipping page")
			year, page = nextPage(year, page, pageLimit)
			if err := r.saveProgress(year, page, upserted); err != nil {
				return err
			}
			continue
		}

		if len(discover.Results) == 0 {
			year, page = year-1, 1
			if err := r.saveProgress(year, page, upserted); err != nil {
				return err
			}
			continue
		}

		for i := range discover.Results {
			count, err := r.ingestMovie(ctx, &discover.Results[i])
			if err != nil {
				return err
			}
			upserted += count
			if count > 0 && upserted%progressLogEvery == 0 {
				logging.Info().Int64("upserted", upserted).Int("year", year).Msg("Ingest progress")
			}
		}
		metrics.IngestPagesProcessed.Inc()

		lastPage := discover.TotalPages
		if lastPage < 1 {
			lastPage = page
		}
		if lastPage > pageLimit {
			lastPage = pageLimit
		}

		page++
		if page > lastPage {
			logging.Info().
				Int("year", year).
				Int("pages", lastPage).
				Int64("upserted", upserted).
				Msg("Finished year")
			year, page = year-1, 1
		}

		if err := r.saveProgress(year, page, upserted); err != nil {
			return err
		}
	}

	logging.Info().Int64("upserted", upserted).Msg("Ingest complete")
	return nil
}

// ingestMovie fetches, filters, normalizes and upserts one discovery row.
// It reports 1 when an item was written and 0 when the movie was skipped.
func (r *Runner) ingestMovie(ctx context.Context, summary *tmdb.MovieSummary) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if summary.ID == 0 {
		return 0, nil
	}

	detail, err := r.source.MovieDetail(ctx, summary.ID)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		// A movie that cannot be fetched must not sink the run; the next
		// ingest pass picks it up.
		logging.Warn().Err(err).Int64("movie_id", summary.ID).Msg("Detail fetch failed, skipping movie")
		return 0, nil
	}

	item := NormalizeMovie(detail)
	if item == nil || !QualityOK(detail, r.cfg.MinVoteCount) {
		return 0, nil
	}

	if _, err := r.store.UpsertProduct(ctx, item); err != nil {
		return 0, fmt.Errorf("failed to upsert %s: %w", item.SourceID, err)
	}
	metrics.IngestItemsUpserted.Inc()
	return 1, nil
}

// resumePoint derives the starting year and page from a checkpoint. A fresh
// checkpoint starts at the newest configured year; a stale one from an older
// configuration is clamped into the current year range.
func (r *Runner) resumePoint(cp *Checkpoint, pageLimit int) (year, page int) {
	if cp.CurrentYear == 0 {
		return r.cfg.EndYear, 1
	}

	year = cp.CurrentYear
	if year > r.cfg.EndYear {
		year = r.cfg.EndYear
	}
	if year < r.cfg.StartYear {
		year = r.cfg.StartYear
	}

	page = cp.NextPage
	if page < 1 {
		page = 1
	}
	if page > pageLimit {
		page = pageLimit
	}
	return year, page
}

// nextPage advances past a skipped page, rolling over to the next older
// year at the page limit.
func nextPage(year, page, pageLimit int) (int, int) {
	page++
	if page > pageLimit {
		return year - 1, 1
	}
	return year, page
}

func (r *Runner) saveProgress(year, page int, upserted int64) error {
	return SaveCheckpoint(r.cfg.CheckpointPath, &Checkpoint{
		CurrentYear:   year,
		NextPage:      page,
		UpsertedCount: upserted,
	})
}
