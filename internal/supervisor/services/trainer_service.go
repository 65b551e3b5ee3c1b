// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// ModelTrainer is the slice of the recommender the trainer service drives.
// Refresh rebuilds the feature space against the current catalog;
// RefreshPrefixModel retrains the prefix factorization from accumulated
// ratings and reports whether a new model was produced.
type ModelTrainer interface {
	Refresh(ctx context.Context) error
	RefreshPrefixModel(ctx context.Context, trigger string, force bool) (bool, error)
}

// TrainerConfig holds configuration for the trainer service.
type TrainerConfig struct {
	// TrainOnStartup triggers a training cycle when the service starts.
	TrainOnStartup bool

	// RetrainInterval is how often to re-run the cycle. Non-positive
	// values fall back to one hour.
	RetrainInterval time.Duration
}

// TrainerService keeps the recommender current under supervision. Each cycle
// re-vectorizes the catalog (items ingested since the last pass become
// recommendable) and retrains the prefix factorization when the rating log
// grew. Failures are logged and retried on the next tick rather than
// crashing the service.
type TrainerService struct {
	trainer ModelTrainer
	config  TrainerConfig
	logger  zerolog.Logger
	name    string
}

// NewTrainerService creates a new trainer service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewTrainerService(trainer ModelTrainer, cfg TrainerConfig, logger zerolog.Logger) *TrainerService {
	return &TrainerService{
		trainer: trainer,
		config:  cfg,
		logger:  logger.With().Str("service", "trainer").Logger(),
		name:    "model-trainer",
	}
}

// Serve implements the suture.Service interface.
func (s *TrainerService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("train_on_startup", s.config.TrainOnStartup).
		Dur("retrain_interval", s.config.RetrainInterval).
		Msg("Trainer service starting")

	if s.config.TrainOnStartup {
		if err := s.cycle(ctx, "startup"); err != nil {
			s.logger.Warn().Err(err).Msg("Startup training failed (will retry on schedule)")
		}
	}

	if s.config.RetrainInterval <= 0 {
		s.config.RetrainInterval = time.Hour
	}

	ticker := time.NewTicker(s.config.RetrainInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Trainer service shutting down")
			return ctx.Err()

		case <-ticker.C:
			if err := s.cycle(ctx, "scheduled"); err != nil {
				s.logger.Warn().Err(err).Msg("Scheduled training failed")
			}
		}
	}
}

// cycle runs one refresh-and-retrain pass with its own deadline so a wedged
// pass cannot block shutdown indefinitely.
func (s *TrainerService) cycle(ctx context.Context, trigger string) error {
	trainCtx, cancel := context.WithTimeout(ctx, 30*time.Minute)
	defer cancel()

	start := time.Now()

	if err := s.trainer.Refresh(trainCtx); err != nil {
		return err
	}

	trained, err := s.trainer.RefreshPrefixModel(trainCtx, trigger, false)
	if err != nil {
		return err
	}

	s.logger.Info().
		Str("trigger", trigger).
		Bool("prefix_model_trained", trained).
		Dur("duration", time.Since(start)).
		Msg("Training cycle complete")

	return nil
}

// String returns the service name for logging.
func (s *TrainerService) String() string {
	return s.name
}
