// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the configuration for missing or malformed values.
// It is called automatically by Load() and returns the first error found.
// Error messages name the environment variable that fixes the problem.
func (c *Config) Validate() error {
	if err := c.validateMongoDB(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateGame(); err != nil {
		return err
	}
	if err := c.validateRecommend(); err != nil {
		return err
	}
	if err := c.validateAPI(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

// ValidateIngest checks the additional fields the TMDB ingest command needs.
// The game server does not call this, so it can run without a TMDB API key.
func (c *Config) ValidateIngest() error {
	if c.TMDB.APIKey == "" {
		return fmt.Errorf("TMDB_API_KEY is required for catalog ingestion")
	}
	if !strings.HasPrefix(c.TMDB.BaseURL, "http://") && !strings.HasPrefix(c.TMDB.BaseURL, "https://") {
		return fmt.Errorf("TMDB_BASE_URL must start with http:// or https://, got %q", c.TMDB.BaseURL)
	}
	if c.TMDB.StartYear < 1888 {
		return fmt.Errorf("TMDB_START_YEAR must be 1888 or later, got %d", c.TMDB.StartYear)
	}
	if c.TMDB.EndYear < c.TMDB.StartYear {
		return fmt.Errorf("TMDB_END_YEAR (%d) must not precede TMDB_START_YEAR (%d)", c.TMDB.EndYear, c.TMDB.StartYear)
	}
	if c.TMDB.MinVoteCount < 0 {
		return fmt.Errorf("TMDB_MIN_VOTE_COUNT must be non-negative, got %d", c.TMDB.MinVoteCount)
	}
	if c.TMDB.MinVoteAverage < 0 || c.TMDB.MinVoteAverage > 10 {
		return fmt.Errorf("TMDB_MIN_VOTE_AVERAGE must be between 0 and 10, got %g", c.TMDB.MinVoteAverage)
	}
	if c.TMDB.CheckpointPath == "" {
		return fmt.Errorf("TMDB_CHECKPOINT_PATH must not be empty")
	}
	if c.TMDB.RateLimitRPS <= 0 {
		return fmt.Errorf("TMDB_RATE_LIMIT_RPS must be positive, got %g", c.TMDB.RateLimitRPS)
	}
	if c.TMDB.PageLimit < 1 || c.TMDB.PageLimit > 500 {
		return fmt.Errorf("TMDB_PAGE_LIMIT must be between 1 and 500, got %d", c.TMDB.PageLimit)
	}
	return nil
}

func (c *Config) validateMongoDB() error {
	if c.MongoDB.URL == "" {
		return fmt.Errorf("MONGODB_URL is required")
	}
	u, err := url.Parse(c.MongoDB.URL)
	if err != nil {
		return fmt.Errorf("MONGODB_URL is not a valid URL: %w", err)
	}
	if u.Scheme != "mongodb" && u.Scheme != "mongodb+srv" {
		return fmt.Errorf("MONGODB_URL must use mongodb:// or mongodb+srv:// scheme, got %q", u.Scheme)
	}
	if c.MongoDB.DBName == "" {
		return fmt.Errorf("MONGODB_DB_NAME is required")
	}
	if c.MongoDB.MaxPoolSize > 0 && c.MongoDB.MinPoolSize > c.MongoDB.MaxPoolSize {
		return fmt.Errorf("MONGODB_MIN_POOL_SIZE (%d) must not exceed MONGODB_MAX_POOL_SIZE (%d)",
			c.MongoDB.MinPoolSize, c.MongoDB.MaxPoolSize)
	}
	if c.MongoDB.ConnectTimeout <= 0 {
		return fmt.Errorf("MONGODB_CONNECT_TIMEOUT must be positive, got %v", c.MongoDB.ConnectTimeout)
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Host == "" {
		return fmt.Errorf("HTTP_HOST must not be empty")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %v", c.Server.Timeout)
	}
	switch c.Server.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("SERVER_ENVIRONMENT must be development, staging or production, got %q", c.Server.Environment)
	}
	return nil
}

func (c *Config) validateGame() error {
	if c.Game.TotalRounds < 1 {
		return fmt.Errorf("GAME_TOTAL_ROUNDS must be at least 1, got %d", c.Game.TotalRounds)
	}
	if c.Game.OnboardingPicks < 1 {
		return fmt.Errorf("GAME_ONBOARDING_PICKS must be at least 1, got %d", c.Game.OnboardingPicks)
	}
	if c.Game.OnboardingPoolSize < c.Game.OnboardingPicks {
		return fmt.Errorf("GAME_ONBOARDING_POOL_SIZE (%d) must be at least GAME_ONBOARDING_PICKS (%d)",
			c.Game.OnboardingPoolSize, c.Game.OnboardingPicks)
	}
	if c.Game.CandidateCount < 2 {
		return fmt.Errorf("GAME_CANDIDATE_COUNT must be at least 2, got %d", c.Game.CandidateCount)
	}
	return nil
}

func (c *Config) validateRecommend() error {
	if c.Recommend.PBCFLatentDim < 1 {
		return fmt.Errorf("RECOMMEND_PBCF_LATENT_DIM must be at least 1, got %d", c.Recommend.PBCFLatentDim)
	}
	if c.Recommend.PBCFIterations < 1 {
		return fmt.Errorf("RECOMMEND_PBCF_ITERATIONS must be at least 1, got %d", c.Recommend.PBCFIterations)
	}
	if c.Recommend.RetrainInterval <= 0 {
		return fmt.Errorf("RECOMMEND_RETRAIN_INTERVAL must be positive, got %v", c.Recommend.RetrainInterval)
	}
	return nil
}

func (c *Config) validateAPI() error {
	if c.API.DefaultPageSize < 1 {
		return fmt.Errorf("API_DEFAULT_PAGE_SIZE must be at least 1, got %d", c.API.DefaultPageSize)
	}
	if c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("API_MAX_PAGE_SIZE (%d) must be at least API_DEFAULT_PAGE_SIZE (%d)",
			c.API.MaxPageSize, c.API.DefaultPageSize)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 {
			return fmt.Errorf("RATE_LIMIT_REQS must be at least 1, got %d", c.Security.RateLimitReqs)
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %v", c.Security.RateLimitWindow)
		}
	}
	if len(c.Security.CORSOrigins) == 0 {
		return fmt.Errorf("CORS_ORIGINS must not be empty; use * to allow all origins")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error; got %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
