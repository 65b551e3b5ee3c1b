// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

package config

import (
	"time"
)

// Config holds all application configuration loaded from environment variables
// and an optional YAML config file.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml) for persistent settings
//  3. Environment Variables: Override any setting via environment variables
//
// Configuration Categories:
//
//  1. Infrastructure:
//     - MongoDB: Connection URL, database name, pool sizing
//     - Server: HTTP server configuration (port, host, timeouts)
//
//  2. Gameplay:
//     - Game: Round counts, onboarding pool sizing
//     - Recommend: Model hyperparameters and retraining cadence
//
//  3. Ingestion:
//     - TMDB: API key, year range, quality filters, checkpointing
//
//  4. API & Security:
//     - API: Pagination and response limits
//     - Security: Rate limiting, CORS, trusted proxies
//
//  5. Observability:
//     - Logging: Log levels and output formats
//
// Example - Load configuration from environment:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	// cfg.MongoDB.URL, cfg.Server.Port, etc. are now populated
//
// Validation:
// Load() validates all fields and returns an error if values are malformed
// (invalid port, empty database name, inverted TMDB year range, ...). The
// TMDB API key is only required by the ingest command, so it is checked by
// Config.ValidateIngest rather than Validate.
//
// Thread Safety:
// Config is immutable after Load() and safe for concurrent read access from
// multiple goroutines.
type Config struct {
	MongoDB   MongoDBConfig   `koanf:"mongodb"`
	Server    ServerConfig    `koanf:"server"`
	Game      GameConfig      `koanf:"game"`
	Recommend RecommendConfig `koanf:"recommend"`
	TMDB      TMDBConfig      `koanf:"tmdb"`
	API       APIConfig       `koanf:"api"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// MongoDBConfig holds MongoDB connection settings.
//
// Environment Variables:
//   - MONGODB_URL: Connection string (default: mongodb://localhost:27017)
//   - MONGODB_DB_NAME: Database name (default: decidio)
//   - MONGODB_MIN_POOL_SIZE: Minimum connection pool size (default: 0)
//   - MONGODB_MAX_POOL_SIZE: Maximum connection pool size (default: 100)
//   - MONGODB_CONNECT_TIMEOUT: Initial connect/ping timeout (default: 10s)
type MongoDBConfig struct {
	URL            string        `koanf:"url"`
	DBName         string        `koanf:"db_name"`
	MinPoolSize    uint64        `koanf:"min_pool_size"`
	MaxPoolSize    uint64        `koanf:"max_pool_size"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
}

// ServerConfig holds HTTP server settings.
//
// Environment Variables:
//   - HTTP_HOST: Listen address (default: 0.0.0.0)
//   - HTTP_PORT: Listen port (default: 8420)
//   - HTTP_TIMEOUT: Read/write timeout (default: 30s)
//   - SERVER_ENVIRONMENT: "development", "staging" or "production" (default: development)
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// GameConfig holds gameplay tuning knobs.
//
// The defaults reproduce the canonical duel: a 50-item onboarding pool,
// 10 onboarding picks and 10 duel rounds of 10 candidates each. They are
// configurable mainly for tests and for small catalogs.
//
// Environment Variables:
//   - GAME_TOTAL_ROUNDS: Duel rounds per game (default: 10)
//   - GAME_ONBOARDING_POOL_SIZE: Items offered during onboarding (default: 50)
//   - GAME_ONBOARDING_PICKS: Picks required to finish onboarding (default: 10)
//   - GAME_CANDIDATE_COUNT: Candidates per duel round (default: 10)
type GameConfig struct {
	TotalRounds        int `koanf:"total_rounds"`
	OnboardingPoolSize int `koanf:"onboarding_pool_size"`
	OnboardingPicks    int `koanf:"onboarding_picks"`
	CandidateCount     int `koanf:"candidate_count"`
}

// RecommendConfig holds model hyperparameters for the taste engine.
//
// Environment Variables:
//   - RECOMMEND_PBCF_LATENT_DIM: NMF latent dimension cap (default: 6)
//   - RECOMMEND_PBCF_ITERATIONS: NMF multiplicative-update iterations (default: 50)
//   - RECOMMEND_PBCF_SEED: Deterministic RNG seed for factorization (default: 42)
//   - RECOMMEND_RETRAIN_INTERVAL: Background retrain cadence (default: 1m)
//   - RECOMMEND_TRAIN_ON_STARTUP: Train the prefix model during startup (default: true)
type RecommendConfig struct {
	PBCFLatentDim   int           `koanf:"pbcf_latent_dim"`
	PBCFIterations  int           `koanf:"pbcf_iterations"`
	PBCFSeed        int64         `koanf:"pbcf_seed"`
	RetrainInterval time.Duration `koanf:"retrain_interval"`
	TrainOnStartup  bool          `koanf:"train_on_startup"`
}

// TMDBConfig holds settings for the TMDB movie catalog ingester.
// Only the ingest command requires an API key; the game server can run
// against an already-populated catalog without one.
//
// Environment Variables:
//   - TMDB_API_KEY: TMDB v3 API key (required for ingest)
//   - TMDB_START_YEAR: Oldest release year to ingest (default: 1970)
//   - TMDB_END_YEAR: Newest release year to ingest (default: current year)
//   - TMDB_MIN_VOTE_COUNT: Discovery quality floor (default: 100)
//   - TMDB_MIN_VOTE_AVERAGE: Discovery quality floor (default: 5.0)
//   - TMDB_CHECKPOINT_PATH: Resume checkpoint file (default: /data/tmdb_checkpoint.json)
//   - TMDB_RATE_LIMIT_RPS: Client-side request rate cap (default: 4)
//   - TMDB_PAGE_LIMIT: Max discovery pages per year, 1-500 (default: 500)
type TMDBConfig struct {
	APIKey         string  `koanf:"api_key"`
	BaseURL        string  `koanf:"base_url"`
	StartYear      int     `koanf:"start_year"`
	EndYear        int     `koanf:"end_year"`
	MinVoteCount   int     `koanf:"min_vote_count"`
	MinVoteAverage float64 `koanf:"min_vote_average"`
	CheckpointPath string  `koanf:"checkpoint_path"`
	RateLimitRPS   float64 `koanf:"rate_limit_rps"`
	PageLimit      int     `koanf:"page_limit"`
}

// APIConfig holds API pagination and response settings.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// SecurityConfig holds rate limiting and CORS settings.
//
// Environment Variables:
//   - RATE_LIMIT_REQS: Requests allowed per window per IP (default: 100)
//   - RATE_LIMIT_WINDOW: Rate limit window (default: 1m)
//   - RATE_LIMIT_DISABLED: Disable rate limiting entirely (default: false)
//   - CORS_ORIGINS: Comma-separated allowed origins (default: *)
//   - TRUSTED_PROXIES: Comma-separated CIDRs allowed to set X-Forwarded-For
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	TrustedProxies    []string      `koanf:"trusted_proxies"`
}

// LoggingConfig holds logging settings for zerolog.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// JSON is recommended for production (structured, machine-parseable).
	// Console is human-readable for development.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Adds slight performance overhead.
	// Default: false
	Caller bool `koanf:"caller"`
}
