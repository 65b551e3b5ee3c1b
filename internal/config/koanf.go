// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are the file paths searched for a YAML config file,
// in order of preference.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/decidio/config.yaml",
	"/etc/decidio/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		MongoDB: MongoDBConfig{
			URL:            "mongodb://localhost:27017",
			DBName:         "decidio",
			MinPoolSize:    0,
			MaxPoolSize:    100,
			ConnectTimeout: 10 * time.Second,
		},
		Server: ServerConfig{
			Port:        8420,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Game: GameConfig{
			TotalRounds:        10,
			OnboardingPoolSize: 50,
			OnboardingPicks:    10,
			CandidateCount:     10,
		},
		Recommend: RecommendConfig{
			PBCFLatentDim:   6,
			PBCFIterations:  50,
			PBCFSeed:        42,
			RetrainInterval: time.Minute,
			TrainOnStartup:  true,
		},
		TMDB: TMDBConfig{
			APIKey:         "",
			BaseURL:        "https://api.themoviedb.org/3",
			StartYear:      1970,
			EndYear:        time.Now().Year(),
			MinVoteCount:   100,
			MinVoteAverage: 5.0,
			CheckpointPath: "/data/tmdb_checkpoint.json",
			RateLimitRPS:   4,
			PageLimit:      500, // TMDB discovery hard-caps page at 500
		},
		API: APIConfig{
			DefaultPageSize: 20,
			MaxPageSize:     100,
		},
		Security: SecurityConfig{
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
			TrustedProxies:    []string{},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads configuration using layered precedence:
//
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
//
// This function is the preferred way to load configuration and provides:
//   - Type-safe configuration unmarshaling
//   - Clear precedence: ENV > File > Defaults
//   - Support for nested configuration via koanf struct tags
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// Transform environment variable names to koanf paths:
	// MONGODB_URL -> mongodb.url
	// GAME_TOTAL_ROUNDS -> game.total_rounds
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	// Unmarshal into Config struct
	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	// Check environment variable first
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	// Search default paths
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
	"security.trusted_proxies",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// This is necessary because env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// If it's already a slice (from YAML file), skip
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		// If it's a string, split by comma
		if strVal, ok := val.(string); ok {
			if strVal == "" {
				continue
			}
			parts := strings.Split(strVal, ",")
			trimmed := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					trimmed = append(trimmed, p)
				}
			}
			if len(trimmed) > 0 {
				if err := k.Set(path, trimmed); err != nil {
					return fmt.Errorf("failed to set %s: %w", path, err)
				}
			}
		}
	}
	return nil
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped variables are dropped so unrelated environment noise (PATH, HOME,
// TERM, ...) never leaks into the configuration tree.
//
// Examples:
//   - MONGODB_URL -> mongodb.url
//   - HTTP_PORT -> server.port
//   - TMDB_API_KEY -> tmdb.api_key
//   - GAME_TOTAL_ROUNDS -> game.total_rounds
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// MongoDB mappings
		"mongodb_url":             "mongodb.url",
		"mongodb_db_name":         "mongodb.db_name",
		"mongodb_min_pool_size":   "mongodb.min_pool_size",
		"mongodb_max_pool_size":   "mongodb.max_pool_size",
		"mongodb_connect_timeout": "mongodb.connect_timeout",

		// Server mappings
		"http_port":          "server.port",
		"http_host":          "server.host",
		"http_timeout":       "server.timeout",
		"server_environment": "server.environment",

		// Game mappings
		"game_total_rounds":         "game.total_rounds",
		"game_onboarding_pool_size": "game.onboarding_pool_size",
		"game_onboarding_picks":     "game.onboarding_picks",
		"game_candidate_count":      "game.candidate_count",

		// Recommendation engine mappings
		"recommend_pbcf_latent_dim":  "recommend.pbcf_latent_dim",
		"recommend_pbcf_iterations":  "recommend.pbcf_iterations",
		"recommend_pbcf_seed":        "recommend.pbcf_seed",
		"recommend_retrain_interval": "recommend.retrain_interval",
		"recommend_train_on_startup": "recommend.train_on_startup",

		// TMDB ingest mappings
		"tmdb_api_key":          "tmdb.api_key",
		"tmdb_base_url":         "tmdb.base_url",
		"tmdb_start_year":       "tmdb.start_year",
		"tmdb_end_year":         "tmdb.end_year",
		"tmdb_min_vote_count":   "tmdb.min_vote_count",
		"tmdb_min_vote_average": "tmdb.min_vote_average",
		"tmdb_checkpoint_path":  "tmdb.checkpoint_path",
		"tmdb_rate_limit_rps":   "tmdb.rate_limit_rps",
		"tmdb_page_limit":       "tmdb.page_limit",

		// API mappings
		"api_default_page_size": "api.default_page_size",
		"api_max_page_size":     "api.max_page_size",

		// Security mappings
		"rate_limit_reqs":     "security.rate_limit_reqs",
		"rate_limit_window":   "security.rate_limit_window",
		"rate_limit_disabled": "security.rate_limit_disabled",
		"cors_origins":        "security.cors_origins",
		"trusted_proxies":     "security.trusted_proxies",

		// Logging mappings
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// Unknown environment variables are ignored
	return ""
}
