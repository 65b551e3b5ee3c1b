// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus Metrics Integration for Production Observability
// This package provides instrumentation for:
// - MongoDB query performance
// - API endpoint latency and throughput
// - Game lifecycle and duel outcomes
// - Model training (prefix factorization) and online updates
// - TMDB catalog ingestion

var (
	// MongoDB Metrics
	StoreQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mongodb_query_duration_seconds",
			Help:    "Duration of MongoDB operations in seconds",
			Buckets: prometheus.DefBuckets, // 0.005s, 0.01s, 0.025s, 0.05s, 0.1s, 0.25s, 0.5s, 1s, 2.5s, 5s, 10s
		},
		[]string{"operation", "collection"},
	)

	StoreQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mongodb_query_errors_total",
			Help: "Total number of MongoDB operation errors",
		},
		[]string{"operation", "collection", "error_type"},
	)

	StoreDocumentsUpserted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mongodb_documents_upserted_total",
			Help: "Total number of documents inserted or updated",
		},
		[]string{"collection"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}, // Optimized for API latency
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Game Lifecycle Metrics
	GamesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "games_created_total",
			Help: "Total number of games created",
		},
	)

	GamesCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "games_completed_total",
			Help: "Total number of games played to the final round",
		},
	)

	OnboardingSubmissions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "onboarding_submissions_total",
			Help: "Total number of accepted onboarding selections",
		},
	)

	RoundsResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rounds_resolved_total",
			Help: "Total number of duel rounds resolved by a human pick",
		},
		[]string{"ai_result"}, // "correct", "incorrect"
	)

	RoundScoringDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "round_scoring_duration_seconds",
			Help:    "Time to score round candidates and resolve the duel",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	AIPickRank = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ai_pick_rank",
			Help:    "Rank of the human pick within the model's scored candidates (1 = model's top pick)",
			Buckets: []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		},
	)

	// Model Metrics (online profile + prefix factorization)
	ProfileUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_updates_total",
			Help: "Total number of online preference profile updates",
		},
		[]string{"kind"}, // "selection", "exception", "rating"
	)

	FeatureSpaceDimensions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "feature_space_dimensions",
			Help: "Current number of dimensions in the catalog feature space",
		},
	)

	PrefixModelTrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "prefix_model_training_duration_seconds",
			Help:    "Duration of prefix factorization training runs",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		},
	)

	PrefixModelTrainings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prefix_model_trainings_total",
			Help: "Total number of prefix factorization training runs",
		},
		[]string{"trigger", "result"}, // trigger: "startup", "refresh", "scheduled", "forced"; result: "success", "error"
	)

	PrefixModelRatings = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "prefix_model_ratings",
			Help: "Number of prefix ratings in the last trained matrix",
		},
	)

	PrefixModelMissingRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "prefix_model_missing_ratio",
			Help: "Fraction of unobserved cells in the last trained rating matrix",
		},
	)

	// TMDB Ingest Metrics
	TMDBCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tmdb_api_call_duration_seconds",
			Help:    "Duration of TMDB API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	TMDBCallErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tmdb_api_call_errors_total",
			Help: "Total number of failed TMDB API calls",
		},
		[]string{"endpoint", "status_code"},
	)

	TMDBRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tmdb_api_retries_total",
			Help: "Total number of TMDB API retry attempts",
		},
	)

	IngestItemsUpserted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ingest_items_upserted_total",
			Help: "Total number of catalog items upserted during ingestion",
		},
	)

	IngestPagesProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ingest_pages_processed_total",
			Help: "Total number of TMDB discovery pages processed",
		},
	)

	IngestCheckpointYear = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ingest_checkpoint_year",
			Help: "Release year the ingester is currently processing",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordStoreQuery records a MongoDB operation metric
func RecordStoreQuery(operation, collection string, duration time.Duration, err error) {
	StoreQueryDuration.WithLabelValues(operation, collection).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		// Truncate long error messages
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		StoreQueryErrors.WithLabelValues(operation, collection, errorType).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRoundResolved records a resolved duel round
func RecordRoundResolved(aiCorrect bool, rankOfPick int, duration time.Duration) {
	result := "incorrect"
	if aiCorrect {
		result = "correct"
	}
	RoundsResolved.WithLabelValues(result).Inc()
	if rankOfPick > 0 {
		AIPickRank.Observe(float64(rankOfPick))
	}
	RoundScoringDuration.Observe(duration.Seconds())
}

// RecordProfileUpdate records an online profile update
func RecordProfileUpdate(kind string) {
	ProfileUpdates.WithLabelValues(kind).Inc()
}

// RecordPrefixModelTraining records a prefix factorization training run
func RecordPrefixModelTraining(trigger, result string, duration time.Duration, ratings int, missingRatio float64) {
	PrefixModelTrainings.WithLabelValues(trigger, result).Inc()
	if result == "success" {
		PrefixModelTrainingDuration.Observe(duration.Seconds())
		PrefixModelRatings.Set(float64(ratings))
		PrefixModelMissingRatio.Set(missingRatio)
	}
}

// RecordTMDBCall records a TMDB API call metric
func RecordTMDBCall(endpoint string, statusCode int, duration time.Duration, err error) {
	TMDBCallDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
	if err != nil || statusCode >= 400 {
		TMDBCallErrors.WithLabelValues(endpoint, strconv.Itoa(statusCode)).Inc()
	}
}

// UpdateCircuitBreakerState updates the breaker state gauge
func UpdateCircuitBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordCircuitBreakerRequest records a request outcome through a breaker
func RecordCircuitBreakerRequest(name, result string) {
	CircuitBreakerRequests.WithLabelValues(name, result).Inc()
}
