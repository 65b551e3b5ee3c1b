// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

/*
Package metrics provides Prometheus metrics collection and export for observability.

This package implements application instrumentation using the Prometheus client
library, exposing metrics for monitoring performance, errors, and system health.

# Overview

The package provides metrics for:
  - HTTP request latency and throughput
  - MongoDB operation performance
  - Game lifecycle: creations, onboarding, duel round outcomes
  - Model behavior: online profile updates and prefix factorization training
  - TMDB ingestion progress and API health

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:8420/metrics

# Usage

All collectors are registered at package load via promauto. Callers record
observations through the helper functions:

	start := time.Now()
	err := col.FindOne(ctx, filter).Decode(&doc)
	metrics.RecordStoreQuery("find_one", "games", time.Since(start), err)

Helpers never panic on odd inputs; unknown label values are passed through so
dashboards surface them instead of hiding them.
*/
package metrics
