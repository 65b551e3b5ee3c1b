// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

// Package recommend is the taste-inference facade. It owns the feature
// space built over the catalog, the per-session online preference model
// (pcf) and the offline prefix factorization model (pbcf), and exposes the
// operations the game orchestrator and the learning API are built on:
// folding selections and ratings into session state, scoring candidates,
// producing strong/wildcard recommendations, and surfacing hidden
// preferences.
//
// # Concurrency
//
// The Engine is safe for concurrent use. Refresh swaps the feature space
// and vector table atomically under a write lock; readers score against a
// consistent snapshot. Prefix-model retraining is serialized so overlapping
// triggers (startup, interval, forced) never train twice for one change.
//
// # Model state
//
// Per-session model state travels as a versioned JSON blob owned by this
// package. Blobs whose schema version or vector width no longer match the
// current feature space are discarded and reinitialized; taste is re-learned
// rather than mis-applied.
package recommend
