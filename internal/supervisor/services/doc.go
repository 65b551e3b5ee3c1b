// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

// Package services provides suture.Service wrappers for the duel service's
// long-running components.
//
// Two services run under the supervision tree:
//
//   - HTTPServerService adapts http.Server's blocking ListenAndServe to
//     suture's context-driven Serve, with graceful shutdown on cancel.
//   - TrainerService keeps the recommender current: it periodically
//     refreshes the feature space against the catalog and retrains the
//     prefix factorization from accumulated ratings.
//
// Both implement fmt.Stringer so supervisor events name the service.
package services
