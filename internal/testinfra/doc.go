// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

// Package testinfra provides shared test infrastructure: an in-memory
// store.Store that mirrors the MongoDB adapter's semantics (error kinds,
// ordering, upsert keys, round completion check-and-set) and catalog
// fixture builders.
//
// The memory store lets game and API tests run the full
// create-onboard-duel flow without a database. Semantics intentionally
// match internal/store/mongo:
//
//   - invalid hex ids are validation errors, missing documents not-found
//   - AllProducts returns items sorted by id ascending
//   - UpsertGameRound keys on (game_id, round_number) and never replaces
//   - CompleteGameRound transitions completed false->true exactly once
//
// Nothing here is safe to use outside tests; writes keep everything in
// process memory forever.
package testinfra
