// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

// Package game orchestrates preference duels: a player seeds a taste model
// by picking 10 items from an onboarding pool, then plays rounds where both
// the player and the model pick from a 10-candidate slate. The model earns
// points when the player's pick lands in its top 3.
//
// Every game owns a shadow user and learning session, so duel picks feed the
// same selection and rating logs as the direct learning API. The orchestrator
// holds no state of its own; games, rounds and model snapshots live in the
// store, and all in-game randomness derives from per-(game, round, salt)
// seeds, which makes pools and candidate slates replayable across restarts.
//
// Lifecycle:
//
//	[onboarding] --submit(10 picks + rating)--> [ready]
//	[ready]      --start round---------------> [playing]
//	[playing]    --submit pick---------------> [playing] | [completed]
//
// Round completion is at-most-once: the store refuses a second completion of
// the same round, and the round counter on the game only advances with it.
package game
