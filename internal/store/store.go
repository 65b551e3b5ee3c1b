// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

// Package store defines the persistence contract: document shapes, the
// collection interfaces, and the error surface. The MongoDB implementation
// lives in store/mongo; consumers depend on these interfaces so tests can
// substitute in-memory fakes.
package store

import (
	"context"

	"github.com/decidio/duel/internal/catalog"
	"github.com/decidio/duel/internal/core"
)

// ErrNotFound is returned when a looked-up document does not exist. It is an
// alias of core.ErrNotFound so errors.Is works across layers.
var ErrNotFound = core.ErrNotFound

// ProductStore reads and writes the item catalog.
type ProductStore interface {
	// AllProducts returns the whole catalog sorted by id ascending. The
	// stable order is what makes feature-space builds reproducible.
	AllProducts(ctx context.Context) ([]*catalog.Item, error)

	// ListProducts pages through a category ("" for all categories).
	ListProducts(ctx context.Context, category string, limit, offset int) ([]*catalog.Item, error)

	// CountProducts counts items in a category ("" for all).
	CountProducts(ctx context.Context, category string) (int64, error)

	// GetProduct loads one item by hex id.
	GetProduct(ctx context.Context, id string) (*catalog.Item, error)

	// GetProductsByIDs batch-loads items, returned in the order of ids.
	// Unknown ids are skipped, not errors.
	GetProductsByIDs(ctx context.Context, ids []string) ([]*catalog.Item, error)

	// UpsertProduct inserts or replaces an item keyed by
	// (category, source_id). Returns true when a new document was created.
	UpsertProduct(ctx context.Context, item *catalog.Item) (bool, error)

	// VerifyProductSchema returns a core.ErrSchema error when any stored
	// product lacks a category. Run at startup; a violation is fatal.
	VerifyProductSchema(ctx context.Context) error
}

// UserStore manages players and their learning sessions.
type UserStore interface {
	CreateUser(ctx context.Context, name string) (*User, error)
	GetUser(ctx context.Context, id string) (*User, error)

	// CreateSession starts a learning session for a user with the given
	// serialized model state and links it to the user document.
	CreateSession(ctx context.Context, userID string, state []byte) (*Session, error)
	GetSession(ctx context.Context, id string) (*Session, error)

	// UpdateSessionState replaces the session's serialized model state.
	UpdateSessionState(ctx context.Context, sessionID string, state []byte) error
}

// LearningStore appends and reads the immutable selection and rating logs.
type LearningStore interface {
	// AppendSelection inserts a selection and links it to its session.
	AppendSelection(ctx context.Context, sel *Selection) (*Selection, error)

	// AppendPrefixRating inserts a rating and links it to its session.
	AppendPrefixRating(ctx context.Context, rating *PrefixRating) (*PrefixRating, error)

	// SelectionsForSession returns a session's selections ordered by
	// created_at ascending.
	SelectionsForSession(ctx context.Context, sessionID string) ([]*Selection, error)

	// AllPrefixRatings returns every rating ordered by created_at
	// ascending, the training order for the prefix model.
	AllPrefixRatings(ctx context.Context) ([]*PrefixRating, error)

	// CountPrefixRatings counts all ratings. The recommender retrains the
	// prefix model when this moves.
	CountPrefixRatings(ctx context.Context) (int64, error)
}

// GameStore manages duel games and their rounds.
type GameStore interface {
	CreateGame(ctx context.Context, game *Game) (*Game, error)
	GetGame(ctx context.Context, id string) (*Game, error)

	// SetGameOnboardingPool persists the seeded onboarding pool once.
	SetGameOnboardingPool(ctx context.Context, gameID string, poolIDs []string) error

	// CompleteGameOnboarding stores the picks, the rating and the updated
	// model state, and moves the game to ready.
	CompleteGameOnboarding(ctx context.Context, gameID string, selectedIDs []string, rating int, state []byte) error

	// SetGameStatus updates only the lifecycle status.
	SetGameStatus(ctx context.Context, gameID, status string) error

	// ApplyGameRoundResult advances the game after a completed round:
	// round counter, score totals, status and model state in one write.
	ApplyGameRoundResult(ctx context.Context, gameID string, currentRound, humanScore, aiScore int, status string, state []byte) error

	// LeaderboardGames returns completed games ordered by score
	// difference (human - ai) descending, then human score descending,
	// then created_at ascending.
	LeaderboardGames(ctx context.Context, limit int) ([]*Game, error)

	// PlayerGames returns a player's games in any status, newest first.
	PlayerGames(ctx context.Context, playerName string, limit int) ([]*Game, error)

	// UpsertGameRound inserts a round if none exists for its
	// (game_id, round_number); an existing round is left untouched.
	UpsertGameRound(ctx context.Context, round *GameRound) error

	// GetGameRound loads one round; ErrNotFound when never started.
	GetGameRound(ctx context.Context, gameID string, roundNumber int) (*GameRound, error)

	// CompleteGameRound transitions a round from open to completed
	// exactly once, writing the resolution fields. A second completion
	// attempt returns ErrNotFound because the open round no longer
	// matches.
	CompleteGameRound(ctx context.Context, roundID string, result *RoundCompletion) error

	// CompletedPickIDs returns the human picks of completed rounds in
	// round order.
	CompletedPickIDs(ctx context.Context, gameID string) ([]string, error)

	// OpenRound returns the lowest-numbered uncompleted round, or
	// ErrNotFound when none is open.
	OpenRound(ctx context.Context, gameID string) (*GameRound, error)

	// RoundsForGame returns all rounds ordered by round_number ascending.
	RoundsForGame(ctx context.Context, gameID string) ([]*GameRound, error)
}

// Store is the full persistence contract.
type Store interface {
	ProductStore
	UserStore
	LearningStore
	GameStore
}
