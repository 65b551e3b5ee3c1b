// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

package recommend

import (
	"context"

	"github.com/decidio/duel/internal/catalog"
	"github.com/decidio/duel/internal/recommend/pbcf"
	"github.com/decidio/duel/internal/store"
)

// Store is the slice of the persistence contract the engine needs. The
// mongo adapter satisfies it; tests substitute an in-memory fake.
type Store interface {
	AllProducts(ctx context.Context) ([]*catalog.Item, error)
	GetProduct(ctx context.Context, id string) (*catalog.Item, error)

	GetSession(ctx context.Context, id string) (*store.Session, error)
	UpdateSessionState(ctx context.Context, sessionID string, state []byte) error

	AppendSelection(ctx context.Context, sel *store.Selection) (*store.Selection, error)
	AppendPrefixRating(ctx context.Context, rating *store.PrefixRating) (*store.PrefixRating, error)
	SelectionsForSession(ctx context.Context, sessionID string) ([]*store.Selection, error)
	AllPrefixRatings(ctx context.Context) ([]*store.PrefixRating, error)
	CountPrefixRatings(ctx context.Context) (int64, error)
}

// ScoredItem pairs a catalog item with its model score.
type ScoredItem struct {
	Item  *catalog.Item `json:"item"`
	Score float64       `json:"score"`
}

// Recommendation is the strong-plus-wildcard answer of the learning API.
// Strong holds the top-scored unselected items; Wildcard is drawn uniformly
// from the bottom tail so the session keeps probing outside the learned
// profile.
type Recommendation struct {
	Strong                []ScoredItem `json:"strong"`
	Wildcard              *ScoredItem  `json:"wildcard,omitempty"`
	CoherenceScore        float64      `json:"coherence_score"`
	PredictedPrefixRating float64      `json:"predicted_prefix_rating"`
}

// SessionMetrics snapshots the model's read on a session.
type SessionMetrics struct {
	CoherenceScore        float64 `json:"coherence_score"`
	PredictedPrefixRating float64 `json:"predicted_prefix_rating"`
	SelectionCount        int     `json:"selection_count"`
}

// ProfilePreference is one humanized hidden preference: a taste dimension
// the model weights higher than the selection history alone explains.
type ProfilePreference struct {
	Label   string  `json:"label"`
	Weight  float64 `json:"weight"`
	Latency float64 `json:"latency"`
}

// Profile is the taste-profile view of a session.
type Profile struct {
	SessionMetrics
	HiddenPreferences []ProfilePreference `json:"hidden_preferences"`
	HiddenGems        []ScoredItem        `json:"hidden_gems"`
}

// Stats reports engine readiness for the stats endpoint.
type Stats struct {
	CatalogSize int        `json:"catalog_size"`
	FeatureDim  int        `json:"feature_dim"`
	RatingCount int64      `json:"rating_count"`
	PrefixModel pbcf.Stats `json:"prefix_model"`
}
