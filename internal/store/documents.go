// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

package store

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Game lifecycle statuses.
const (
	GameStatusOnboarding = "onboarding"
	GameStatusReady      = "ready"
	GameStatusPlaying    = "playing"
	GameStatusCompleted  = "completed"
)

// User is a player identity. Game players get a shadow user named
// "<player> (game)" that owns the learning session.
type User struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name      string               `bson:"name" json:"name"`
	Sessions  []primitive.ObjectID `bson:"sessions" json:"-"`
	CreatedAt time.Time            `bson:"created_at" json:"created_at"`
}

// Session holds one user's serialized preference-model state plus links to
// the selection and rating documents recorded under it. State is a versioned
// JSON blob owned by the recommender; the store never looks inside it.
type Session struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID   `bson:"user_id" json:"user_id"`
	State         []byte               `bson:"state" json:"-"`
	Selections    []primitive.ObjectID `bson:"selections" json:"-"`
	PrefixRatings []primitive.ObjectID `bson:"prefix_ratings" json:"-"`
	CreatedAt     time.Time            `bson:"created_at" json:"created_at"`
}

// Selection is one accepted item choice in a session, in the order the
// learner saw it. IsException marks picks that contradict the profile so
// far; they train with reduced weight.
type Selection struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID   primitive.ObjectID `bson:"session_id" json:"session_id"`
	ProductID   primitive.ObjectID `bson:"product_id" json:"product_id"`
	IsException bool               `bson:"is_exception" json:"is_exception"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// PrefixRating is a 1-5 satisfaction rating of a session's selection
// sequence at the moment it was given. Tags carry free-form context.
type PrefixRating struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID primitive.ObjectID `bson:"session_id" json:"session_id"`
	Rating    int                `bson:"rating" json:"rating"`
	Tags      []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// Game is one human-versus-model duel. ModelState mirrors the learning
// session's state blob so game reads never depend on the session document.
type Game struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PlayerName            string             `bson:"player_name" json:"player_name"`
	Category              string             `bson:"category" json:"category"`
	Status                string             `bson:"status" json:"status"`
	CurrentRound          int                `bson:"current_round" json:"current_round"`
	TotalRounds           int                `bson:"total_rounds" json:"total_rounds"`
	HumanScore            int                `bson:"human_score" json:"human_score"`
	AIScore               int                `bson:"ai_score" json:"ai_score"`
	LearningUserID        primitive.ObjectID `bson:"learning_user_id" json:"-"`
	LearningSessionID     primitive.ObjectID `bson:"learning_session_id" json:"-"`
	ModelState            []byte             `bson:"model_state,omitempty" json:"-"`
	OnboardingPoolIDs     []string           `bson:"onboarding_pool_ids,omitempty" json:"-"`
	OnboardingSelectedIDs []string           `bson:"onboarding_selected_ids,omitempty" json:"-"`
	OnboardingRating      *int               `bson:"onboarding_rating,omitempty" json:"-"`
	CreatedAt             time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt             time.Time          `bson:"updated_at" json:"updated_at"`
}

// OnboardingComplete reports whether the player has finished seeding.
func (g *Game) OnboardingComplete() bool {
	return len(g.OnboardingSelectedIDs) > 0 && g.OnboardingRating != nil
}

// ScoreDifference is the leaderboard ranking key.
func (g *Game) ScoreDifference() int {
	return g.HumanScore - g.AIScore
}

// RoundMetrics snapshots the model's self-assessment around a round.
type RoundMetrics struct {
	CoherenceScore        float64 `bson:"coherence_score" json:"coherence_score"`
	PredictedPrefixRating float64 `bson:"predicted_prefix_rating" json:"predicted_prefix_rating"`
}

// ScoredID is one (item, model score) pair in a round's ranked candidates.
type ScoredID struct {
	ProductID string  `bson:"product_id" json:"product_id"`
	Score     float64 `bson:"score" json:"score"`
}

// GameRound is one duel round. Candidate ids are stored as hex strings in
// display order; resolution fields stay zero until the round completes.
type GameRound struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GameID       primitive.ObjectID `bson:"game_id" json:"game_id"`
	RoundNumber  int                `bson:"round_number" json:"round_number"`
	CandidateIDs []string           `bson:"candidate_ids" json:"candidate_ids"`
	PreMetrics   RoundMetrics       `bson:"pre_metrics" json:"pre_metrics"`

	HumanPickID  string       `bson:"human_pick_id,omitempty" json:"human_pick_id,omitempty"`
	AIPickID     string       `bson:"ai_pick_id,omitempty" json:"ai_pick_id,omitempty"`
	AIConfidence float64      `bson:"ai_confidence,omitempty" json:"ai_confidence,omitempty"`
	AITopK       []ScoredID   `bson:"ai_top_k,omitempty" json:"ai_top_k,omitempty"`
	AITop3IDs    []string     `bson:"ai_top3_ids,omitempty" json:"ai_top3_ids,omitempty"`
	AIRankOfPick int          `bson:"ai_rank_of_pick,omitempty" json:"ai_rank_of_pick,omitempty"`
	AICorrect    bool         `bson:"ai_correct" json:"ai_correct"`
	AIExact      bool         `bson:"ai_exact" json:"ai_exact"`
	HumanPoints  int          `bson:"human_points" json:"human_points"`
	AIPoints     int          `bson:"ai_points" json:"ai_points"`
	PostMetrics  RoundMetrics `bson:"post_metrics" json:"post_metrics"`

	Completed   bool       `bson:"completed" json:"completed"`
	CompletedAt *time.Time `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
}

// RoundCompletion carries every field written when a round resolves.
type RoundCompletion struct {
	HumanPickID  string
	AIPickID     string
	AIConfidence float64
	AITopK       []ScoredID
	AITop3IDs    []string
	AIRankOfPick int
	AICorrect    bool
	AIExact      bool
	HumanPoints  int
	AIPoints     int
	PostMetrics  RoundMetrics
	CompletedAt  time.Time
}
