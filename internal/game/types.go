// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

package game

import (
	"time"

	"github.com/decidio/duel/internal/catalog"
	"github.com/decidio/duel/internal/store"
)

// cardTagLimit caps the tags shown on a product card.
const cardTagLimit = 8

// Card is the product payload players see during onboarding and rounds.
type Card struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Vendor   string   `json:"vendor,omitempty"`
	PriceMin *float64 `json:"price_min,omitempty"`
	PriceMax *float64 `json:"price_max,omitempty"`
	Tags     []string `json:"tags"`
	ImageURL string   `json:"image_url,omitempty"`
}

// ScoredCard is a card annotated with the model's score for it.
type ScoredCard struct {
	Card
	Score float64 `json:"score"`
}

// GameView is the public shape of a game document.
type GameView struct {
	ID           string    `json:"id"`
	PlayerName   string    `json:"player_name"`
	Category     string    `json:"category"`
	Status       string    `json:"status"`
	CurrentRound int       `json:"current_round"`
	TotalRounds  int       `json:"total_rounds"`
	HumanScore   int       `json:"human_score"`
	AIScore      int       `json:"ai_score"`
	CreatedAt    time.Time `json:"created_at"`
}

// OnboardingView carries the seeded pool a player picks their first 10 from.
type OnboardingView struct {
	GameID   string              `json:"game_id"`
	PoolSize int                 `json:"pool_size"`
	Products []Card              `json:"products"`
	Copy     catalog.DisplayCopy `json:"copy"`
}

// OnboardingResult acknowledges a submitted onboarding and reports the
// model's first read of the player.
type OnboardingResult struct {
	Accepted              bool    `json:"accepted"`
	CoherenceScore        float64 `json:"coherence_score"`
	PredictedPrefixRating float64 `json:"predicted_prefix_rating"`
	NextRound             int     `json:"next_round"`
}

// RoundStart is the candidate slate for one duel round.
type RoundStart struct {
	RoundNumber     int                `json:"round_number"`
	Candidates      []Card             `json:"candidates"`
	PreRoundMetrics store.RoundMetrics `json:"pre_round_metrics"`
}

// Explanation tells the player what the model was thinking on a round.
type Explanation struct {
	Reason            string       `json:"reason"`
	Likes             []string     `json:"likes"`
	Dislikes          []string     `json:"dislikes"`
	SharedFeatures    []string     `json:"shared_features"`
	HiddenPreferences []string     `json:"hidden_preferences"`
	TopCandidates     []ScoredCard `json:"top_candidates"`
}

// RoundResult resolves one duel round.
type RoundResult struct {
	RoundNumber      int                `json:"round_number"`
	HumanPick        Card               `json:"human_pick"`
	AIPick           ScoredCard         `json:"ai_pick"`
	AICorrect        bool               `json:"ai_correct"`
	AIExact          bool               `json:"ai_exact"`
	AIRankOfPick     int                `json:"ai_rank_of_pick"`
	HumanPoints      int                `json:"human_points"`
	AIPoints         int                `json:"ai_points"`
	TotalHumanScore  int                `json:"total_human_score"`
	TotalAIScore     int                `json:"total_ai_score"`
	AIExplanation    Explanation        `json:"ai_explanation"`
	PostRoundMetrics store.RoundMetrics `json:"post_round_metrics"`
	GameComplete     bool               `json:"game_complete"`
}

// GameStatus is the lightweight poll target for game clients.
type GameStatus struct {
	ID                      string `json:"id"`
	PlayerName              string `json:"player_name"`
	Status                  string `json:"status"`
	CurrentRound            int    `json:"current_round"`
	TotalRounds             int    `json:"total_rounds"`
	HumanScore              int    `json:"human_score"`
	AIScore                 int    `json:"ai_score"`
	OnboardingComplete      bool   `json:"onboarding_complete"`
	OnboardingSelectedCount int    `json:"onboarding_selected_count"`
	RoundInProgress         *int   `json:"round_in_progress"`
}

// LeaderboardEntry ranks one completed game.
type LeaderboardEntry struct {
	Rank            int       `json:"rank"`
	PlayerName      string    `json:"player_name"`
	HumanScore      int       `json:"human_score"`
	AIScore         int       `json:"ai_score"`
	ScoreDifference int       `json:"score_difference"`
	RoundsCompleted int       `json:"rounds_completed"`
	CreatedAt       time.Time `json:"created_at"`
}

// PlayerGameEntry is one game in a player's history, any status.
type PlayerGameEntry struct {
	ID              string    `json:"id"`
	PlayerName      string    `json:"player_name"`
	Status          string    `json:"status"`
	HumanScore      int       `json:"human_score"`
	AIScore         int       `json:"ai_score"`
	ScoreDifference int       `json:"score_difference"`
	RoundsCompleted int       `json:"rounds_completed"`
	TotalRounds     int       `json:"total_rounds"`
	CreatedAt       time.Time `json:"created_at"`
}

// RoundStat is one row of a finished game's round-by-round breakdown.
type RoundStat struct {
	RoundNumber           int     `json:"round_number"`
	HumanPickID           string  `json:"human_pick_id"`
	AIPickID              string  `json:"ai_pick_id"`
	AICorrect             bool    `json:"ai_correct"`
	AIExact               bool    `json:"ai_exact"`
	AIRankOfPick          int     `json:"ai_rank_of_pick"`
	HumanPoints           int     `json:"human_points"`
	AIPoints              int     `json:"ai_points"`
	HumanTotal            int     `json:"human_total"`
	AITotal               int     `json:"ai_total"`
	CoherenceScore        float64 `json:"coherence_score"`
	PredictedPrefixRating float64 `json:"predicted_prefix_rating"`
}

// Summary is the post-game debrief: how the duel went and what the model
// believes it learned.
type Summary struct {
	GameID          string              `json:"game_id"`
	PlayerName      string              `json:"player_name"`
	Category        string              `json:"category"`
	HumanScore      int                 `json:"human_score"`
	AIScore         int                 `json:"ai_score"`
	Winner          string              `json:"winner"`
	Rounds          []RoundStat         `json:"rounds"`
	AITop3Accuracy  float64             `json:"ai_top3_accuracy"`
	AIExactAccuracy float64             `json:"ai_exact_accuracy"`
	LearnedLikes    []string            `json:"learned_likes"`
	LearnedDislikes []string            `json:"learned_dislikes"`
	Recommendations []ScoredCard        `json:"recommendations"`
	HiddenGems      []ScoredCard        `json:"hidden_gems"`
	Narrative       string              `json:"narrative"`
	Copy            catalog.DisplayCopy `json:"copy"`
}

// cardFor shapes an item into its player-facing card.
func cardFor(it *catalog.Item) Card {
	tags := it.Tags
	if len(tags) > cardTagLimit {
		tags = tags[:cardTagLimit]
	}
	if tags == nil {
		tags = []string{}
	}
	return Card{
		ID:       it.ID.Hex(),
		Title:    it.Title,
		Vendor:   it.Vendor,
		PriceMin: it.PriceMin,
		PriceMax: it.PriceMax,
		Tags:     tags,
		ImageURL: it.PrimaryImageURL(),
	}
}

// scoredCards pairs ranked ids with their loaded items; ids without an item
// are dropped.
func scoredCards(scored []store.ScoredID, byID map[string]*catalog.Item) []ScoredCard {
	out := make([]ScoredCard, 0, len(scored))
	for _, sc := range scored {
		it := byID[sc.ProductID]
		if it == nil {
			continue
		}
		out = append(out, ScoredCard{Card: cardFor(it), Score: sc.Score})
	}
	return out
}

func gameView(g *store.Game) *GameView {
	return &GameView{
		ID:           g.ID.Hex(),
		PlayerName:   g.PlayerName,
		Category:     g.Category,
		Status:       g.Status,
		CurrentRound: g.CurrentRound,
		TotalRounds:  g.TotalRounds,
		HumanScore:   g.HumanScore,
		AIScore:      g.AIScore,
		CreatedAt:    g.CreatedAt,
	}
}
