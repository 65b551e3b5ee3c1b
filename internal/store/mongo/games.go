// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	driver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/decidio/duel/internal/core"
	"github.com/decidio/duel/internal/store"
)

// CreateGame inserts a duel game document.
func (s *Store) CreateGame(ctx context.Context, game *store.Game) (out *store.Game, err error) {
	start := time.Now()
	defer func() { observe("insert", collGames, start, err) }()

	now := time.Now().UTC()
	if game.CreatedAt.IsZero() {
		game.CreatedAt = now
	}
	game.UpdatedAt = now

	res, err := s.db.Collection(collGames).InsertOne(ctx, game)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}
	game.ID = res.InsertedID.(primitive.ObjectID)
	return game, nil
}

// GetGame loads one game by hex id.
func (s *Store) GetGame(ctx context.Context, id string) (game *store.Game, err error) {
	start := time.Now()
	defer func() { observe("find_one", collGames, start, err) }()

	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	game = &store.Game{}
	err = s.db.Collection(collGames).FindOne(ctx, bson.M{"_id": oid}).Decode(game)
	if notFound(err) {
		return nil, core.NotFoundf("game %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load game %s: %w", id, err)
	}
	return game, nil
}

// SetGameOnboardingPool persists the seeded pool ids.
func (s *Store) SetGameOnboardingPool(ctx context.Context, gameID string, poolIDs []string) error {
	return s.updateGame(ctx, gameID, bson.M{"onboarding_pool_ids": poolIDs})
}

// CompleteGameOnboarding stores the picks, rating and trained state and
// moves the game to ready.
func (s *Store) CompleteGameOnboarding(ctx context.Context, gameID string, selectedIDs []string, rating int, state []byte) error {
	return s.updateGame(ctx, gameID, bson.M{
		"onboarding_selected_ids": selectedIDs,
		"onboarding_rating":       rating,
		"model_state":             state,
		"status":                  store.GameStatusReady,
	})
}

// SetGameStatus updates only the lifecycle status.
func (s *Store) SetGameStatus(ctx context.Context, gameID, status string) error {
	return s.updateGame(ctx, gameID, bson.M{"status": status})
}

// ApplyGameRoundResult advances counters, scores, status and model state in
// one write after a round resolves.
func (s *Store) ApplyGameRoundResult(ctx context.Context, gameID string, currentRound, humanScore, aiScore int, status string, state []byte) error {
	return s.updateGame(ctx, gameID, bson.M{
		"current_round": currentRound,
		"human_score":   humanScore,
		"ai_score":      aiScore,
		"status":        status,
		"model_state":   state,
	})
}

func (s *Store) updateGame(ctx context.Context, gameID string, fields bson.M) (err error) {
	start := time.Now()
	defer func() { observe("update", collGames, start, err) }()

	oid, err := parseID(gameID)
	if err != nil {
		return err
	}
	fields["updated_at"] = time.Now().UTC()
	res, err := s.db.Collection(collGames).UpdateByID(ctx, oid, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update game %s: %w", gameID, err)
	}
	if res.MatchedCount == 0 {
		return core.NotFoundf("game %s not found", gameID)
	}
	return nil
}

// LeaderboardGames ranks completed games by score difference descending,
// human score descending, then age ascending. Ranking happens in the
// pipeline so the index on (status, created_at) narrows the scan first.
func (s *Store) LeaderboardGames(ctx context.Context, limit int) (games []*store.Game, err error) {
	start := time.Now()
	defer func() { observe("aggregate", collGames, start, err) }()

	pipeline := driver.Pipeline{
		{{Key: "$match", Value: bson.M{"status": store.GameStatusCompleted}}},
		{{Key: "$addFields", Value: bson.M{
			"score_difference": bson.M{"$subtract": bson.A{"$human_score", "$ai_score"}},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "score_difference", Value: -1},
			{Key: "human_score", Value: -1},
			{Key: "created_at", Value: 1},
		}}},
		{{Key: "$limit", Value: int64(limit)}},
	}
	cur, err := s.db.Collection(collGames).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate leaderboard: %w", err)
	}
	if err = cur.All(ctx, &games); err != nil {
		return nil, fmt.Errorf("failed to decode leaderboard: %w", err)
	}
	return games, nil
}

// PlayerGames returns a player's games newest first, any status.
func (s *Store) PlayerGames(ctx context.Context, playerName string, limit int) (games []*store.Game, err error) {
	start := time.Now()
	defer func() { observe("find", collGames, start, err) }()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := s.db.Collection(collGames).Find(ctx, bson.M{"player_name": playerName}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list games for %s: %w", playerName, err)
	}
	if err = cur.All(ctx, &games); err != nil {
		return nil, fmt.Errorf("failed to decode games: %w", err)
	}
	return games, nil
}

// UpsertGameRound inserts a round only when no document exists for its
// (game_id, round_number). A concurrent insert losing the race against the
// unique index is treated as success; the stored round wins.
func (s *Store) UpsertGameRound(ctx context.Context, round *store.GameRound) (err error) {
	start := time.Now()
	defer func() { observe("upsert", collGameRounds, start, err) }()

	if round.CreatedAt.IsZero() {
		round.CreatedAt = time.Now().UTC()
	}
	filter := bson.M{"game_id": round.GameID, "round_number": round.RoundNumber}
	update := bson.M{"$setOnInsert": round}
	_, err = s.db.Collection(collGameRounds).UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if driver.IsDuplicateKeyError(err) {
		err = nil
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to upsert round %d of game %s: %w", round.RoundNumber, round.GameID.Hex(), err)
	}
	return nil
}

// GetGameRound loads one round of a game.
func (s *Store) GetGameRound(ctx context.Context, gameID string, roundNumber int) (round *store.GameRound, err error) {
	start := time.Now()
	defer func() { observe("find_one", collGameRounds, start, err) }()

	oid, err := parseID(gameID)
	if err != nil {
		return nil, err
	}
	round = &store.GameRound{}
	err = s.db.Collection(collGameRounds).
		FindOne(ctx, bson.M{"game_id": oid, "round_number": roundNumber}).
		Decode(round)
	if notFound(err) {
		return nil, core.NotFoundf("round %d of game %s not found", roundNumber, gameID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load round %d of game %s: %w", roundNumber, gameID, err)
	}
	return round, nil
}

// CompleteGameRound writes the resolution fields with a completed=false
// guard, so exactly one submission wins even under concurrent retries. A
// round that is already completed no longer matches and comes back as
// ErrNotFound.
func (s *Store) CompleteGameRound(ctx context.Context, roundID string, result *store.RoundCompletion) (err error) {
	start := time.Now()
	defer func() { observe("update", collGameRounds, start, err) }()

	oid, err := parseID(roundID)
	if err != nil {
		return err
	}
	filter := bson.M{"_id": oid, "completed": false}
	update := bson.M{"$set": bson.M{
		"human_pick_id":   result.HumanPickID,
		"ai_pick_id":      result.AIPickID,
		"ai_confidence":   result.AIConfidence,
		"ai_top_k":        result.AITopK,
		"ai_top3_ids":     result.AITop3IDs,
		"ai_rank_of_pick": result.AIRankOfPick,
		"ai_correct":      result.AICorrect,
		"ai_exact":        result.AIExact,
		"human_points":    result.HumanPoints,
		"ai_points":       result.AIPoints,
		"post_metrics":    result.PostMetrics,
		"completed":       true,
		"completed_at":    result.CompletedAt,
	}}
	err = s.db.Collection(collGameRounds).
		FindOneAndUpdate(ctx, filter, update).
		Err()
	if notFound(err) {
		return core.NotFoundf("open round %s not found", roundID)
	}
	if err != nil {
		return fmt.Errorf("failed to complete round %s: %w", roundID, err)
	}
	return nil
}

// CompletedPickIDs returns the human picks of completed rounds in round
// order. These are the picks already folded into the model, so candidate
// assembly excludes them.
func (s *Store) CompletedPickIDs(ctx context.Context, gameID string) (ids []string, err error) {
	start := time.Now()
	defer func() { observe("find", collGameRounds, start, err) }()

	oid, err := parseID(gameID)
	if err != nil {
		return nil, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "round_number", Value: 1}}).
		SetProjection(bson.M{"human_pick_id": 1, "round_number": 1})
	cur, err := s.db.Collection(collGameRounds).Find(ctx, bson.M{"game_id": oid, "completed": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed rounds of game %s: %w", gameID, err)
	}
	var rounds []*store.GameRound
	if err = cur.All(ctx, &rounds); err != nil {
		return nil, fmt.Errorf("failed to decode completed rounds: %w", err)
	}
	ids = make([]string, 0, len(rounds))
	for _, r := range rounds {
		if r.HumanPickID != "" {
			ids = append(ids, r.HumanPickID)
		}
	}
	return ids, nil
}

// OpenRound returns the lowest-numbered uncompleted round of a game.
func (s *Store) OpenRound(ctx context.Context, gameID string) (round *store.GameRound, err error) {
	start := time.Now()
	defer func() { observe("find_one", collGameRounds, start, err) }()

	oid, err := parseID(gameID)
	if err != nil {
		return nil, err
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "round_number", Value: 1}})
	round = &store.GameRound{}
	err = s.db.Collection(collGameRounds).
		FindOne(ctx, bson.M{"game_id": oid, "completed": false}, opts).
		Decode(round)
	if notFound(err) {
		return nil, core.NotFoundf("no open round for game %s", gameID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load open round of game %s: %w", gameID, err)
	}
	return round, nil
}

// RoundsForGame returns every round of a game ordered by round number.
func (s *Store) RoundsForGame(ctx context.Context, gameID string) (rounds []*store.GameRound, err error) {
	start := time.Now()
	defer func() { observe("find", collGameRounds, start, err) }()

	oid, err := parseID(gameID)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "round_number", Value: 1}})
	cur, err := s.db.Collection(collGameRounds).Find(ctx, bson.M{"game_id": oid}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds of game %s: %w", gameID, err)
	}
	if err = cur.All(ctx, &rounds); err != nil {
		return nil, fmt.Errorf("failed to decode rounds: %w", err)
	}
	return rounds, nil
}
