// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

package game

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/decidio/duel/internal/catalog"
	"github.com/decidio/duel/internal/config"
	"github.com/decidio/duel/internal/core"
	"github.com/decidio/duel/internal/recommend"
	"github.com/decidio/duel/internal/store"
)

// Service runs the duel state machine on top of the store and the taste
// engine. It holds no per-game state; safe for concurrent use.
type Service struct {
	cfg    config.GameConfig
	store  store.Store
	rec    *recommend.Engine
	logger zerolog.Logger
}

// New creates a game service. Zero config fields fall back to the canonical
// duel shape: 50-item pool, 10 picks, 10 rounds of 10 candidates.
func New(cfg config.GameConfig, st store.Store, rec *recommend.Engine, logger zerolog.Logger) *Service {
	if cfg.TotalRounds <= 0 {
		cfg.TotalRounds = 10
	}
	if cfg.OnboardingPoolSize <= 0 {
		cfg.OnboardingPoolSize = 50
	}
	if cfg.OnboardingPicks <= 0 {
		cfg.OnboardingPicks = 10
	}
	if cfg.CandidateCount <= 0 {
		cfg.CandidateCount = 10
	}
	return &Service{
		cfg:    cfg,
		store:  st,
		rec:    rec,
		logger: logger.With().Str("component", "game").Logger(),
	}
}

// CreateGame starts a duel for a player. Each game gets a shadow user and a
// fresh learning session, so its picks flow into the shared training logs.
// totalRounds <= 0 uses the configured default.
func (s *Service) CreateGame(ctx context.Context, playerName, category string, totalRounds int) (*GameView, error) {
	name := strings.TrimSpace(playerName)
	if name == "" {
		return nil, core.Validationf("player name is required")
	}
	cat, err := catalog.NormalizeCategory(category)
	if err != nil {
		return nil, core.Validationf("unsupported category %q", category)
	}
	if totalRounds <= 0 {
		totalRounds = s.cfg.TotalRounds
	}
	if !s.rec.Ready() {
		return nil, core.ModelNotReadyf("feature space not built")
	}

	user, err := s.store.CreateUser(ctx, name+" (game)")
	if err != nil {
		return nil, err
	}
	state, err := s.rec.InitStateBlob()
	if err != nil {
		return nil, err
	}
	sess, err := s.store.CreateSession(ctx, user.ID.Hex(), state)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	game, err := s.store.CreateGame(ctx, &store.Game{
		PlayerName:        name,
		Category:          cat,
		Status:            store.GameStatusOnboarding,
		TotalRounds:       totalRounds,
		LearningUserID:    user.ID,
		LearningSessionID: sess.ID,
		ModelState:        state,
		CreatedAt:         now,
		UpdatedAt:         now,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("game_id", game.ID.Hex()).
		Str("player", name).
		Str("category", cat).
		Int("total_rounds", totalRounds).
		Msg("game created")
	return gameView(game), nil
}

// GetOnboarding returns the game's onboarding pool, seeding and persisting
// it on first access. The pool draws only from the game's category.
func (s *Service) GetOnboarding(ctx context.Context, gameID string) (*OnboardingView, error) {
	game, err := s.store.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game.Status == store.GameStatusCompleted {
		return nil, core.Statef("game is already completed")
	}

	poolIDs := game.OnboardingPoolIDs
	if len(poolIDs) == 0 {
		if !s.rec.Ready() {
			return nil, core.ModelNotReadyf("feature space not built")
		}
		items := s.categoryItems(game.Category)
		if len(items) == 0 {
			return nil, core.Statef("no products available in category %s", game.Category)
		}
		poolIDs = onboardingPool(rngFor(gameID, 0, saltOnboarding), items, s.cfg.OnboardingPoolSize)
		if err := s.store.SetGameOnboardingPool(ctx, gameID, poolIDs); err != nil {
			return nil, err
		}
		s.logger.Debug().
			Str("game_id", gameID).
			Int("pool_size", len(poolIDs)).
			Msg("onboarding pool seeded")
	}

	cards, err := s.cardsFor(ctx, poolIDs)
	if err != nil {
		return nil, err
	}
	profile, err := catalog.ProfileFor(game.Category)
	if err != nil {
		return nil, core.Validationf("unsupported category %q", game.Category)
	}
	return &OnboardingView{
		GameID:   gameID,
		PoolSize: len(cards),
		Products: cards,
		Copy:     profile.DisplayCopy(),
	}, nil
}

// SubmitOnboarding folds the player's first picks and satisfaction rating
// into the game's model state. Selections persist with strictly increasing
// timestamps and the rating lands after all of them, so prefix keys derived
// from the logs later resolve to the full onboarding sequence.
func (s *Service) SubmitOnboarding(ctx context.Context, gameID string, selectedIDs []string, rating int) (*OnboardingResult, error) {
	game, err := s.store.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if !s.rec.Ready() {
		return nil, core.ModelNotReadyf("feature space not built")
	}
	if len(game.OnboardingSelectedIDs) > 0 {
		return nil, core.Statef("onboarding already submitted for this game")
	}
	if len(selectedIDs) != s.cfg.OnboardingPicks {
		return nil, core.Validationf("you must select exactly %d products", s.cfg.OnboardingPicks)
	}
	if len(uniqueStrings(selectedIDs)) != len(selectedIDs) {
		return nil, core.Validationf("duplicate products are not allowed")
	}
	if rating < 1 || rating > 5 {
		return nil, core.Validationf("rating must be between 1 and 5")
	}
	if len(game.OnboardingPoolIDs) == 0 {
		return nil, core.Statef("onboarding pool is not initialized")
	}
	pool := make(map[string]struct{}, len(game.OnboardingPoolIDs))
	for _, id := range game.OnboardingPoolIDs {
		pool[id] = struct{}{}
	}
	for _, id := range selectedIDs {
		if _, ok := pool[id]; !ok {
			return nil, core.Validationf("selections must come from the onboarding pool")
		}
	}

	items, err := s.store.GetProductsByIDs(ctx, selectedIDs)
	if err != nil {
		return nil, err
	}
	if len(items) != len(selectedIDs) {
		return nil, core.Validationf("one or more selected products were not found")
	}

	state := s.rec.DecodeStateBlob(game.ModelState)
	for _, it := range items {
		s.rec.UpdateStateWithItem(state, it, false)
	}
	s.rec.UpdateStateWithRating(state, float64(rating))

	m := s.rec.MetricsForState(state, selectedIDs)

	base := time.Now().UTC()
	for i, id := range selectedIDs {
		if err := s.persistLearningSelection(ctx, game, id, base.Add(time.Duration(i)*time.Millisecond)); err != nil {
			return nil, err
		}
	}

	blob, err := s.rec.EncodeStateBlob(state)
	if err != nil {
		return nil, err
	}
	if !game.LearningSessionID.IsZero() {
		_, err = s.store.AppendPrefixRating(ctx, &store.PrefixRating{
			SessionID: game.LearningSessionID,
			Rating:    rating,
			CreatedAt: base.Add(time.Second),
		})
		if err != nil {
			return nil, err
		}
		if err := s.store.UpdateSessionState(ctx, game.LearningSessionID.Hex(), blob); err != nil {
			return nil, err
		}
	}

	if err := s.store.CompleteGameOnboarding(ctx, gameID, selectedIDs, rating, blob); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("game_id", gameID).
		Int("rating", rating).
		Float64("coherence", m.CoherenceScore).
		Msg("onboarding submitted")
	return &OnboardingResult{
		Accepted:              true,
		CoherenceScore:        m.CoherenceScore,
		PredictedPrefixRating: m.PredictedPrefixRating,
		NextRound:             1,
	}, nil
}

// selectionSequence rebuilds the ordered ids the game's model has learned
// from: onboarding picks, then completed round picks, then optionally one
// not-yet-persisted pick.
func (s *Service) selectionSequence(ctx context.Context, game *store.Game, includeID string) ([]string, error) {
	picked, err := s.store.CompletedPickIDs(ctx, game.ID.Hex())
	if err != nil {
		return nil, err
	}
	seq := make([]string, 0, len(game.OnboardingSelectedIDs)+len(picked)+1)
	seq = append(seq, game.OnboardingSelectedIDs...)
	seq = append(seq, picked...)
	if includeID != "" {
		seq = append(seq, includeID)
	}
	return seq, nil
}

// persistLearningSelection appends a duel pick to the game's learning
// session. Games created before learning sessions existed have none; skip.
func (s *Service) persistLearningSelection(ctx context.Context, game *store.Game, productID string, at time.Time) error {
	if game.LearningSessionID.IsZero() {
		return nil
	}
	oid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return core.Validationf("invalid product id %q", productID)
	}
	_, err = s.store.AppendSelection(ctx, &store.Selection{
		SessionID: game.LearningSessionID,
		ProductID: oid,
		CreatedAt: at,
	})
	return err
}

// cardsFor hydrates cards from the store, preserving id order.
func (s *Service) cardsFor(ctx context.Context, ids []string) ([]Card, error) {
	items, err := s.store.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	cards := make([]Card, 0, len(items))
	for _, it := range items {
		cards = append(cards, cardFor(it))
	}
	return cards, nil
}

// categoryItems returns the engine snapshot's items for one category, in
// catalog order.
func (s *Service) categoryItems(category string) []*catalog.Item {
	ids := s.rec.CatalogIDs()
	items := make([]*catalog.Item, 0, len(ids))
	for _, id := range ids {
		if it := s.rec.ItemByID(id); it != nil && it.Category == category {
			items = append(items, it)
		}
	}
	return items
}

// roundMetrics converts engine session metrics into the stored round shape.
func roundMetrics(m recommend.SessionMetrics) store.RoundMetrics {
	return store.RoundMetrics{
		CoherenceScore:        m.CoherenceScore,
		PredictedPrefixRating: m.PredictedPrefixRating,
	}
}

func uniqueStrings(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func containsString(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}
