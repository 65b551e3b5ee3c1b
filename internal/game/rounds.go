// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

package game

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/decidio/duel/internal/catalog"
	"github.com/decidio/duel/internal/core"
	"github.com/decidio/duel/internal/metrics"
	"github.com/decidio/duel/internal/store"
)

// StartRound opens the game's next round, or returns the already-open round
// unchanged, so a client retry never burns a fresh candidate slate.
func (s *Service) StartRound(ctx context.Context, gameID string) (*RoundStart, error) {
	game, err := s.store.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if !s.rec.Ready() {
		return nil, core.ModelNotReadyf("feature space not built")
	}
	if len(game.OnboardingSelectedIDs) != s.cfg.OnboardingPicks {
		return nil, core.Statef("onboarding is incomplete")
	}
	if game.CurrentRound >= game.TotalRounds {
		return nil, core.Statef("game is complete")
	}

	roundNumber := game.CurrentRound + 1
	existing, err := s.store.GetGameRound(ctx, gameID, roundNumber)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		if existing.Completed {
			// Completed round without an advanced counter: the result
			// apply was lost. Surface rather than mint a slate the
			// store would refuse to persist.
			return nil, core.Statef("round %d already completed", roundNumber)
		}
		cards, err := s.cardsFor(ctx, existing.CandidateIDs)
		if err != nil {
			return nil, err
		}
		return &RoundStart{
			RoundNumber:     roundNumber,
			Candidates:      cards,
			PreRoundMetrics: existing.PreMetrics,
		}, nil
	}

	state := s.rec.DecodeStateBlob(game.ModelState)
	selectedIDs, err := s.selectionSequence(ctx, game, "")
	if err != nil {
		return nil, err
	}
	used := make(map[string]struct{}, len(selectedIDs))
	for _, id := range selectedIDs {
		used[id] = struct{}{}
	}

	var source []*catalog.Item
	for _, it := range s.categoryItems(game.Category) {
		if _, ok := used[it.ID.Hex()]; !ok {
			source = append(source, it)
		}
	}
	if len(source) < s.cfg.CandidateCount {
		return nil, core.Statef("not enough products left to generate a round")
	}

	scored := s.rec.ScoreItems(state, source)
	candidateIDs := buildRoundCandidates(
		rngFor(gameID, roundNumber, saltRoundCandidates),
		scored,
		s.vendorOf,
		s.cfg.CandidateCount,
	)
	pre := roundMetrics(s.rec.MetricsForState(state, selectedIDs))

	if err := s.store.UpsertGameRound(ctx, &store.GameRound{
		GameID:       game.ID,
		RoundNumber:  roundNumber,
		CandidateIDs: candidateIDs,
		PreMetrics:   pre,
		CreatedAt:    time.Now().UTC(),
	}); err != nil {
		return nil, err
	}
	if err := s.store.SetGameStatus(ctx, gameID, store.GameStatusPlaying); err != nil {
		return nil, err
	}

	// Serve the stored slate: under a concurrent start the upsert keeps the
	// first writer's candidates and both callers must see those.
	round, err := s.store.GetGameRound(ctx, gameID, roundNumber)
	if err != nil {
		return nil, err
	}
	cards, err := s.cardsFor(ctx, round.CandidateIDs)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("game_id", gameID).
		Int("round", roundNumber).
		Int("candidates", len(round.CandidateIDs)).
		Msg("round started")
	return &RoundStart{
		RoundNumber:     roundNumber,
		Candidates:      cards,
		PreRoundMetrics: round.PreMetrics,
	}, nil
}

// SubmitPick resolves a duel round: the model ranks the slate with the state
// it had before seeing the pick, points are awarded on its top 3, and only
// then does the pick train the model. Completion is at-most-once; a raced
// duplicate gets a state error.
func (s *Service) SubmitPick(ctx context.Context, gameID string, roundNumber int, productID string) (*RoundResult, error) {
	started := time.Now()

	game, err := s.store.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if !s.rec.Ready() {
		return nil, core.ModelNotReadyf("feature space not built")
	}
	if game.CurrentRound >= game.TotalRounds {
		return nil, core.Statef("game is already complete")
	}
	if roundNumber != game.CurrentRound+1 {
		return nil, core.Validationf("invalid round number for current game state")
	}
	if _, err := primitive.ObjectIDFromHex(productID); err != nil {
		return nil, core.Validationf("invalid product id %q", productID)
	}

	round, err := s.store.GetGameRound(ctx, gameID, roundNumber)
	if errors.Is(err, store.ErrNotFound) {
		return nil, core.Statef("round has not been started")
	}
	if err != nil {
		return nil, err
	}
	if round.Completed {
		return nil, core.Statef("round has already been completed")
	}
	if !containsString(round.CandidateIDs, productID) {
		return nil, core.Validationf("selected product is not in this round's candidate set")
	}

	candidates, err := s.store.GetProductsByIDs(ctx, round.CandidateIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*catalog.Item, len(candidates))
	for _, it := range candidates {
		byID[it.ID.Hex()] = it
	}
	humanItem := byID[productID]
	if humanItem == nil {
		return nil, core.Validationf("selected product does not exist")
	}

	state := s.rec.DecodeStateBlob(game.ModelState)
	scored := s.rec.ScoreItems(state, candidates)
	if len(scored) == 0 {
		return nil, core.ModelNotReadyf("no scorable candidates in this round")
	}

	aiPick := scored[0]
	top3 := make([]string, 0, 3)
	for _, sc := range scored[:min(3, len(scored))] {
		top3 = append(top3, sc.ProductID)
	}
	rank := 0
	for i, sc := range scored {
		if sc.ProductID == productID {
			rank = i + 1
			break
		}
	}
	aiExact := aiPick.ProductID == productID
	aiCorrect := containsString(top3, productID)
	humanPoints, aiPoints := 10, 0
	if aiCorrect {
		humanPoints, aiPoints = 0, 10
	}

	// The duel is scored; now the model learns from the pick.
	s.rec.UpdateStateWithItem(state, humanItem, false)

	if err := s.persistLearningSelection(ctx, game, productID, time.Now().UTC()); err != nil {
		return nil, err
	}
	blob, err := s.rec.EncodeStateBlob(state)
	if err != nil {
		return nil, err
	}
	if !game.LearningSessionID.IsZero() {
		if err := s.store.UpdateSessionState(ctx, game.LearningSessionID.Hex(), blob); err != nil {
			return nil, err
		}
	}

	seq, err := s.selectionSequence(ctx, game, productID)
	if err != nil {
		return nil, err
	}
	post := roundMetrics(s.rec.MetricsForState(state, seq))
	explanation := s.explainRound(state, seq, humanItem, byID[aiPick.ProductID], scored, byID, game.Category)

	completedAt := time.Now().UTC()
	err = s.store.CompleteGameRound(ctx, round.ID.Hex(), &store.RoundCompletion{
		HumanPickID:  productID,
		AIPickID:     aiPick.ProductID,
		AIConfidence: aiPick.Score,
		AITopK:       scored[:min(5, len(scored))],
		AITop3IDs:    top3,
		AIRankOfPick: rank,
		AICorrect:    aiCorrect,
		AIExact:      aiExact,
		HumanPoints:  humanPoints,
		AIPoints:     aiPoints,
		PostMetrics:  post,
		CompletedAt:  completedAt,
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, core.Statef("round has already been completed")
	}
	if err != nil {
		return nil, err
	}

	newRound := game.CurrentRound + 1
	newHuman := game.HumanScore + humanPoints
	newAI := game.AIScore + aiPoints
	complete := newRound >= game.TotalRounds
	status := store.GameStatusPlaying
	if complete {
		status = store.GameStatusCompleted
	}
	if err := s.store.ApplyGameRoundResult(ctx, gameID, newRound, newHuman, newAI, status, blob); err != nil {
		return nil, err
	}

	metrics.RecordRoundResolved(aiCorrect, rank, time.Since(started))
	s.logger.Info().
		Str("game_id", gameID).
		Int("round", roundNumber).
		Bool("ai_correct", aiCorrect).
		Bool("ai_exact", aiExact).
		Int("rank_of_pick", rank).
		Int("human_score", newHuman).
		Int("ai_score", newAI).
		Msg("round resolved")

	return &RoundResult{
		RoundNumber:      roundNumber,
		HumanPick:        cardFor(humanItem),
		AIPick:           ScoredCard{Card: cardFor(byID[aiPick.ProductID]), Score: aiPick.Score},
		AICorrect:        aiCorrect,
		AIExact:          aiExact,
		AIRankOfPick:     rank,
		HumanPoints:      humanPoints,
		AIPoints:         aiPoints,
		TotalHumanScore:  newHuman,
		TotalAIScore:     newAI,
		AIExplanation:    explanation,
		PostRoundMetrics: post,
		GameComplete:     complete,
	}, nil
}

// buildRoundCandidates assembles a duel slate from the full ranking. The
// draw plan mixes confidence bands: 60% of the slate from the top 2x band
// ("likely"), up to 80% from the next 12x band ("near boundary"), then the
// bottom half preferring vendors outside the top ranks ("diverse"), then
// anything. Every pool is shuffled before drawing and duplicates are
// skipped, so slates stay varied while favoring what the model believes in.
func buildRoundCandidates(rng *rand.Rand, scored []store.ScoredID, vendorOf func(string) string, count int) []string {
	if len(scored) <= count {
		ids := make([]string, len(scored))
		for i, sc := range scored {
			ids[i] = sc.ProductID
		}
		shuffleStrings(rng, ids)
		return ids
	}

	selected := make([]string, 0, count)
	selectedSet := make(map[string]struct{}, count)
	addFromPool := func(pool []store.ScoredID, target int) {
		poolItems := make([]store.ScoredID, len(pool))
		copy(poolItems, pool)
		rng.Shuffle(len(poolItems), func(i, j int) { poolItems[i], poolItems[j] = poolItems[j], poolItems[i] })
		for _, sc := range poolItems {
			if _, dup := selectedSet[sc.ProductID]; dup {
				continue
			}
			selectedSet[sc.ProductID] = struct{}{}
			selected = append(selected, sc.ProductID)
			if len(selected) >= target {
				return
			}
		}
	}

	likelyTarget := count * 3 / 5
	boundaryTarget := count * 4 / 5
	likelyWindow := min(2*count, len(scored))
	boundaryWindow := min(12*count, len(scored))

	addFromPool(scored[:likelyWindow], likelyTarget)

	nearBoundary := scored[min(likelyWindow, boundaryWindow):boundaryWindow]
	if len(nearBoundary) == 0 {
		nearBoundary = scored[min(likelyTarget, boundaryWindow):boundaryWindow]
	}
	addFromPool(nearBoundary, boundaryTarget)

	likelyVendors := make(map[string]struct{}, count)
	for _, sc := range scored[:min(count, len(scored))] {
		likelyVendors[vendorOf(sc.ProductID)] = struct{}{}
	}
	tail := scored[len(scored)/2:]
	diverse := make([]store.ScoredID, 0, len(tail))
	for _, sc := range tail {
		if _, ok := likelyVendors[vendorOf(sc.ProductID)]; !ok {
			diverse = append(diverse, sc)
		}
	}
	if len(diverse) < 2 {
		diverse = tail
	}
	addFromPool(diverse, count)

	addFromPool(scored, count)

	if len(selected) > count {
		selected = selected[:count]
	}
	shuffleStrings(rng, selected)
	return selected
}

// vendorOf resolves an item's vendor from the engine snapshot.
func (s *Service) vendorOf(id string) string {
	if it := s.rec.ItemByID(id); it != nil {
		return it.Vendor
	}
	return ""
}
