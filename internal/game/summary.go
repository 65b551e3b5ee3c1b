// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

package game

import (
	"context"

	"github.com/decidio/duel/internal/catalog"
	"github.com/decidio/duel/internal/core"
	"github.com/decidio/duel/internal/store"
)

// summaryRecommendationN is the size of the post-game top picks list; hidden
// gems use the same width.
const summaryRecommendationN = 5

// Summary debriefs a completed game: the round-by-round ledger, how often
// the model called the player's pick, the taste it believes it learned, and
// what it would recommend next.
func (s *Service) Summary(ctx context.Context, gameID string) (*Summary, error) {
	game, err := s.store.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game.Status != store.GameStatusCompleted {
		return nil, core.Statef("game is not completed")
	}
	if !s.rec.Ready() {
		return nil, core.ModelNotReadyf("feature space not built")
	}

	rounds, err := s.store.RoundsForGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	stats := make([]RoundStat, 0, len(rounds))
	var humanTotal, aiTotal, top3Hits, exactHits, completed int
	for _, r := range rounds {
		if !r.Completed {
			continue
		}
		completed++
		humanTotal += r.HumanPoints
		aiTotal += r.AIPoints
		if r.AICorrect {
			top3Hits++
		}
		if r.AIExact {
			exactHits++
		}
		stats = append(stats, RoundStat{
			RoundNumber:           r.RoundNumber,
			HumanPickID:           r.HumanPickID,
			AIPickID:              r.AIPickID,
			AICorrect:             r.AICorrect,
			AIExact:               r.AIExact,
			AIRankOfPick:          r.AIRankOfPick,
			HumanPoints:           r.HumanPoints,
			AIPoints:              r.AIPoints,
			HumanTotal:            humanTotal,
			AITotal:               aiTotal,
			CoherenceScore:        r.PostMetrics.CoherenceScore,
			PredictedPrefixRating: r.PostMetrics.PredictedPrefixRating,
		})
	}

	var top3Accuracy, exactAccuracy float64
	if completed > 0 {
		top3Accuracy = float64(top3Hits) / float64(completed)
		exactAccuracy = float64(exactHits) / float64(completed)
	}

	state := s.rec.DecodeStateBlob(game.ModelState)
	selectedIDs, err := s.selectionSequence(ctx, game, "")
	if err != nil {
		return nil, err
	}
	likes, dislikes := tasteDims(state, s.rec.FeatureKeys(), tasteWeightFloor, summaryTasteLimit)

	used := make(map[string]struct{}, len(selectedIDs))
	for _, id := range selectedIDs {
		used[id] = struct{}{}
	}
	var unplayed []*catalog.Item
	for _, it := range s.categoryItems(game.Category) {
		if _, ok := used[it.ID.Hex()]; !ok {
			unplayed = append(unplayed, it)
		}
	}
	ranked := s.rec.ScoreItems(state, unplayed)
	topPicks := ranked[:min(summaryRecommendationN, len(ranked))]
	recCards := s.snapshotCards(topPicks)

	hidden := s.rec.HiddenPreferencesForState(state, selectedIDs, hiddenTopN)
	hiddenLabels := humanizeHidden(hidden)

	// Gems must not repeat anything the player saw picked or recommended.
	exclude := make([]string, 0, len(selectedIDs)+len(topPicks))
	exclude = append(exclude, selectedIDs...)
	for _, sc := range topPicks {
		exclude = append(exclude, sc.ProductID)
	}
	gems := s.rec.HiddenGemsForState(state, hidden, exclude, summaryRecommendationN)
	gemCards := make([]ScoredCard, 0, len(gems))
	for _, g := range gems {
		if g.Item == nil {
			continue
		}
		gemCards = append(gemCards, ScoredCard{Card: cardFor(g.Item), Score: g.Score})
	}

	winner := "tie"
	switch {
	case game.HumanScore > game.AIScore:
		winner = "human"
	case game.AIScore > game.HumanScore:
		winner = "ai"
	}

	profile, err := catalog.ProfileFor(game.Category)
	if err != nil {
		return nil, core.Validationf("unsupported category %q", game.Category)
	}

	return &Summary{
		GameID:          game.ID.Hex(),
		PlayerName:      game.PlayerName,
		Category:        game.Category,
		HumanScore:      game.HumanScore,
		AIScore:         game.AIScore,
		Winner:          winner,
		Rounds:          stats,
		AITop3Accuracy:  top3Accuracy,
		AIExactAccuracy: exactAccuracy,
		LearnedLikes:    likes,
		LearnedDislikes: dislikes,
		Recommendations: recCards,
		HiddenGems:      gemCards,
		Narrative:       narrative(hiddenLabels),
		Copy:            profile.DisplayCopy(),
	}, nil
}

// snapshotCards builds scored cards from engine snapshot items.
func (s *Service) snapshotCards(scored []store.ScoredID) []ScoredCard {
	out := make([]ScoredCard, 0, len(scored))
	for _, sc := range scored {
		it := s.rec.ItemByID(sc.ProductID)
		if it == nil {
			continue
		}
		out = append(out, ScoredCard{Card: cardFor(it), Score: sc.Score})
	}
	return out
}
