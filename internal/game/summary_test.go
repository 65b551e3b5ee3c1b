// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

package game

import (
	"context"
	"errors"
	"testing"

	"github.com/decidio/duel/internal/core"
)

func TestSummaryRequiresCompletedGame(t *testing.T) {
	svc, _ := newTestService(t, 20, testGameConfig())
	ctx := context.Background()

	view, err := svc.CreateGame(ctx, "Ada", "", 0)
	if err != nil {
		t.Fatalf("CreateGame(): %v", err)
	}
	if _, err := svc.Summary(ctx, view.ID); !errors.Is(err, core.ErrState) {
		t.Errorf("Summary() on running game error = %v, want core.ErrState", err)
	}
}

func TestSummaryAfterFullGame(t *testing.T) {
	svc, _ := newTestService(t, 20, testGameConfig())
	ctx := context.Background()

	view, err := svc.CreateGame(ctx, "Ada", "", 0)
	if err != nil {
		t.Fatalf("CreateGame(): %v", err)
	}
	picks := completeOnboarding(t, svc, view.ID, 3, 4)
	var human, ai int
	for round := 1; round <= 2; round++ {
		res := playRound(t, svc, view.ID, round)
		picks = append(picks, res.HumanPick.ID)
		human, ai = res.TotalHumanScore, res.TotalAIScore
	}

	sum, err := svc.Summary(ctx, view.ID)
	if err != nil {
		t.Fatalf("Summary(): %v", err)
	}
	if sum.GameID != view.ID || sum.PlayerName != "Ada" || sum.Category != "fountain_pens" {
		t.Errorf("summary identity = %s/%s/%s, want game fields", sum.GameID, sum.PlayerName, sum.Category)
	}
	if sum.HumanScore != human || sum.AIScore != ai {
		t.Errorf("summary scores = %d/%d, want %d/%d", sum.HumanScore, sum.AIScore, human, ai)
	}

	wantWinner := "tie"
	switch {
	case human > ai:
		wantWinner = "human"
	case ai > human:
		wantWinner = "ai"
	}
	if sum.Winner != wantWinner {
		t.Errorf("Winner = %q, want %q", sum.Winner, wantWinner)
	}

	if len(sum.Rounds) != 2 {
		t.Fatalf("summary has %d rounds, want 2", len(sum.Rounds))
	}
	var top3, exact int
	runningHuman, runningAI := 0, 0
	for i, r := range sum.Rounds {
		if r.RoundNumber != i+1 {
			t.Errorf("rounds out of order at %d: number %d", i, r.RoundNumber)
		}
		runningHuman += r.HumanPoints
		runningAI += r.AIPoints
		if r.HumanTotal != runningHuman || r.AITotal != runningAI {
			t.Errorf("round %d running totals = %d/%d, want %d/%d", r.RoundNumber, r.HumanTotal, r.AITotal, runningHuman, runningAI)
		}
		if r.AICorrect {
			top3++
		}
		if r.AIExact {
			exact++
		}
	}
	if sum.AITop3Accuracy != float64(top3)/2 {
		t.Errorf("AITop3Accuracy = %v, want %v", sum.AITop3Accuracy, float64(top3)/2)
	}
	if sum.AIExactAccuracy != float64(exact)/2 {
		t.Errorf("AIExactAccuracy = %v, want %v", sum.AIExactAccuracy, float64(exact)/2)
	}

	// Recommendations never repeat something the player already took.
	taken := make(map[string]struct{}, len(picks))
	for _, id := range picks {
		taken[id] = struct{}{}
	}
	if len(sum.Recommendations) == 0 || len(sum.Recommendations) > summaryRecommendationN {
		t.Errorf("recommendations = %d, want 1..%d", len(sum.Recommendations), summaryRecommendationN)
	}
	for _, rec := range sum.Recommendations {
		if _, ok := taken[rec.ID]; ok {
			t.Errorf("recommendation %s repeats a picked item", rec.ID)
		}
	}
	for _, gem := range sum.HiddenGems {
		if _, ok := taken[gem.ID]; ok {
			t.Errorf("hidden gem %s repeats a picked item", gem.ID)
		}
		for _, rec := range sum.Recommendations {
			if gem.ID == rec.ID {
				t.Errorf("hidden gem %s repeats a recommendation", gem.ID)
			}
		}
	}

	if sum.Narrative == "" {
		t.Error("summary narrative is empty")
	}
	if sum.Copy.ID != "fountain_pens" {
		t.Errorf("summary copy block = %q, want fountain_pens", sum.Copy.ID)
	}
}
