// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

package game

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/decidio/duel/internal/core"
	"github.com/decidio/duel/internal/store"
	"github.com/decidio/duel/internal/testinfra"
)

func TestStartRoundRequiresOnboarding(t *testing.T) {
	svc, _ := newTestService(t, 20, testGameConfig())
	ctx := context.Background()

	view, err := svc.CreateGame(ctx, "Ada", "", 0)
	if err != nil {
		t.Fatalf("CreateGame(): %v", err)
	}
	if _, err := svc.StartRound(ctx, view.ID); !errors.Is(err, core.ErrState) {
		t.Errorf("StartRound() before onboarding error = %v, want core.ErrState", err)
	}
}

func TestStartRoundIdempotent(t *testing.T) {
	svc, ms := newTestService(t, 20, testGameConfig())
	ctx := context.Background()

	view, err := svc.CreateGame(ctx, "Ada", "", 0)
	if err != nil {
		t.Fatalf("CreateGame(): %v", err)
	}
	completeOnboarding(t, svc, view.ID, 3, 4)

	first, err := svc.StartRound(ctx, view.ID)
	if err != nil {
		t.Fatalf("StartRound(): %v", err)
	}
	if first.RoundNumber != 1 {
		t.Fatalf("RoundNumber = %d, want 1", first.RoundNumber)
	}
	if len(first.Candidates) != 4 {
		t.Fatalf("slate size = %d, want configured 4", len(first.Candidates))
	}

	// A retry serves the stored slate, not a fresh draw.
	second, err := svc.StartRound(ctx, view.ID)
	if err != nil {
		t.Fatalf("StartRound(retry): %v", err)
	}
	if second.RoundNumber != 1 {
		t.Errorf("retry RoundNumber = %d, want 1", second.RoundNumber)
	}
	for i := range first.Candidates {
		if first.Candidates[i].ID != second.Candidates[i].ID {
			t.Fatalf("slate changed on retry at %d: %s vs %s", i, first.Candidates[i].ID, second.Candidates[i].ID)
		}
	}

	g, err := ms.GetGame(ctx, view.ID)
	if err != nil {
		t.Fatalf("GetGame(): %v", err)
	}
	if g.Status != store.GameStatusPlaying {
		t.Errorf("status = %q after round start, want playing", g.Status)
	}
}

func TestStartRoundExcludesPickedItems(t *testing.T) {
	svc, _ := newTestService(t, 20, testGameConfig())
	ctx := context.Background()

	view, err := svc.CreateGame(ctx, "Ada", "", 0)
	if err != nil {
		t.Fatalf("CreateGame(): %v", err)
	}
	picks := completeOnboarding(t, svc, view.ID, 3, 4)
	picked := make(map[string]struct{}, len(picks))
	for _, id := range picks {
		picked[id] = struct{}{}
	}

	rs, err := svc.StartRound(ctx, view.ID)
	if err != nil {
		t.Fatalf("StartRound(): %v", err)
	}
	for _, c := range rs.Candidates {
		if _, ok := picked[c.ID]; ok {
			t.Errorf("slate contains already-picked item %s", c.ID)
		}
	}
}

func TestSubmitPickValidation(t *testing.T) {
	svc, _ := newTestService(t, 20, testGameConfig())
	ctx := context.Background()

	view, err := svc.CreateGame(ctx, "Ada", "", 0)
	if err != nil {
		t.Fatalf("CreateGame(): %v", err)
	}
	completeOnboarding(t, svc, view.ID, 3, 4)

	// Round not started yet.
	if _, err := svc.SubmitPick(ctx, view.ID, 1, testinfra.ItemID(0).Hex()); !errors.Is(err, core.ErrState) {
		t.Errorf("SubmitPick() before start error = %v, want core.ErrState", err)
	}

	rs, err := svc.StartRound(ctx, view.ID)
	if err != nil {
		t.Fatalf("StartRound(): %v", err)
	}
	inSlate := rs.Candidates[0].ID
	outsider := ""
	for _, it := range testinfra.PenCatalog(20) {
		id := it.ID.Hex()
		found := false
		for _, c := range rs.Candidates {
			if c.ID == id {
				found = true
				break
			}
		}
		if !found {
			outsider = id
			break
		}
	}

	tests := []struct {
		name    string
		round   int
		pick    string
		wantErr error
	}{
		{name: "wrong round number", round: 2, pick: inSlate, wantErr: core.ErrValidation},
		{name: "zero round number", round: 0, pick: inSlate, wantErr: core.ErrValidation},
		{name: "malformed product id", round: 1, pick: "not-hex", wantErr: core.ErrValidation},
		{name: "pick outside slate", round: 1, pick: outsider, wantErr: core.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.SubmitPick(ctx, view.ID, tt.round, tt.pick); !errors.Is(err, tt.wantErr) {
				t.Errorf("SubmitPick() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFullDuel(t *testing.T) {
	svc, ms := newTestService(t, 20, testGameConfig())
	ctx := context.Background()

	view, err := svc.CreateGame(ctx, "Ada", "", 0)
	if err != nil {
		t.Fatalf("CreateGame(): %v", err)
	}
	completeOnboarding(t, svc, view.ID, 3, 4)

	var human, ai int
	for round := 1; round <= 2; round++ {
		res := playRound(t, svc, view.ID, round)

		if res.HumanPoints+res.AIPoints != 10 {
			t.Errorf("round %d points = %d+%d, want sum 10", round, res.HumanPoints, res.AIPoints)
		}
		if res.AICorrect != (res.AIPoints == 10) {
			t.Errorf("round %d AICorrect = %v inconsistent with AIPoints = %d", round, res.AICorrect, res.AIPoints)
		}
		if res.AIExact && !res.AICorrect {
			t.Errorf("round %d AIExact without AICorrect", round)
		}
		if res.AIExact != (res.AIPick.ID == res.HumanPick.ID) {
			t.Errorf("round %d AIExact = %v but picks are %s vs %s", round, res.AIExact, res.AIPick.ID, res.HumanPick.ID)
		}
		if res.AIRankOfPick < 1 || res.AIRankOfPick > 4 {
			t.Errorf("round %d AIRankOfPick = %d, want within slate", round, res.AIRankOfPick)
		}
		if res.AIExplanation.Reason == "" {
			t.Errorf("round %d has empty explanation reason", round)
		}
		if len(res.AIExplanation.TopCandidates) == 0 {
			t.Errorf("round %d has no top candidates in explanation", round)
		}

		human += res.HumanPoints
		ai += res.AIPoints
		if res.TotalHumanScore != human || res.TotalAIScore != ai {
			t.Errorf("round %d totals = %d/%d, want %d/%d", round, res.TotalHumanScore, res.TotalAIScore, human, ai)
		}
		if res.GameComplete != (round == 2) {
			t.Errorf("round %d GameComplete = %v", round, res.GameComplete)
		}
	}

	g, err := ms.GetGame(ctx, view.ID)
	if err != nil {
		t.Fatalf("GetGame(): %v", err)
	}
	if g.Status != store.GameStatusCompleted {
		t.Errorf("status = %q after final round, want completed", g.Status)
	}
	if g.CurrentRound != 2 {
		t.Errorf("CurrentRound = %d, want 2", g.CurrentRound)
	}
	if g.HumanScore != human || g.AIScore != ai {
		t.Errorf("stored scores = %d/%d, want %d/%d", g.HumanScore, g.AIScore, human, ai)
	}

	// Completed games accept no further play.
	if _, err := svc.StartRound(ctx, view.ID); !errors.Is(err, core.ErrState) {
		t.Errorf("StartRound() on completed game error = %v, want core.ErrState", err)
	}
	if _, err := svc.SubmitPick(ctx, view.ID, 3, testinfra.ItemID(0).Hex()); !errors.Is(err, core.ErrState) {
		t.Errorf("SubmitPick() on completed game error = %v, want core.ErrState", err)
	}

	// Onboarding picks plus one pick per round reached the learning log.
	sels, err := ms.SelectionsForSession(ctx, g.LearningSessionID.Hex())
	if err != nil {
		t.Fatalf("SelectionsForSession(): %v", err)
	}
	if len(sels) != 5 {
		t.Errorf("learning log has %d selections, want 3 onboarding + 2 rounds", len(sels))
	}
}

func TestSubmitPickCompletedRound(t *testing.T) {
	svc, ms := newTestService(t, 20, testGameConfig())
	ctx := context.Background()

	view, err := svc.CreateGame(ctx, "Ada", "", 0)
	if err != nil {
		t.Fatalf("CreateGame(): %v", err)
	}
	completeOnboarding(t, svc, view.ID, 3, 4)

	rs, err := svc.StartRound(ctx, view.ID)
	if err != nil {
		t.Fatalf("StartRound(): %v", err)
	}
	if _, err := svc.SubmitPick(ctx, view.ID, 1, rs.Candidates[0].ID); err != nil {
		t.Fatalf("SubmitPick(): %v", err)
	}

	// The round is resolved and the counter advanced, so a duplicate pick
	// fails round-number validation.
	if _, err := svc.SubmitPick(ctx, view.ID, 1, rs.Candidates[1].ID); !errors.Is(err, core.ErrValidation) {
		t.Errorf("duplicate SubmitPick() error = %v, want core.ErrValidation", err)
	}

	// The stored round carries the resolution.
	round, err := ms.GetGameRound(ctx, view.ID, 1)
	if err != nil {
		t.Fatalf("GetGameRound(): %v", err)
	}
	if !round.Completed || round.HumanPickID != rs.Candidates[0].ID {
		t.Errorf("stored round = completed %v pick %s, want resolution persisted", round.Completed, round.HumanPickID)
	}
	if len(round.AITopK) == 0 || len(round.AITop3IDs) == 0 {
		t.Error("stored round missing AI ranking fields")
	}
}

// TestSubmitPickScoringMatrix forces picks at known model ranks. The exact
// pick and a rank-2 pick both land in the model's top 3 and score for the
// AI; a pick the model ranked last scores for the human.
func TestSubmitPickScoringMatrix(t *testing.T) {
	cfg := testGameConfig()
	cfg.TotalRounds = 3
	svc, ms := newTestService(t, 20, cfg)
	ctx := context.Background()

	view, err := svc.CreateGame(ctx, "Ada", "", 0)
	if err != nil {
		t.Fatalf("CreateGame(): %v", err)
	}
	completeOnboarding(t, svc, view.ID, 3, 4)

	// rankedSlate replays pick resolution's scoring: decode the game's
	// current model state and score the stored round's candidates with it.
	rankedSlate := func(round int) []store.ScoredID {
		t.Helper()
		g, err := ms.GetGame(ctx, view.ID)
		if err != nil {
			t.Fatalf("GetGame(): %v", err)
		}
		r, err := ms.GetGameRound(ctx, view.ID, round)
		if err != nil {
			t.Fatalf("GetGameRound(): %v", err)
		}
		items, err := ms.GetProductsByIDs(ctx, r.CandidateIDs)
		if err != nil {
			t.Fatalf("GetProductsByIDs(): %v", err)
		}
		return svc.rec.ScoreItems(svc.rec.DecodeStateBlob(g.ModelState), items)
	}

	tests := []struct {
		name        string
		rank        int // 1-based position in the model's ranking to pick
		wantExact   bool
		wantCorrect bool
		wantHuman   int
		wantAI      int
	}{
		{name: "exact pick", rank: 1, wantExact: true, wantCorrect: true, wantAI: 10},
		{name: "rank-2 pick", rank: 2, wantCorrect: true, wantAI: 10},
		{name: "last-ranked pick", rank: 4, wantHuman: 10},
	}
	for i, tt := range tests {
		roundNumber := i + 1
		if _, err := svc.StartRound(ctx, view.ID); err != nil {
			t.Fatalf("%s: StartRound(): %v", tt.name, err)
		}
		scored := rankedSlate(roundNumber)
		if len(scored) < tt.rank {
			t.Fatalf("%s: ranking has %d entries, need rank %d", tt.name, len(scored), tt.rank)
		}

		res, err := svc.SubmitPick(ctx, view.ID, roundNumber, scored[tt.rank-1].ProductID)
		if err != nil {
			t.Fatalf("%s: SubmitPick(): %v", tt.name, err)
		}
		if res.AIPick.ID != scored[0].ProductID {
			t.Errorf("%s: AIPick = %s, want model's top candidate %s", tt.name, res.AIPick.ID, scored[0].ProductID)
		}
		if res.AIRankOfPick != tt.rank {
			t.Errorf("%s: AIRankOfPick = %d, want %d", tt.name, res.AIRankOfPick, tt.rank)
		}
		if res.AIExact != tt.wantExact {
			t.Errorf("%s: AIExact = %v, want %v", tt.name, res.AIExact, tt.wantExact)
		}
		if res.AICorrect != tt.wantCorrect {
			t.Errorf("%s: AICorrect = %v, want %v", tt.name, res.AICorrect, tt.wantCorrect)
		}
		if res.HumanPoints != tt.wantHuman || res.AIPoints != tt.wantAI {
			t.Errorf("%s: points = %d/%d, want %d/%d", tt.name, res.HumanPoints, res.AIPoints, tt.wantHuman, tt.wantAI)
		}
	}
}

func TestBuildRoundCandidates(t *testing.T) {
	vendors := []string{"Pelikan", "Sailor", "Lamy", "TWSBI", "Kaweco"}
	scored := make([]store.ScoredID, 30)
	vendorOf := make(map[string]string, 30)
	for i := range scored {
		id := testinfra.ItemID(i).Hex()
		scored[i] = store.ScoredID{ProductID: id, Score: float64(30 - i)}
		vendorOf[id] = vendors[i%len(vendors)]
	}
	lookup := func(id string) string { return vendorOf[id] }

	slate := buildRoundCandidates(rngFor("game-9", 1, saltRoundCandidates), scored, lookup, 10)
	if len(slate) != 10 {
		t.Fatalf("slate size = %d, want 10", len(slate))
	}
	seen := make(map[string]struct{}, len(slate))
	for _, id := range slate {
		if _, dup := seen[id]; dup {
			t.Fatalf("slate contains duplicate %s", id)
		}
		seen[id] = struct{}{}
		if _, known := vendorOf[id]; !known {
			t.Fatalf("slate contains id outside the ranking: %s", id)
		}
	}

	// Same draw site replays the identical slate.
	again := buildRoundCandidates(rngFor("game-9", 1, saltRoundCandidates), scored, lookup, 10)
	for i := range slate {
		if slate[i] != again[i] {
			t.Fatalf("slate not deterministic at %d", i)
		}
	}

	// A ranking no larger than the slate is returned whole.
	small := buildRoundCandidates(rngFor("game-9", 2, saltRoundCandidates), scored[:6], lookup, 10)
	if len(small) != 6 {
		t.Errorf("small ranking slate size = %d, want all 6", len(small))
	}
}

func TestRoundSlatesVaryAcrossRounds(t *testing.T) {
	scored := make([]store.ScoredID, 40)
	for i := range scored {
		scored[i] = store.ScoredID{ProductID: fmt.Sprintf("item-%02d", i), Score: float64(40 - i)}
	}
	lookup := func(string) string { return "" }

	one := buildRoundCandidates(rngFor("game-9", 1, saltRoundCandidates), scored, lookup, 10)
	two := buildRoundCandidates(rngFor("game-9", 2, saltRoundCandidates), scored, lookup, 10)

	same := true
	for i := range one {
		if one[i] != two[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("round 1 and round 2 slates are identical; draw streams overlap")
	}
}
