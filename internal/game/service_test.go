// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

package game

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/decidio/duel/internal/config"
	"github.com/decidio/duel/internal/core"
	"github.com/decidio/duel/internal/recommend"
	"github.com/decidio/duel/internal/store"
	"github.com/decidio/duel/internal/testinfra"
)

// testGameConfig shrinks the duel so a full game fits a 20-pen catalog:
// a 12-item pool, 3 onboarding picks, 2 rounds of 4 candidates.
func testGameConfig() config.GameConfig {
	return config.GameConfig{
		TotalRounds:        2,
		OnboardingPoolSize: 12,
		OnboardingPicks:    3,
		CandidateCount:     4,
	}
}

// newTestService wires a service against an in-memory store seeded with
// catalogSize pens and a refreshed engine.
func newTestService(t *testing.T, catalogSize int, cfg config.GameConfig) (*Service, *testinfra.MemStore) {
	t.Helper()
	ms := testinfra.NewMemStore()
	ms.SeedProducts(testinfra.PenCatalog(catalogSize))
	rec := recommend.New(recommend.Config{}, ms, zerolog.Nop())
	if err := rec.Refresh(context.Background()); err != nil {
		t.Fatalf("engine refresh: %v", err)
	}
	return New(cfg, ms, rec, zerolog.Nop()), ms
}

// completeOnboarding runs a game through onboarding, picking the first
// configured number of pool cards, and returns the picked ids.
func completeOnboarding(t *testing.T, svc *Service, gameID string, picks, rating int) []string {
	t.Helper()
	ctx := context.Background()
	ob, err := svc.GetOnboarding(ctx, gameID)
	if err != nil {
		t.Fatalf("GetOnboarding(): %v", err)
	}
	if len(ob.Products) < picks {
		t.Fatalf("pool has %d cards, need %d", len(ob.Products), picks)
	}
	ids := make([]string, picks)
	for i := 0; i < picks; i++ {
		ids[i] = ob.Products[i].ID
	}
	if _, err := svc.SubmitOnboarding(ctx, gameID, ids, rating); err != nil {
		t.Fatalf("SubmitOnboarding(): %v", err)
	}
	return ids
}

// playRound starts the next round and submits the first candidate as the
// human pick.
func playRound(t *testing.T, svc *Service, gameID string, roundNumber int) *RoundResult {
	t.Helper()
	ctx := context.Background()
	rs, err := svc.StartRound(ctx, gameID)
	if err != nil {
		t.Fatalf("StartRound(round %d): %v", roundNumber, err)
	}
	if rs.RoundNumber != roundNumber {
		t.Fatalf("StartRound() round = %d, want %d", rs.RoundNumber, roundNumber)
	}
	res, err := svc.SubmitPick(ctx, gameID, roundNumber, rs.Candidates[0].ID)
	if err != nil {
		t.Fatalf("SubmitPick(round %d): %v", roundNumber, err)
	}
	return res
}

func TestCreateGame(t *testing.T) {
	svc, ms := newTestService(t, 20, testGameConfig())
	ctx := context.Background()

	view, err := svc.CreateGame(ctx, "  Ada  ", "", 0)
	if err != nil {
		t.Fatalf("CreateGame(): %v", err)
	}
	if view.PlayerName != "Ada" {
		t.Errorf("PlayerName = %q, want trimmed %q", view.PlayerName, "Ada")
	}
	if view.Category != "fountain_pens" {
		t.Errorf("Category = %q, want default fountain_pens", view.Category)
	}
	if view.Status != store.GameStatusOnboarding {
		t.Errorf("Status = %q, want onboarding", view.Status)
	}
	if view.TotalRounds != 2 {
		t.Errorf("TotalRounds = %d, want configured 2", view.TotalRounds)
	}

	// Each game owns a shadow user with a fresh learning session.
	g, err := ms.GetGame(ctx, view.ID)
	if err != nil {
		t.Fatalf("GetGame(): %v", err)
	}
	if g.LearningUserID.IsZero() || g.LearningSessionID.IsZero() {
		t.Fatal("game has no learning user or session")
	}
	u, err := ms.GetUser(ctx, g.LearningUserID.Hex())
	if err != nil {
		t.Fatalf("GetUser(): %v", err)
	}
	if u.Name != "Ada (game)" {
		t.Errorf("shadow user name = %q, want %q", u.Name, "Ada (game)")
	}
	if len(g.ModelState) == 0 {
		t.Error("game created without model state")
	}
}

func TestCreateGameValidation(t *testing.T) {
	svc, _ := newTestService(t, 20, testGameConfig())
	ctx := context.Background()

	tests := []struct {
		name     string
		player   string
		category string
		wantErr  error
	}{
		{name: "empty player", player: "   ", category: "", wantErr: core.ErrValidation},
		{name: "unknown category", player: "Ada", category: "sneakers", wantErr: core.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateGame(ctx, tt.player, tt.category, 0); !errors.Is(err, tt.wantErr) {
				t.Errorf("CreateGame() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	// Explicit round count overrides the default.
	view, err := svc.CreateGame(ctx, "Ada", "fountain_pens", 5)
	if err != nil {
		t.Fatalf("CreateGame(): %v", err)
	}
	if view.TotalRounds != 5 {
		t.Errorf("TotalRounds = %d, want 5", view.TotalRounds)
	}
}

func TestCreateGameRequiresReadyEngine(t *testing.T) {
	ms := testinfra.NewMemStore()
	rec := recommend.New(recommend.Config{}, ms, zerolog.Nop())
	if err := rec.Refresh(context.Background()); err != nil {
		t.Fatalf("engine refresh: %v", err)
	}
	svc := New(testGameConfig(), ms, rec, zerolog.Nop())

	if _, err := svc.CreateGame(context.Background(), "Ada", "", 0); !errors.Is(err, core.ErrModelNotReady) {
		t.Errorf("CreateGame() with empty catalog error = %v, want core.ErrModelNotReady", err)
	}
}

func TestCreateGameUnknownGameLookups(t *testing.T) {
	svc, _ := newTestService(t, 20, testGameConfig())
	ctx := context.Background()
	unknown := testinfra.ItemID(700).Hex()

	if _, err := svc.GetOnboarding(ctx, unknown); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("GetOnboarding(unknown) error = %v, want core.ErrNotFound", err)
	}
	if _, err := svc.StartRound(ctx, unknown); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("StartRound(unknown) error = %v, want core.ErrNotFound", err)
	}
	if _, err := svc.GameStatus(ctx, unknown); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("GameStatus(unknown) error = %v, want core.ErrNotFound", err)
	}
	if _, err := svc.GetOnboarding(ctx, "not-hex"); !errors.Is(err, core.ErrValidation) {
		t.Errorf("GetOnboarding(bad id) error = %v, want core.ErrValidation", err)
	}
}
