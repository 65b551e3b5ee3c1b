// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

package api

import (
	"net/http"
	"testing"

	"github.com/decidio/duel/internal/game"
)

func TestGameStart(t *testing.T) {
	ts := newTestServer(t, 20)

	status, env := ts.do(t, http.MethodPost, "/api/game/start", GameStartRequest{PlayerName: "Ada"})
	if status != http.StatusCreated {
		t.Fatalf("status = %d, want %d (error: %+v)", status, http.StatusCreated, env.Error)
	}

	var view game.GameView
	decodeData(t, env, &view)

	if len(view.ID) != 24 {
		t.Errorf("ID = %q, want a 24-char hex id", view.ID)
	}
	if view.PlayerName != "Ada" {
		t.Errorf("PlayerName = %q, want Ada", view.PlayerName)
	}
	if view.Category != "fountain_pens" {
		t.Errorf("Category = %q, want fountain_pens", view.Category)
	}
	if view.Status != "onboarding" {
		t.Errorf("Status = %q, want onboarding", view.Status)
	}
	if view.TotalRounds != 2 {
		t.Errorf("TotalRounds = %d, want 2", view.TotalRounds)
	}
}

func TestGameStartRejectsBadBodies(t *testing.T) {
	ts := newTestServer(t, 20)

	t.Run("malformed json", func(t *testing.T) {
		status, env := ts.doRaw(t, http.MethodPost, "/api/game/start", "{")
		wantAPIError(t, status, env, http.StatusBadRequest, ErrCodeBadRequest)
	})

	t.Run("empty body", func(t *testing.T) {
		status, env := ts.doRaw(t, http.MethodPost, "/api/game/start", "")
		wantAPIError(t, status, env, http.StatusBadRequest, ErrCodeBadRequest)
	})

	t.Run("unknown field", func(t *testing.T) {
		status, env := ts.doRaw(t, http.MethodPost, "/api/game/start", `{"player":"Ada"}`)
		wantAPIError(t, status, env, http.StatusBadRequest, ErrCodeBadRequest)
	})

	t.Run("missing player name", func(t *testing.T) {
		status, env := ts.doRaw(t, http.MethodPost, "/api/game/start", `{"category":"fountain_pens"}`)
		wantAPIError(t, status, env, http.StatusBadRequest, ErrCodeValidationError)
	})

	t.Run("too many rounds", func(t *testing.T) {
		status, env := ts.do(t, http.MethodPost, "/api/game/start", GameStartRequest{PlayerName: "Ada", TotalRounds: 99})
		wantAPIError(t, status, env, http.StatusBadRequest, ErrCodeValidationError)
	})

	t.Run("unknown category", func(t *testing.T) {
		status, env := ts.do(t, http.MethodPost, "/api/game/start", GameStartRequest{PlayerName: "Ada", Category: "gadgets"})
		wantAPIError(t, status, env, http.StatusBadRequest, ErrCodeValidationError)
	})
}

func TestGameStartModelNotReady(t *testing.T) {
	ts := newTestServer(t, 0)

	status, env := ts.do(t, http.MethodPost, "/api/game/start", GameStartRequest{PlayerName: "Ada"})
	wantAPIError(t, status, env, http.StatusServiceUnavailable, ErrCodeModelNotReady)

	want := "Recommendation model is not ready; try again after the catalog is ingested"
	if env.Error.Message != want {
		t.Errorf("Error.Message = %q, want %q", env.Error.Message, want)
	}
}

func TestGameOnboardingOverHTTP(t *testing.T) {
	ts := newTestServer(t, 20)
	view := startGame(t, ts, "Ada")

	status, env := ts.do(t, http.MethodGet, "/api/game/"+view.ID+"/onboarding", nil)
	if status != http.StatusOK {
		t.Fatalf("GET onboarding status = %d (error: %+v)", status, env.Error)
	}

	var pool game.OnboardingView
	decodeData(t, env, &pool)

	if pool.GameID != view.ID {
		t.Errorf("GameID = %q, want %q", pool.GameID, view.ID)
	}
	if len(pool.Products) != 12 {
		t.Errorf("pool size = %d, want 12", len(pool.Products))
	}
	if pool.Copy.ID != "fountain_pens" {
		t.Errorf("Copy.ID = %q, want fountain_pens", pool.Copy.ID)
	}
	for i, card := range pool.Products {
		if card.ID == "" || card.Title == "" {
			t.Errorf("card %d missing id or title: %+v", i, card)
		}
	}
}

func TestGameOnboardingSubmitOverHTTP(t *testing.T) {
	ts := newTestServer(t, 20)
	view := startGame(t, ts, "Ada")

	_, env := ts.do(t, http.MethodGet, "/api/game/"+view.ID+"/onboarding", nil)
	var pool game.OnboardingView
	decodeData(t, env, &pool)

	submitPath := "/api/game/" + view.ID + "/onboarding/submit"

	t.Run("rating out of range fails structural validation", func(t *testing.T) {
		status, env := ts.do(t, http.MethodPost, submitPath, OnboardingSubmitRequest{
			SelectedProductIDs: []string{pool.Products[0].ID},
			Rating:             7,
		})
		wantAPIError(t, status, env, http.StatusBadRequest, ErrCodeValidationError)
	})

	t.Run("wrong pick count fails game validation", func(t *testing.T) {
		status, env := ts.do(t, http.MethodPost, submitPath, OnboardingSubmitRequest{
			SelectedProductIDs: []string{pool.Products[0].ID, pool.Products[1].ID},
			Rating:             4,
		})
		wantAPIError(t, status, env, http.StatusBadRequest, ErrCodeValidationError)
	})

	t.Run("valid submission moves the game to ready", func(t *testing.T) {
		status, env := ts.do(t, http.MethodPost, submitPath, OnboardingSubmitRequest{
			SelectedProductIDs: []string{pool.Products[0].ID, pool.Products[1].ID, pool.Products[2].ID},
			Rating:             4,
		})
		if status != http.StatusOK {
			t.Fatalf("status = %d (error: %+v)", status, env.Error)
		}

		var result game.OnboardingResult
		decodeData(t, env, &result)
		if !result.Accepted {
			t.Errorf("Accepted = false, want true")
		}
		if result.NextRound != 1 {
			t.Errorf("NextRound = %d, want 1", result.NextRound)
		}
	})

	t.Run("second submission is a state error", func(t *testing.T) {
		status, env := ts.do(t, http.MethodPost, submitPath, OnboardingSubmitRequest{
			SelectedProductIDs: []string{pool.Products[0].ID, pool.Products[1].ID, pool.Products[2].ID},
			Rating:             4,
		})
		wantAPIError(t, status, env, http.StatusBadRequest, ErrCodeStateError)
	})
}

func TestGameFullDuelOverHTTP(t *testing.T) {
	ts := newTestServer(t, 20)
	view := startGame(t, ts, "Ada")
	completeOnboarding(t, ts, view.ID, 3, 4)

	var lastResult game.RoundResult
	for round := 1; round <= 2; round++ {
		result := playRound(t, ts, view.ID)

		if result.RoundNumber != round {
			t.Fatalf("RoundNumber = %d, want %d", result.RoundNumber, round)
		}
		if result.HumanPoints+result.AIPoints != 10 {
			t.Errorf("round %d points = %d+%d, want a 10-point split", round, result.HumanPoints, result.AIPoints)
		}
		if result.AIRankOfPick < 1 || result.AIRankOfPick > 4 {
			t.Errorf("round %d AIRankOfPick = %d, want 1..4", round, result.AIRankOfPick)
		}
		if result.AIExplanation.Reason == "" {
			t.Errorf("round %d explanation is empty", round)
		}

		wantComplete := round == 2
		if result.GameComplete != wantComplete {
			t.Errorf("round %d GameComplete = %v, want %v", round, result.GameComplete, wantComplete)
		}
		lastResult = result
	}

	status, env := ts.do(t, http.MethodGet, "/api/game/"+view.ID+"/status", nil)
	if status != http.StatusOK {
		t.Fatalf("GET status = %d (error: %+v)", status, env.Error)
	}

	var gs game.GameStatus
	decodeData(t, env, &gs)
	if gs.Status != "completed" {
		t.Errorf("Status = %q, want completed", gs.Status)
	}
	if gs.HumanScore != lastResult.TotalHumanScore || gs.AIScore != lastResult.TotalAIScore {
		t.Errorf("scores = %d/%d, want %d/%d", gs.HumanScore, gs.AIScore, lastResult.TotalHumanScore, lastResult.TotalAIScore)
	}

	status, env = ts.do(t, http.MethodPost, "/api/game/"+view.ID+"/round/start", nil)
	wantAPIError(t, status, env, http.StatusBadRequest, ErrCodeStateError)
}

func TestGameRoundPickValidation(t *testing.T) {
	ts := newTestServer(t, 20)
	view := startGame(t, ts, "Ada")
	completeOnboarding(t, ts, view.ID, 3, 4)

	status, env := ts.do(t, http.MethodPost, "/api/game/"+view.ID+"/round/start", nil)
	if status != http.StatusOK {
		t.Fatalf("POST round/start status = %d (error: %+v)", status, env.Error)
	}
	var round game.RoundStart
	decodeData(t, env, &round)

	t.Run("round param must be a number", func(t *testing.T) {
		status, env := ts.do(t, http.MethodPost, "/api/game/"+view.ID+"/round/abc/pick", RoundPickRequest{ProductID: round.Candidates[0].ID})
		wantAPIError(t, status, env, http.StatusBadRequest, ErrCodeBadRequest)
	})

	t.Run("round param must be positive", func(t *testing.T) {
		status, env := ts.do(t, http.MethodPost, "/api/game/"+view.ID+"/round/0/pick", RoundPickRequest{ProductID: round.Candidates[0].ID})
		wantAPIError(t, status, env, http.StatusBadRequest, ErrCodeBadRequest)
	})

	t.Run("product id must be a hex object id", func(t *testing.T) {
		status, env := ts.do(t, http.MethodPost, "/api/game/"+view.ID+"/round/1/pick", RoundPickRequest{ProductID: "not-an-id"})
		wantAPIError(t, status, env, http.StatusBadRequest, ErrCodeValidationError)
	})

	t.Run("pick must come from the slate", func(t *testing.T) {
		status, env := ts.do(t, http.MethodPost, "/api/game/"+view.ID+"/round/1/pick", RoundPickRequest{ProductID: "ffffffffffffffffffffffff"})
		wantAPIError(t, status, env, http.StatusBadRequest, ErrCodeValidationError)
	})

	t.Run("round number must match the open round", func(t *testing.T) {
		status, env := ts.do(t, http.MethodPost, "/api/game/"+view.ID+"/round/2/pick", RoundPickRequest{ProductID: round.Candidates[0].ID})
		wantAPIError(t, status, env, http.StatusBadRequest, ErrCodeValidationError)
	})
}

func TestGameLookupErrors(t *testing.T) {
	ts := newTestServer(t, 20)

	t.Run("unknown game is not found", func(t *testing.T) {
		status, env := ts.do(t, http.MethodGet, "/api/game/ffffffffffffffffffffffff/status", nil)
		wantAPIError(t, status, env, http.StatusNotFound, ErrCodeNotFound)
	})

	t.Run("malformed id is a validation error", func(t *testing.T) {
		status, env := ts.do(t, http.MethodGet, "/api/game/not-hex/status", nil)
		wantAPIError(t, status, env, http.StatusBadRequest, ErrCodeValidationError)
	})

	t.Run("onboarding of unknown game is not found", func(t *testing.T) {
		status, env := ts.do(t, http.MethodGet, "/api/game/ffffffffffffffffffffffff/onboarding", nil)
		wantAPIError(t, status, env, http.StatusNotFound, ErrCodeNotFound)
	})
}

func TestGameSummaryOverHTTP(t *testing.T) {
	ts := newTestServer(t, 20)
	view := startGame(t, ts, "Ada")
	completeOnboarding(t, ts, view.ID, 3, 4)

	status, env := ts.do(t, http.MethodGet, "/api/game/"+view.ID+"/summary", nil)
	wantAPIError(t, status, env, http.StatusBadRequest, ErrCodeStateError)

	playRound(t, ts, view.ID)
	playRound(t, ts, view.ID)

	status, env = ts.do(t, http.MethodGet, "/api/game/"+view.ID+"/summary", nil)
	if status != http.StatusOK {
		t.Fatalf("GET summary status = %d (error: %+v)", status, env.Error)
	}

	var summary game.Summary
	decodeData(t, env, &summary)

	if summary.GameID != view.ID || summary.PlayerName != "Ada" {
		t.Errorf("summary identity = %q/%q, want %q/Ada", summary.GameID, summary.PlayerName, view.ID)
	}
	if len(summary.Rounds) != 2 {
		t.Errorf("Rounds = %d entries, want 2", len(summary.Rounds))
	}
	switch summary.Winner {
	case "human", "ai", "tie":
	default:
		t.Errorf("Winner = %q, want human, ai, or tie", summary.Winner)
	}
	if len(summary.Recommendations) == 0 || len(summary.Recommendations) > 5 {
		t.Errorf("Recommendations = %d entries, want 1..5", len(summary.Recommendations))
	}
	if summary.Narrative == "" {
		t.Errorf("Narrative is empty")
	}
}

func TestGameLeaderboardAndHistoryOverHTTP(t *testing.T) {
	ts := newTestServer(t, 20)
	view := startGame(t, ts, "Ada")
	completeOnboarding(t, ts, view.ID, 3, 4)
	playRound(t, ts, view.ID)
	playRound(t, ts, view.ID)

	status, env := ts.do(t, http.MethodGet, "/api/game/leaderboard", nil)
	if status != http.StatusOK {
		t.Fatalf("GET leaderboard status = %d (error: %+v)", status, env.Error)
	}

	var entries []game.LeaderboardEntry
	decodeData(t, env, &entries)
	if len(entries) != 1 {
		t.Fatalf("leaderboard entries = %d, want 1", len(entries))
	}
	if entries[0].Rank != 1 || entries[0].PlayerName != "Ada" {
		t.Errorf("entry = %+v, want rank 1 for Ada", entries[0])
	}
	if env.Meta == nil || env.Meta.Pagination == nil || env.Meta.Pagination.Limit != 10 {
		t.Errorf("pagination = %+v, want the default limit 10", env.Meta)
	}

	status, env = ts.do(t, http.MethodGet, "/api/game/player/Ada/history", nil)
	if status != http.StatusOK {
		t.Fatalf("GET history status = %d (error: %+v)", status, env.Error)
	}

	var history []game.PlayerGameEntry
	decodeData(t, env, &history)
	if len(history) != 1 {
		t.Fatalf("history entries = %d, want 1", len(history))
	}
	if history[0].Status != "completed" {
		t.Errorf("history status = %q, want completed", history[0].Status)
	}

	status, env = ts.do(t, http.MethodGet, "/api/game/player/Nobody/history", nil)
	if status != http.StatusOK {
		t.Fatalf("GET history for unknown player status = %d", status)
	}
	decodeData(t, env, &history)
	if len(history) != 0 {
		t.Errorf("history for unknown player = %d entries, want 0", len(history))
	}
}
