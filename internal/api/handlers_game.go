// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// GameStart handles POST /api/game/start.
// Creates a game in the onboarding state and seeds its deterministic
// onboarding pool.
func (h *Handler) GameStart(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req GameStartRequest
	if err := decodeBody(w, r, &req); err != nil {
		rw.BadRequest("Invalid request body: " + err.Error())
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		rw.ErrorWithDetails(http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	view, err := h.games.CreateGame(r.Context(), req.PlayerName, req.Category, req.TotalRounds)
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}

	rw.Created(view)
}

// GameLeaderboard handles GET /api/game/leaderboard.
// Completed games ranked by score difference.
func (h *Handler) GameLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := clampLimit(getIntParam(r, "limit", 10), 10, 100)

	entries, err := h.games.Leaderboard(r.Context(), limit)
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}

	NewResponseWriter(w, r).SuccessWithPagination(entries, &PaginationMeta{
		Count: len(entries),
		Limit: limit,
	})
}

// GamePlayerHistory handles GET /api/game/player/{name}/history.
// A player's games in any state, newest first.
func (h *Handler) GamePlayerHistory(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	name := chi.URLParam(r, "name")
	if name == "" {
		rw.BadRequest("Player name is required")
		return
	}
	limit := clampLimit(getIntParam(r, "limit", 20), 20, 100)

	entries, err := h.games.PlayerHistory(r.Context(), name, limit)
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}

	rw.SuccessWithPagination(entries, &PaginationMeta{
		Count: len(entries),
		Limit: limit,
	})
}

// GameOnboarding handles GET /api/game/{id}/onboarding.
// Returns the seeded pool the player picks their first selections from.
func (h *Handler) GameOnboarding(w http.ResponseWriter, r *http.Request) {
	view, err := h.games.GetOnboarding(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}

	WriteSuccess(w, r, view)
}

// GameOnboardingSubmit handles POST /api/game/{id}/onboarding/submit.
// Accepts the player's picks plus a satisfaction rating and moves the game
// to the ready state.
func (h *Handler) GameOnboardingSubmit(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req OnboardingSubmitRequest
	if err := decodeBody(w, r, &req); err != nil {
		rw.BadRequest("Invalid request body: " + err.Error())
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		rw.ErrorWithDetails(http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	result, err := h.games.SubmitOnboarding(r.Context(), chi.URLParam(r, "id"), req.SelectedProductIDs, req.Rating)
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}

	rw.Success(result)
}

// GameRoundStart handles POST /api/game/{id}/round/start.
// Assembles the next candidate slate; calling it again for an open round
// returns the same slate.
func (h *Handler) GameRoundStart(w http.ResponseWriter, r *http.Request) {
	round, err := h.games.StartRound(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}

	WriteSuccess(w, r, round)
}

// GameRoundPick handles POST /api/game/{id}/round/{round}/pick.
// Resolves a duel round: the model commits its prediction, the pick is
// scored, and the game advances.
func (h *Handler) GameRoundPick(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	roundNumber, err := strconv.Atoi(chi.URLParam(r, "round"))
	if err != nil || roundNumber < 1 {
		rw.BadRequest("Round number must be a positive integer")
		return
	}

	var req RoundPickRequest
	if err := decodeBody(w, r, &req); err != nil {
		rw.BadRequest("Invalid request body: " + err.Error())
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		rw.ErrorWithDetails(http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	result, err := h.games.SubmitPick(r.Context(), chi.URLParam(r, "id"), roundNumber, req.ProductID)
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}

	rw.Success(result)
}

// GameStatus handles GET /api/game/{id}/status.
// Lightweight poll target for game clients.
func (h *Handler) GameStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.games.GameStatus(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}

	WriteSuccess(w, r, status)
}

// GameSummary handles GET /api/game/{id}/summary.
// Post-game debrief with per-round stats, learned preferences, and
// recommendations. Only available for completed games.
func (h *Handler) GameSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.games.Summary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}

	WriteSuccess(w, r, summary)
}
