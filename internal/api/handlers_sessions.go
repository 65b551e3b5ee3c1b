// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// UserCreate handles POST /api/users.
func (h *Handler) UserCreate(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req UserCreateRequest
	if err := decodeBody(w, r, &req); err != nil {
		rw.BadRequest("Invalid request body: " + err.Error())
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		rw.ErrorWithDetails(http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	user, err := h.store.CreateUser(r.Context(), req.Name)
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}

	rw.Created(user)
}

// UserGet handles GET /api/users/{id}.
func (h *Handler) UserGet(w http.ResponseWriter, r *http.Request) {
	user, err := h.store.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}

	WriteSuccess(w, r, user)
}

// SessionCreate handles POST /api/sessions.
// Starts a learning session with a fresh model state sized to the current
// feature space.
func (h *Handler) SessionCreate(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req SessionCreateRequest
	if err := decodeBody(w, r, &req); err != nil {
		rw.BadRequest("Invalid request body: " + err.Error())
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		rw.ErrorWithDetails(http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	// The user must exist before a session hangs off it.
	if _, err := h.store.GetUser(r.Context(), req.UserID); err != nil {
		RespondDomainError(w, r, err)
		return
	}

	state, err := h.rec.InitStateBlob()
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}

	session, err := h.store.CreateSession(r.Context(), req.UserID, state)
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}

	rw.Created(session)
}

// SessionSelect handles POST /api/sessions/{id}/select.
// Records an item choice and folds it into the session's model state.
func (h *Handler) SessionSelect(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req SessionSelectRequest
	if err := decodeBody(w, r, &req); err != nil {
		rw.BadRequest("Invalid request body: " + err.Error())
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		rw.ErrorWithDetails(http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	m, err := h.rec.SelectItem(r.Context(), chi.URLParam(r, "id"), req.ProductID, req.IsException)
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}

	rw.Success(m)
}

// SessionRate handles POST /api/sessions/{id}/rate.
// Records a 1-5 satisfaction rating for the selection sequence so far.
func (h *Handler) SessionRate(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req SessionRateRequest
	if err := decodeBody(w, r, &req); err != nil {
		rw.BadRequest("Invalid request body: " + err.Error())
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		rw.ErrorWithDetails(http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	m, err := h.rec.RateSession(r.Context(), chi.URLParam(r, "id"), req.Rating, req.Tags)
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}

	rw.Success(m)
}

// SessionRecommendations handles GET /api/sessions/{id}/recommendations.
// Strong picks plus one wildcard from the bottom tail.
func (h *Handler) SessionRecommendations(w http.ResponseWriter, r *http.Request) {
	limit := clampLimit(getIntParam(r, "limit", 0), 0, 50)

	rec, err := h.rec.Recommend(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}

	WriteSuccess(w, r, rec)
}

// SessionProfile handles GET /api/sessions/{id}/profile.
// The learned taste profile: hidden preferences and the items they point at.
func (h *Handler) SessionProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.rec.SessionProfile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}

	WriteSuccess(w, r, profile)
}
