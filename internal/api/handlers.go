// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/decidio/duel/internal/config"
	"github.com/decidio/duel/internal/game"
	"github.com/decidio/duel/internal/recommend"
	"github.com/decidio/duel/internal/store"
	"github.com/decidio/duel/internal/validation"
)

// maxRequestBody caps request bodies; the largest legitimate payload is a
// few hundred bytes of onboarding ids.
const maxRequestBody = 1 << 20 // 1 MiB

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files by concern:
//   - handlers.go: Handler struct, constructor, shared helpers (this file)
//   - handlers_game.go: duel game endpoints (9 methods)
//   - handlers_catalog.go: product catalog endpoints (2 methods)
//   - handlers_sessions.go: user, session, and recommendation endpoints (7 methods)
//   - handlers_debug.go: model introspection endpoints (1 method)
//   - handlers_health.go: liveness and readiness probes (2 methods)
type Handler struct {
	store     store.Store
	rec       *recommend.Engine
	games     *game.Service
	config    *config.Config
	startTime time.Time
	version   string
}

// NewHandler creates a new API handler with all required dependencies.
//
// Dependencies:
//   - st: persistence for catalog, users, sessions, and games
//   - rec: recommender facade (feature space, online and prefix models)
//   - games: duel game orchestrator
//   - cfg: application configuration
func NewHandler(st store.Store, rec *recommend.Engine, games *game.Service, cfg *config.Config, version string) *Handler {
	return &Handler{
		store:     st,
		rec:       rec,
		games:     games,
		config:    cfg,
		startTime: time.Now(),
		version:   version,
	}
}

// decodeBody decodes a JSON request body into dst. The body is size-capped
// and unknown fields are rejected so typos fail loudly instead of silently
// defaulting.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return err
	}
	return nil
}

// validateRequest validates a struct using go-playground/validator.
// Returns nil if validation passes, or an *APIError with the
// VALIDATION_ERROR code if validation fails.
func validateRequest(v interface{}) *APIError {
	validationErr := validation.ValidateStruct(v)
	if validationErr == nil {
		return nil
	}

	apiErr := validationErr.ToAPIError()
	return &APIError{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	}
}

// getIntParam extracts an integer query parameter with a default value.
func getIntParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

// clampLimit bounds a caller-supplied limit to [1, max], substituting def
// when the caller sent nothing useful.
func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
