// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/decidio/duel/internal/catalog"
	"github.com/decidio/duel/internal/core"
	"github.com/decidio/duel/internal/logging"
)

// statusForError maps a domain error kind to its HTTP status and error code.
// Unmatched errors are internal: the detail is logged, never sent.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrValidation), errors.Is(err, catalog.ErrUnsupportedCategory):
		return http.StatusBadRequest, ErrCodeValidationError
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound, ErrCodeNotFound
	case errors.Is(err, core.ErrState):
		return http.StatusBadRequest, ErrCodeStateError
	case errors.Is(err, core.ErrModelNotReady):
		return http.StatusServiceUnavailable, ErrCodeModelNotReady
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ErrCodeInternalError
	default:
		return http.StatusInternalServerError, ErrCodeInternalError
	}
}

// RespondDomainError writes the envelope for an error bubbled up from the
// game orchestrator, the recommender, or the store. Client-caused kinds
// (validation, not-found, state) echo the error text; everything else gets
// a generic message and a log line with the real cause.
func RespondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusForError(err)

	rw := NewResponseWriter(w, r)
	switch code {
	case ErrCodeInternalError:
		logging.CtxErr(r.Context(), err).
			Str("path", r.URL.Path).
			Str("method", r.Method).
			Msg("Request failed")
		rw.Error(status, code, "An internal error occurred")
	case ErrCodeModelNotReady:
		rw.Error(status, code, "Recommendation model is not ready; try again after the catalog is ingested")
	default:
		rw.Error(status, code, err.Error())
	}
}
