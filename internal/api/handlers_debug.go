// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

package api

import (
	"net/http"
)

// DebugPBCF handles GET /api/debug/pbcf.
// Reports prefix-model readiness: catalog size, feature dimension, rating
// count, and the trained factorization's shape. Used to verify training
// picked up new ratings without tailing logs.
func (h *Handler) DebugPBCF(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, h.rec.Stats())
}
