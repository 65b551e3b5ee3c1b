// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/decidio/duel/internal/catalog"
)

// ProductsList handles GET /api/products.
// Pages through the catalog, optionally filtered to one category. Unknown
// categories are a validation error, not an empty result, so clients catch
// typos immediately.
func (h *Handler) ProductsList(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req := ProductsListRequest{
		Category: r.URL.Query().Get("category"),
		Limit:    getIntParam(r, "limit", h.config.API.DefaultPageSize),
		Offset:   getIntParam(r, "offset", 0),
	}
	req.Limit = clampLimit(req.Limit, h.config.API.DefaultPageSize, h.config.API.MaxPageSize)
	if apiErr := validateRequest(&req); apiErr != nil {
		rw.ErrorWithDetails(http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	category := ""
	if req.Category != "" {
		normalized, err := catalog.NormalizeCategory(req.Category)
		if err != nil {
			RespondDomainError(w, r, err)
			return
		}
		category = normalized
	}

	items, err := h.store.ListProducts(r.Context(), category, req.Limit, req.Offset)
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}
	total, err := h.store.CountProducts(r.Context(), category)
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}

	rw.SuccessWithPagination(items, &PaginationMeta{
		Total:   total,
		Count:   len(items),
		Offset:  req.Offset,
		Limit:   req.Limit,
		HasMore: int64(req.Offset+len(items)) < total,
	})
}

// ProductGet handles GET /api/products/{id}.
func (h *Handler) ProductGet(w http.ResponseWriter, r *http.Request) {
	item, err := h.store.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}

	WriteSuccess(w, r, item)
}
