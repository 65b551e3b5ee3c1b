// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

// HTTP request bodies with go-playground/validator tags. Handlers decode
// into these, run validateRequest, and only then touch the domain layer.
// Structural checks (presence, ranges, id shape) live here; semantic checks
// (pool membership, lifecycle state) stay in the game orchestrator.

package api

// GameStartRequest is the body of POST /api/game/start.
//
// Fields:
//   - PlayerName: display name on the leaderboard (required)
//   - Category: catalog category, defaults to the registry default
//   - TotalRounds: duel length, 0 means the configured default
type GameStartRequest struct {
	PlayerName  string `json:"player_name" validate:"required,min=1,max=64"`
	Category    string `json:"category" validate:"omitempty,max=64"`
	TotalRounds int    `json:"total_rounds" validate:"omitempty,min=1,max=50"`
}

// OnboardingSubmitRequest is the body of POST /api/game/{id}/onboarding/submit.
// The exact pick count is enforced by the orchestrator against the game's
// configuration; here only shape and rating range are checked.
type OnboardingSubmitRequest struct {
	SelectedProductIDs []string `json:"selected_product_ids" validate:"required,min=1,max=50,dive,len=24,hexadecimal"`
	Rating             int      `json:"rating" validate:"required,min=1,max=5"`
}

// RoundPickRequest is the body of POST /api/game/{id}/round/{n}/pick.
type RoundPickRequest struct {
	ProductID string `json:"product_id" validate:"required,len=24,hexadecimal"`
}

// UserCreateRequest is the body of POST /api/users.
type UserCreateRequest struct {
	Name string `json:"name" validate:"required,min=1,max=128"`
}

// SessionCreateRequest is the body of POST /api/sessions.
type SessionCreateRequest struct {
	UserID string `json:"user_id" validate:"required,len=24,hexadecimal"`
}

// SessionSelectRequest is the body of POST /api/sessions/{id}/select.
type SessionSelectRequest struct {
	ProductID   string `json:"product_id" validate:"required,len=24,hexadecimal"`
	IsException bool   `json:"is_exception"`
}

// SessionRateRequest is the body of POST /api/sessions/{id}/rate.
type SessionRateRequest struct {
	Rating int      `json:"rating" validate:"required,min=1,max=5"`
	Tags   []string `json:"tags" validate:"omitempty,max=20,dive,min=1,max=64"`
}

// ProductsListRequest holds the validated query parameters of
// GET /api/products.
type ProductsListRequest struct {
	Category string `validate:"omitempty,max=64"`
	Limit    int    `validate:"min=1,max=500"`
	Offset   int    `validate:"min=0,max=1000000"`
}
