// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

// Package api provides the HTTP surface of the service: the Chi router,
// middleware factories, and the handlers for the game, learning, and
// health endpoints.
//
// All responses share one envelope (see response.go):
//
//	{
//	  "success": true,
//	  "data": { ... },
//	  "error": {"code": "...", "message": "...", "details": ...},
//	  "meta": {"request_id": "...", "timestamp": "...", "duration_ms": 3}
//	}
//
// Handlers decode request bodies with goccy/go-json, validate DTOs with
// go-playground/validator (internal/validation), call into the game
// orchestrator or the recommender, and map domain error kinds to HTTP
// statuses via RespondDomainError. Handler files:
//
//   - handlers.go: Handler struct, constructor, shared helpers
//   - handlers_game.go: duel game endpoints (/api/game/...)
//   - handlers_catalog.go: product catalog endpoints (/api/products...)
//   - handlers_sessions.go: users, sessions, recommendations
//   - handlers_debug.go: model introspection (/api/debug/...)
//   - handlers_health.go: liveness and readiness probes
package api
