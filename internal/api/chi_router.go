// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router wires handlers and middleware into the HTTP surface.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router from a handler and a middleware factory.
// A nil middleware factory gets the secure defaults.
func NewRouter(handler *Handler, chiMw *ChiMiddleware) *Router {
	if chiMw == nil {
		chiMw = NewChiMiddleware(nil)
	}
	return &Router{
		handler:       handler,
		chiMiddleware: chiMw,
	}
}

// SetupChi configures all HTTP routes using the Chi router.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	// Applied to ALL routes in order
	r.Use(RequestIDWithLogging())      // X-Request-ID header plus logging context
	r.Use(chimiddleware.RealIP)        // Extract real IP from X-Forwarded-For
	r.Use(chimiddleware.Recoverer)     // Recover from panics
	r.Use(router.chiMiddleware.CORS()) // CORS must be global to handle OPTIONS preflight

	// ========================
	// Health Endpoints
	// ========================
	// Permissive rate limiting so monitors can poll frequently
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// ========================
	// Game Endpoints
	// ========================
	// Burst-friendly rate limiting: a duel round is several quick calls
	r.Route("/api/game", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitGame())
		r.Use(APISecurityHeaders())
		r.Use(PrometheusMetrics())

		r.Post("/start", router.handler.GameStart)
		r.Get("/leaderboard", router.handler.GameLeaderboard)
		r.Get("/player/{name}/history", router.handler.GamePlayerHistory)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/onboarding", router.handler.GameOnboarding)
			r.Post("/onboarding/submit", router.handler.GameOnboardingSubmit)
			r.Post("/round/start", router.handler.GameRoundStart)
			r.Post("/round/{round}/pick", router.handler.GameRoundPick)
			r.Get("/status", router.handler.GameStatus)
			r.Get("/summary", router.handler.GameSummary)
		})
	})

	// ========================
	// Learning API Endpoints
	// ========================
	// Catalog reads plus the session-based taste-learning surface
	r.Route("/api", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(PrometheusMetrics())

		r.Get("/products", router.handler.ProductsList)
		r.Get("/products/{id}", router.handler.ProductGet)

		r.Post("/users", router.handler.UserCreate)
		r.Get("/users/{id}", router.handler.UserGet)

		r.Post("/sessions", router.handler.SessionCreate)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Post("/select", router.handler.SessionSelect)
			r.Post("/rate", router.handler.SessionRate)
			r.Get("/recommendations", router.handler.SessionRecommendations)
			r.Get("/profile", router.handler.SessionProfile)
		})

		// Model introspection; write-tier limits keep scrapers off it
		r.With(router.chiMiddleware.RateLimitWrite()).
			Get("/debug/pbcf", router.handler.DebugPBCF)
	})

	// ========================
	// Prometheus Metrics
	// ========================
	r.Handle("/metrics", promhttp.Handler())

	return r
}
