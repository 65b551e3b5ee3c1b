// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

package api

import (
	"context"
	"net/http"
	"time"
)

// healthPinger is the slice of the store the probes need.
type healthPinger interface {
	Ping(ctx context.Context) error
}

// pinger returns the store as a pinger when it supports pinging. The
// in-memory store used by tests does not; probes then skip the check.
func (h *Handler) pinger() healthPinger {
	if p, ok := h.store.(healthPinger); ok {
		return p
	}
	return nil
}

// HealthLive handles GET /api/v1/health/live (Kubernetes-style liveness).
// Returns 200 OK if the process is alive, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, map[string]interface{}{
		"alive":   true,
		"version": h.version,
		"uptime":  time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles GET /api/v1/health/ready (Kubernetes-style readiness).
// Ready means the database answers pings. Model readiness is reported but
// does not gate traffic: catalog and game-history endpoints work before the
// first ingest, only scoring endpoints return 503.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	dbConnected := true
	if p := h.pinger(); p != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		dbConnected = p.Ping(ctx) == nil
	}

	modelReady := h.rec.Ready()
	ready := dbConnected

	data := map[string]interface{}{
		"database_connected": dbConnected,
		"model_ready":        modelReady,
		"ready_to_serve":     ready,
		"uptime":             time.Since(h.startTime).Seconds(),
	}

	rw := NewResponseWriter(w, r)
	if !ready {
		rw.ErrorWithDetails(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Service is not ready", data)
		return
	}
	rw.Success(data)
}
