// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAPISecurityHeaders(t *testing.T) {
	h := APISecurityHeaders()(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	headers := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
	}
	for name, want := range headers {
		if got := rr.Header().Get(name); got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
	if got := rr.Header().Get("Strict-Transport-Security"); got != "" {
		t.Errorf("Strict-Transport-Security = %q on plain HTTP, want unset", got)
	}
}

func TestAPISecurityHeadersHSTSBehindTLSProxy(t *testing.T) {
	h := APISecurityHeaders()(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get("Strict-Transport-Security"); got == "" {
		t.Errorf("Strict-Transport-Security unset behind TLS proxy")
	}
}

func TestRequestIDGenerated(t *testing.T) {
	ts := newTestServer(t, 5)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil)
	rr := httptest.NewRecorder()
	ts.router.ServeHTTP(rr, req)

	id := rr.Header().Get("X-Request-ID")
	if id == "" {
		t.Fatalf("X-Request-ID header not set")
	}

	env := decodeEnvelope(t, rr)
	if env.Meta == nil || env.Meta.RequestID != id {
		t.Errorf("Meta.RequestID = %+v, want %q", env.Meta, id)
	}
}

func TestRequestIDEchoed(t *testing.T) {
	ts := newTestServer(t, 5)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil)
	req.Header.Set("X-Request-ID", "duel-test-7")
	rr := httptest.NewRecorder()
	ts.router.ServeHTTP(rr, req)

	if got := rr.Header().Get("X-Request-ID"); got != "duel-test-7" {
		t.Errorf("X-Request-ID = %q, want the caller's id echoed", got)
	}

	env := decodeEnvelope(t, rr)
	if env.Meta == nil || env.Meta.RequestID != "duel-test-7" {
		t.Errorf("Meta.RequestID = %+v, want duel-test-7", env.Meta)
	}
}

func TestRateLimitRejectsOverBudget(t *testing.T) {
	mw := NewChiMiddleware(&ChiMiddlewareConfig{
		RateLimitRequests: 3,
		RateLimitWindow:   time.Minute,
	})
	h := mw.RateLimit()(okHandler())

	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/products", nil))
		if rr.Code != http.StatusNoContent {
			t.Fatalf("request %d status = %d, want %d", i+1, rr.Code, http.StatusNoContent)
		}
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/products", nil))
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusTooManyRequests)
	}

	env := decodeEnvelope(t, rr)
	if env.Error == nil || env.Error.Code != ErrCodeTooManyRequests {
		t.Errorf("Error = %+v, want code %s", env.Error, ErrCodeTooManyRequests)
	}
}

func TestRateLimitDisabledPassesEverything(t *testing.T) {
	mw := NewChiMiddleware(&ChiMiddlewareConfig{
		RateLimitRequests: 1,
		RateLimitWindow:   time.Minute,
		RateLimitDisabled: true,
	})
	h := mw.RateLimitWrite()(okHandler())

	for i := 0; i < 10; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/users", nil))
		if rr.Code != http.StatusNoContent {
			t.Fatalf("request %d status = %d, want %d", i+1, rr.Code, http.StatusNoContent)
		}
	}
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	mw := NewChiMiddlewareFromSecurity([]string{"https://app.example.com"}, 100, time.Minute, true)
	h := mw.CORS()(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q, want the configured origin", got)
	}
}

func TestCORSRejectsUnknownOrigin(t *testing.T) {
	mw := NewChiMiddlewareFromSecurity([]string{"https://app.example.com"}, 100, time.Minute, true)
	h := mw.CORS()(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Access-Control-Allow-Origin = %q for unknown origin, want unset", got)
	}
}
