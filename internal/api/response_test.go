// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
)

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("unmarshal envelope: %v\nbody: %s", err, rr.Body.String())
	}
	return env
}

func TestSuccessEnvelope(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/things", nil)
	rr := httptest.NewRecorder()

	NewResponseWriter(rr, req).Success(map[string]string{"hello": "world"})

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}

	env := decodeEnvelope(t, rr)
	if !env.Success {
		t.Errorf("Success = false, want true")
	}
	if env.Error != nil {
		t.Errorf("Error = %+v, want nil", env.Error)
	}
	if env.Meta == nil || env.Meta.Timestamp.IsZero() {
		t.Errorf("Meta missing or has zero timestamp: %+v", env.Meta)
	}

	var data map[string]string
	decodeData(t, env, &data)
	if data["hello"] != "world" {
		t.Errorf("data = %v, want hello=world", data)
	}
}

func TestCreatedEnvelope(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/things", nil)
	rr := httptest.NewRecorder()

	NewResponseWriter(rr, req).Created(map[string]int{"id": 7})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusCreated)
	}
	env := decodeEnvelope(t, rr)
	if !env.Success {
		t.Errorf("Success = false, want true")
	}
}

func TestErrorEnvelope(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/things", nil)
	rr := httptest.NewRecorder()

	details := map[string]string{"rating": "must be between 1 and 5"}
	NewResponseWriter(rr, req).ErrorWithDetails(http.StatusBadRequest, ErrCodeValidationError, "Validation failed", details)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}

	env := decodeEnvelope(t, rr)
	if env.Success {
		t.Errorf("Success = true, want false")
	}
	if len(env.Data) != 0 {
		t.Errorf("Data = %s, want empty", env.Data)
	}
	if env.Error == nil {
		t.Fatalf("Error = nil")
	}
	if env.Error.Code != ErrCodeValidationError {
		t.Errorf("Error.Code = %s, want %s", env.Error.Code, ErrCodeValidationError)
	}
	if env.Error.Message != "Validation failed" {
		t.Errorf("Error.Message = %q", env.Error.Message)
	}
	if env.Error.Details == nil {
		t.Errorf("Error.Details = nil, want the field map")
	}
}

func TestPaginationEnvelope(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/things", nil)
	rr := httptest.NewRecorder()

	NewResponseWriter(rr, req).SuccessWithPagination([]int{1, 2, 3}, &PaginationMeta{
		Total:   10,
		Count:   3,
		Offset:  0,
		Limit:   3,
		HasMore: true,
	})

	env := decodeEnvelope(t, rr)
	if env.Meta == nil || env.Meta.Pagination == nil {
		t.Fatalf("Meta.Pagination = nil")
	}

	p := env.Meta.Pagination
	if p.Total != 10 || p.Count != 3 || p.Limit != 3 || !p.HasMore {
		t.Errorf("Pagination = %+v, want total 10, count 3, limit 3, has_more", p)
	}
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"zero falls back to default", 0, 20},
		{"negative falls back to default", -5, 20},
		{"in range passes through", 50, 50},
		{"above max is capped", 500, 100},
		{"max passes through", 100, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := clampLimit(tt.limit, 20, 100); got != tt.want {
				t.Errorf("clampLimit(%d, 20, 100) = %d, want %d", tt.limit, got, tt.want)
			}
		})
	}
}

func TestGetIntParam(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want int
	}{
		{"present", "/things?limit=25", 25},
		{"missing", "/things", 42},
		{"not a number", "/things?limit=many", 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			if got := getIntParam(req, "limit", 42); got != tt.want {
				t.Errorf("getIntParam(%q) = %d, want %d", tt.url, got, tt.want)
			}
		})
	}
}
