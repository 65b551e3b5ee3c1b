// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

package mongo

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	driver "go.mongodb.org/mongo-driver/mongo"

	"github.com/decidio/duel/internal/core"
)

func TestParseID(t *testing.T) {
	valid := primitive.NewObjectID()

	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{name: "valid hex", id: valid.Hex(), wantErr: false},
		{name: "empty", id: "", wantErr: true},
		{name: "short", id: "abc123", wantErr: true},
		{name: "non-hex characters", id: "zzzzzzzzzzzzzzzzzzzzzzzz", wantErr: true},
		{name: "right length wrong alphabet", id: "0123456789abcdef0123456g", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oid, err := parseID(tt.id)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseID(%q) error = nil, want validation error", tt.id)
				}
				if !errors.Is(err, core.ErrValidation) {
					t.Errorf("parseID(%q) error = %v, want core.ErrValidation", tt.id, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseID(%q) unexpected error: %v", tt.id, err)
			}
			if oid != valid {
				t.Errorf("parseID(%q) = %v, want %v", tt.id, oid, valid)
			}
		})
	}
}

func TestNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "driver sentinel", err: driver.ErrNoDocuments, want: true},
		{name: "wrapped sentinel", err: errors.Join(errors.New("outer"), driver.ErrNoDocuments), want: true},
		{name: "other error", err: errors.New("boom"), want: false},
		{name: "nil", err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := notFound(tt.err); got != tt.want {
				t.Errorf("notFound(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
