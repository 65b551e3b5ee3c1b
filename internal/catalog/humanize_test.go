// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

package catalog

import (
	"testing"
)

// TestHumanizeFeature verifies display label generation per key kind
func TestHumanizeFeature(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		visible bool
	}{
		{
			name:    "director keeps bare name",
			raw:     "cat::movies::multi::directors::christopher nolan",
			want:    "Christopher Nolan",
			visible: true,
		},
		{
			name:    "vendor keeps bare name",
			raw:     "cat::fountain_pens::cat::vendor::twsbi",
			want:    "Twsbi",
			visible: true,
		},
		{
			name:    "genre keeps bare value",
			raw:     "cat::movies::multi::genres::science fiction",
			want:    "Science Fiction",
			visible: true,
		},
		{
			name:    "categorical field appends label",
			raw:     "cat::movies::cat::original_language::en",
			want:    "En Language",
			visible: true,
		},
		{
			name:    "certification appends rating label",
			raw:     "cat::movies::cat::certification::pg-13",
			want:    "Pg-13 Rating",
			visible: true,
		},
		{
			name:    "option swaps value before name",
			raw:     "cat::fountain_pens::multi::option::nib size|fine",
			want:    "Fine Nib Size",
			visible: true,
		},
		{
			name:    "product type stays bare",
			raw:     "cat::fountain_pens::cat::product_type::rollerball pens",
			want:    "Rollerball Pens",
			visible: true,
		},
		{
			name:    "redundant pen token hidden",
			raw:     "cat::fountain_pens::multi::tags::fountain pen",
			visible: false,
		},
		{
			name:    "redundant movie token hidden",
			raw:     "cat::movies::multi::keywords::film",
			visible: false,
		},
		{
			name:    "numeric key hidden",
			raw:     "cat::movies::num::popularity_z",
			visible: false,
		},
		{
			name:    "malformed key title-cased",
			raw:     "just a plain string",
			want:    "Just A Plain String",
			visible: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, visible := HumanizeFeature(tt.raw)
			if visible != tt.visible {
				t.Fatalf("HumanizeFeature(%q) visible = %v, want %v", tt.raw, visible, tt.visible)
			}
			if visible && got != tt.want {
				t.Errorf("HumanizeFeature(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

// TestHumanizeFeatureList verifies ordering, hiding, and dedupe
func TestHumanizeFeatureList(t *testing.T) {
	raw := []WeightedFeature{
		{Key: "cat::movies::multi::genres::drama", Weight: 0.9},
		{Key: "cat::movies::num::popularity_z", Weight: 0.8},
		{Key: "cat::movies::multi::keywords::drama", Weight: 0.7},
		{Key: "cat::movies::multi::directors::bong joon ho", Weight: 0.6},
		{Key: "cat::movies::multi::keywords::film", Weight: 0.5},
	}

	got := HumanizeFeatureList(raw)

	want := []WeightedLabel{
		{Label: "Drama", Weight: 0.9},
		{Label: "Bong Joon Ho", Weight: 0.6},
	}
	if len(got) != len(want) {
		t.Fatalf("HumanizeFeatureList = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("result[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

// TestNumericPreferenceLabel verifies direction naming per numeric field
func TestNumericPreferenceLabel(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		weight float64
		want   string
	}{
		{name: "price up", raw: "cat::fountain_pens::num::price_min_z", weight: 0.4, want: "Higher Price Range"},
		{name: "price down", raw: "cat::fountain_pens::num::price_max_z", weight: -0.4, want: "Lower Price Range"},
		{name: "runtime up", raw: "cat::movies::num::runtime_minutes_z", weight: 0.2, want: "Longer Runtime"},
		{name: "runtime down", raw: "cat::movies::num::runtime_minutes_z", weight: -0.2, want: "Shorter Runtime"},
		{name: "year up", raw: "cat::movies::num::release_year_z", weight: 0.1, want: "Newer Releases"},
		{name: "year down", raw: "cat::movies::num::release_year_z", weight: -0.1, want: "Older Releases"},
		{name: "votes up", raw: "cat::movies::num::vote_average_z", weight: 1, want: "Higher Rated Titles"},
		{name: "popularity down", raw: "cat::movies::num::popularity_z", weight: -1, want: "Niche Titles"},
		{name: "zero counts as positive", raw: "cat::movies::num::popularity_z", weight: 0, want: "Popular Titles"},
		{name: "unknown field", raw: "cat::x::num::weird_field_z", weight: 1, want: "Weird Field Preference"},
		{name: "malformed key", raw: "nonsense", weight: 1, want: "Numeric Preference"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NumericPreferenceLabel(tt.raw, tt.weight); got != tt.want {
				t.Errorf("NumericPreferenceLabel(%q, %v) = %q, want %q", tt.raw, tt.weight, got, tt.want)
			}
		})
	}
}

// TestTitleCase verifies the casing helper matches display expectations
func TestTitleCase(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"science fiction", "Science Fiction"},
		{"TWSBI", "Twsbi"},
		{"pg-13", "Pg-13"},
		{"2010s", "2010S"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := titleCase(tt.input); got != tt.want {
			t.Errorf("titleCase(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
