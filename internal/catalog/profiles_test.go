// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

package catalog

import (
	"errors"
	"testing"
)

// TestNormalizeCategory verifies category name normalization and defaulting
func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "empty defaults to pens", input: "", want: "fountain_pens"},
		{name: "exact match", input: "movies", want: "movies"},
		{name: "uppercase", input: "MOVIES", want: "movies"},
		{name: "padded", input: "  fountain_pens  ", want: "fountain_pens"},
		{name: "unknown", input: "books", wantErr: true},
		{name: "whitespace only", input: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeCategory(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NormalizeCategory(%q) = %q, want error", tt.input, got)
				}
				if !errors.Is(err, ErrUnsupportedCategory) {
					t.Errorf("error = %v, want ErrUnsupportedCategory", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeCategory(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeCategory(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestSupportedCategories verifies both shipped profiles are registered
func TestSupportedCategories(t *testing.T) {
	got := SupportedCategories()
	want := []string{"fountain_pens", "movies"}
	if len(got) != len(want) {
		t.Fatalf("SupportedCategories() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SupportedCategories()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

// TestProfileFieldSets verifies the declared field sets per profile
func TestProfileFieldSets(t *testing.T) {
	pens, err := ProfileFor("fountain_pens")
	if err != nil {
		t.Fatalf("ProfileFor(fountain_pens) error = %v", err)
	}
	if len(pens.CategoricalFields) != 2 || pens.CategoricalFields[0] != "vendor" {
		t.Errorf("pens categorical fields = %v", pens.CategoricalFields)
	}
	if len(pens.NumericFields) != 2 {
		t.Errorf("pens numeric fields = %v, want price_min+price_max", pens.NumericFields)
	}

	movies, err := ProfileFor("movies")
	if err != nil {
		t.Fatalf("ProfileFor(movies) error = %v", err)
	}
	if len(movies.CategoricalFields) != 6 {
		t.Errorf("movies categorical fields = %v, want 6", movies.CategoricalFields)
	}
	if len(movies.MultiFields) != 4 {
		t.Errorf("movies multi fields = %v, want 4", movies.MultiFields)
	}
	if len(movies.NumericFields) != 4 {
		t.Errorf("movies numeric fields = %v, want 4", movies.NumericFields)
	}
}

// TestDisplayCopy verifies the copy block round-trips profile values
func TestDisplayCopy(t *testing.T) {
	profile, _ := ProfileFor("movies")
	copyBlock := profile.DisplayCopy()

	if copyBlock.ID != "movies" {
		t.Errorf("ID = %q, want movies", copyBlock.ID)
	}
	if copyBlock.VendorLabel != "Studio" {
		t.Errorf("VendorLabel = %q, want Studio", copyBlock.VendorLabel)
	}
	if copyBlock.ItemSingular != "movie" || copyBlock.ItemPlural != "movies" {
		t.Errorf("item copy = %q/%q", copyBlock.ItemSingular, copyBlock.ItemPlural)
	}
	if copyBlock.OnboardingAction == "" || copyBlock.HiddenGemsSubtitle == "" {
		t.Error("display copy has empty fields")
	}
}

// TestProfileForDefault verifies empty input resolves the default profile
func TestProfileForDefault(t *testing.T) {
	profile, err := ProfileFor("")
	if err != nil {
		t.Fatalf("ProfileFor(\"\") error = %v", err)
	}
	if profile.ID != DefaultCategory {
		t.Errorf("profile.ID = %q, want %q", profile.ID, DefaultCategory)
	}
}

// TestPrimaryImageURL verifies first-image selection
func TestPrimaryImageURL(t *testing.T) {
	noImages := &Item{}
	if got := noImages.PrimaryImageURL(); got != "" {
		t.Errorf("PrimaryImageURL() = %q, want empty", got)
	}

	withImages := &Item{Images: []Image{
		{URL: "https://cdn.example.com/a.jpg", Position: 0},
		{URL: "https://cdn.example.com/b.jpg", Position: 1},
	}}
	if got := withImages.PrimaryImageURL(); got != "https://cdn.example.com/a.jpg" {
		t.Errorf("PrimaryImageURL() = %q, want first image", got)
	}
}
