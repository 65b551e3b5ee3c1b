// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

package game

import (
	"strings"
	"testing"

	"github.com/decidio/duel/internal/recommend/pcf"
	"github.com/decidio/duel/internal/testinfra"
)

func TestTasteDims(t *testing.T) {
	keys := []string{
		"cat::fountain_pens::cat::vendor::pelikan",
		"cat::fountain_pens::cat::vendor::sailor",
		"cat::fountain_pens::multi::tags::demonstrator",
		"cat::fountain_pens::multi::tags::pocket",
		"cat::fountain_pens::num::price_min_z",
		"cat::fountain_pens::num::price_max_z",
	}
	st := &pcf.State{UserVec: []float64{0.9, -0.4, 0.3, 0.01, 0.6, -0.2}}

	likes, dislikes := tasteDims(st, keys, 0.05, 4)

	wantLikes := map[string]bool{"Pelikan": false, "Demonstrator": false, "Higher Price Range": false}
	for _, l := range likes {
		if _, ok := wantLikes[l]; !ok {
			t.Errorf("unexpected like %q", l)
			continue
		}
		wantLikes[l] = true
	}
	for label, seen := range wantLikes {
		if !seen {
			t.Errorf("like %q missing from %v", label, likes)
		}
	}

	if len(dislikes) != 1 || dislikes[0] != "Sailor" {
		t.Errorf("dislikes = %v, want [Sailor]", dislikes)
	}
	// The weak tag and the smaller price bound stay hidden.
	for _, l := range append(likes, dislikes...) {
		if l == "Pocket" || l == "Lower Price Range" {
			t.Errorf("below-floor dimension %q surfaced", l)
		}
	}

	// Ordering follows weight magnitude.
	if len(likes) > 0 && likes[0] != "Pelikan" {
		t.Errorf("likes[0] = %q, want strongest dimension Pelikan", likes[0])
	}
}

func TestTasteDimsNilState(t *testing.T) {
	likes, dislikes := tasteDims(nil, []string{"cat::fountain_pens::cat::vendor::pelikan"}, 0.05, 4)
	if likes != nil || dislikes != nil {
		t.Errorf("tasteDims(nil) = %v/%v, want nil/nil", likes, dislikes)
	}
}

func TestIsPriceKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"cat::fountain_pens::num::price_min_z", true},
		{"cat::fountain_pens::num::price_max_z", true},
		{"cat::movies::num::runtime_minutes_z", false},
		{"cat::fountain_pens::cat::vendor::pelikan", false},
		{"garbage", false},
	}
	for _, tt := range tests {
		if got := isPriceKey(tt.key); got != tt.want {
			t.Errorf("isPriceKey(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestSharedFeatures(t *testing.T) {
	a := testinfra.Pen(0)
	b := testinfra.Pen(5)
	// Same vendor cycle position and overlapping tag cycle.
	if a.Vendor != b.Vendor {
		t.Fatalf("fixture drift: pens 0 and 5 should share a vendor, got %q vs %q", a.Vendor, b.Vendor)
	}

	shared := sharedFeatures(a, b, "fountain_pens")
	if len(shared) == 0 {
		t.Fatal("sharedFeatures() = empty for items sharing vendor and options")
	}
	foundVendor := false
	for _, label := range shared {
		if label == a.Vendor {
			foundVendor = true
		}
	}
	if !foundVendor {
		t.Errorf("shared features %v missing the common vendor %q", shared, a.Vendor)
	}

	if got := sharedFeatures(nil, b, "fountain_pens"); got != nil {
		t.Errorf("sharedFeatures(nil, b) = %v, want nil", got)
	}
	if got := sharedFeatures(a, b, "unknown"); got != nil {
		t.Errorf("sharedFeatures() with unknown category = %v, want nil", got)
	}
}

func TestNarrative(t *testing.T) {
	tests := []struct {
		name   string
		labels []string
		want   string
	}{
		{
			name:   "no labels",
			labels: nil,
			want:   "No hidden patterns stood out; your picks say what they mean.",
		},
		{
			name:   "one label",
			labels: []string{"Pelikan"},
			want:   "Your picks hint at an unspoken pull toward Pelikan.",
		},
		{
			name:   "two labels",
			labels: []string{"Pelikan", "Demonstrator"},
			want:   "Your picks hint at an unspoken pull toward Pelikan and Demonstrator.",
		},
		{
			name:   "three labels",
			labels: []string{"Pelikan", "Demonstrator", "Italic"},
			want:   "Your picks hint at an unspoken pull toward Pelikan, Demonstrator, and Italic.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := narrative(tt.labels); got != tt.want {
				t.Errorf("narrative(%v) = %q, want %q", tt.labels, got, tt.want)
			}
		})
	}

	// More than three labels truncate to three.
	long := narrative([]string{"A", "B", "C", "D"})
	if strings.Contains(long, "D") {
		t.Errorf("narrative with four labels mentions the fourth: %q", long)
	}
}

func TestHumanizeHidden(t *testing.T) {
	prefs := []pcf.HiddenPreference{
		{Feature: "cat::fountain_pens::cat::vendor::pelikan"},
		{Feature: "cat::fountain_pens::num::price_min_z"},
		{Feature: "cat::fountain_pens::multi::tags::italic"},
	}
	labels := humanizeHidden(prefs)
	want := []string{"Pelikan", "Italic"}
	if len(labels) != len(want) {
		t.Fatalf("humanizeHidden() = %v, want %v (numeric hidden)", labels, want)
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("labels[%d] = %q, want %q", i, labels[i], want[i])
		}
	}
}
