// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// DefaultCategory is used when a request does not name a category.
const DefaultCategory = "fountain_pens"

// ErrUnsupportedCategory is returned when a category name has no registered profile.
var ErrUnsupportedCategory = errors.New("unsupported category")

// CategoryProfile declares how one category maps item attributes to feature
// tokens and numeric dimensions, plus the display copy the frontend shows.
// Profiles are immutable after package init.
type CategoryProfile struct {
	ID                      string
	DisplayName             string
	ItemSingular            string
	ItemPlural              string
	VendorLabel             string
	ModeCaption             string
	OnboardingAction        string
	TopRecommendationsLabel string
	HiddenGemsLabel         string
	HiddenGemsSubtitle      string

	// RedundantTokens are labels the humanizer suppresses because they carry
	// no signal for the player (every item in the category matches them).
	RedundantTokens []string

	CategoricalFields []string
	MultiFields       []string
	NumericFields     []string

	redundant map[string]struct{}
}

// DisplayCopy is the category copy block served to clients.
type DisplayCopy struct {
	ID                      string `json:"id"`
	DisplayName             string `json:"display_name"`
	ItemSingular            string `json:"item_singular"`
	ItemPlural              string `json:"item_plural"`
	VendorLabel             string `json:"vendor_label"`
	ModeCaption             string `json:"mode_caption"`
	OnboardingAction        string `json:"onboarding_action"`
	TopRecommendationsLabel string `json:"top_recommendations_label"`
	HiddenGemsLabel         string `json:"hidden_gems_label"`
	HiddenGemsSubtitle      string `json:"hidden_gems_subtitle"`
}

var profiles = map[string]*CategoryProfile{
	"fountain_pens": {
		ID:                      "fountain_pens",
		DisplayName:             "Fountain Pens",
		ItemSingular:            "pen",
		ItemPlural:              "pens",
		VendorLabel:             "Brand",
		ModeCaption:             "Visual mode prioritizes product imagery. Feature mode emphasizes vendor, price, and tag signals.",
		OnboardingAction:        "Choose 10 pens from a pool of 50 to build your taste profile.",
		TopRecommendationsLabel: "AI's Top 5 Picks for You",
		HiddenGemsLabel:         "Hidden Gems - Patterns You Might Not Have Noticed",
		HiddenGemsSubtitle:      "Pens You Didn't Know You'd Love",
		RedundantTokens: []string{
			"fountain pens",
			"fountain pen",
			"pens",
			"pen",
			"ink",
			"inks",
			"writing",
			"stationery",
			"hideoos",
			"bis-hidden",
			"products",
		},
		CategoricalFields: []string{"vendor", "product_type"},
		MultiFields:       []string{"tags", "options"},
		NumericFields:     []string{"price_min", "price_max"},
	},
	"movies": {
		ID:                      "movies",
		DisplayName:             "Movies",
		ItemSingular:            "movie",
		ItemPlural:              "movies",
		VendorLabel:             "Studio",
		ModeCaption:             "Visual mode prioritizes posters. Feature mode emphasizes genre, studio, runtime, and rating signals.",
		OnboardingAction:        "Choose 10 movies from a pool of 50 to build your taste profile.",
		TopRecommendationsLabel: "AI's Top 5 Movies for You",
		HiddenGemsLabel:         "Hidden Gems - Patterns You Might Not Have Noticed",
		HiddenGemsSubtitle:      "Movies You Didn't Know You'd Love",
		RedundantTokens:         []string{"movie", "movies", "film", "films"},
		CategoricalFields: []string{
			"vendor",
			"primary_country",
			"original_language",
			"certification",
			"decade_bucket",
			"runtime_bucket",
		},
		MultiFields:   []string{"genres", "keywords", "production_companies", "directors"},
		NumericFields: []string{"release_year", "runtime_minutes", "vote_average", "popularity"},
	},
}

func init() {
	for _, p := range profiles {
		p.redundant = make(map[string]struct{}, len(p.RedundantTokens))
		for _, t := range p.RedundantTokens {
			p.redundant[strings.ToLower(t)] = struct{}{}
		}
	}
}

// SupportedCategories lists the registered category identifiers, sorted.
func SupportedCategories() []string {
	out := make([]string, 0, len(profiles))
	for id := range profiles {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// NormalizeCategory maps a request-supplied category name to a registered
// identifier. Empty input defaults to DefaultCategory; anything else must
// match a registered profile after trimming and lowercasing.
func NormalizeCategory(name string) (string, error) {
	if name == "" {
		return DefaultCategory, nil
	}
	normalized := strings.ToLower(strings.TrimSpace(name))
	if _, ok := profiles[normalized]; ok {
		return normalized, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedCategory, name)
}

// ProfileFor returns the profile for a category name, applying the same
// normalization as NormalizeCategory.
func ProfileFor(name string) (*CategoryProfile, error) {
	id, err := NormalizeCategory(name)
	if err != nil {
		return nil, err
	}
	return profiles[id], nil
}

// isRedundant reports whether a humanized label carries no category signal.
func (p *CategoryProfile) isRedundant(label string) bool {
	_, ok := p.redundant[strings.ToLower(label)]
	return ok
}

// DisplayCopy returns the client-facing copy block for this category.
func (p *CategoryProfile) DisplayCopy() DisplayCopy {
	return DisplayCopy{
		ID:                      p.ID,
		DisplayName:             p.DisplayName,
		ItemSingular:            p.ItemSingular,
		ItemPlural:              p.ItemPlural,
		VendorLabel:             p.VendorLabel,
		ModeCaption:             p.ModeCaption,
		OnboardingAction:        p.OnboardingAction,
		TopRecommendationsLabel: p.TopRecommendationsLabel,
		HiddenGemsLabel:         p.HiddenGemsLabel,
		HiddenGemsSubtitle:      p.HiddenGemsSubtitle,
	}
}
