// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

package catalog

import (
	"strings"
	"unicode"
)

// WeightedFeature pairs a raw feature key with its model weight.
type WeightedFeature struct {
	Key    string
	Weight float64
}

// WeightedLabel pairs a display label with its model weight.
type WeightedLabel struct {
	Label  string  `json:"label"`
	Weight float64 `json:"weight"`
}

// fieldLabels maps raw field names to the noun appended to a humanized value.
var fieldLabels = map[string]string{
	"product_type":         "Type",
	"primary_country":      "Country",
	"original_language":    "Language",
	"certification":        "Rating",
	"decade_bucket":        "Decade",
	"runtime_bucket":       "Runtime",
	"genres":               "Genre",
	"keywords":             "Keyword",
	"production_companies": "Studio",
	"directors":            "Director",
}

func fieldLabel(field string) string {
	if label, ok := fieldLabels[field]; ok {
		return label
	}
	return titleCase(strings.ReplaceAll(field, "_", " "))
}

// titleCase uppercases the first letter of every letter run and lowercases
// the rest, so "science fiction" becomes "Science Fiction" and "TWSBI"
// becomes "Twsbi".
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
		} else {
			b.WriteRune(r)
			prevLetter = false
		}
	}
	return b.String()
}

// HumanizeFeature converts a raw feature key to a display label. The second
// return is false when the key should be hidden: numeric dimensions and
// labels in the profile's redundant set carry no display value.
func HumanizeFeature(raw string) (string, bool) {
	parts := strings.Split(raw, "::")
	if len(parts) < 5 || parts[0] != "cat" {
		return titleCase(raw), true
	}

	profile, err := ProfileFor(parts[1])
	if err != nil {
		return titleCase(raw), true
	}
	kind := parts[2]
	field := parts[3]
	value := strings.Join(parts[4:], "::")

	valueText := titleCase(strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(value, "|", " "), "_", " ")))
	if profile.isRedundant(valueText) {
		return "", false
	}

	switch kind {
	case "cat":
		if field == "vendor" {
			return valueText, true
		}
		label := fieldLabel(field)
		if label == "Type" {
			return valueText, true
		}
		return valueText + " " + label, true

	case "multi":
		if field == "option" {
			if optName, optValue, ok := strings.Cut(value, "|"); ok {
				return titleCase(strings.ReplaceAll(optValue, "_", " ")) + " " + titleCase(strings.ReplaceAll(optName, "_", " ")), true
			}
			return valueText, true
		}
		return valueText, true

	case "num":
		return "", false

	default:
		return valueText, true
	}
}

// HumanizeFeatureList converts (raw key, weight) pairs to display labels,
// dropping hidden keys and deduplicating case-insensitively while keeping
// the input order.
func HumanizeFeatureList(raw []WeightedFeature) []WeightedLabel {
	seen := make(map[string]struct{}, len(raw))
	results := make([]WeightedLabel, 0, len(raw))
	for _, rw := range raw {
		label, ok := HumanizeFeature(rw.Key)
		if !ok || label == "" {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(label))
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		results = append(results, WeightedLabel{Label: label, Weight: rw.Weight})
	}
	return results
}

// NumericPreferenceLabel names the direction of a numeric preference, such
// as "Higher Price Range" for a positive price weight.
func NumericPreferenceLabel(raw string, weight float64) string {
	parts := strings.Split(raw, "::")
	if len(parts) < 4 {
		return "Numeric Preference"
	}
	field := strings.ReplaceAll(parts[3], "_z", "")
	positive := weight >= 0

	switch {
	case strings.HasPrefix(field, "price_"):
		if positive {
			return "Higher Price Range"
		}
		return "Lower Price Range"
	case field == "runtime_minutes":
		if positive {
			return "Longer Runtime"
		}
		return "Shorter Runtime"
	case field == "release_year":
		if positive {
			return "Newer Releases"
		}
		return "Older Releases"
	case field == "vote_average":
		if positive {
			return "Higher Rated Titles"
		}
		return "Lower Rated Titles"
	case field == "popularity":
		if positive {
			return "Popular Titles"
		}
		return "Niche Titles"
	default:
		return titleCase(strings.ReplaceAll(field, "_", " ")) + " Preference"
	}
}
