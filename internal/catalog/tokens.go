// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// Slugify normalizes a raw attribute value for use inside a feature key:
// trim, lowercase, "/" becomes a space, "&" becomes " and ", runs of spaces
// collapse to one. Returns empty for empty input.
func Slugify(value string) string {
	text := strings.ToLower(strings.TrimSpace(value))
	text = strings.ReplaceAll(text, "/", " ")
	text = strings.ReplaceAll(text, "&", " and ")
	for strings.Contains(text, "  ") {
		text = strings.ReplaceAll(text, "  ", " ")
	}
	return text
}

// IsNumericFeatureKey reports whether a raw feature key addresses a numeric
// dimension rather than a token dimension.
func IsNumericFeatureKey(raw string) bool {
	return strings.Contains(raw, "::num::")
}

// ExtractFeatures maps an item to its feature tokens and raw numeric values
// under the given profile. Categorical fields emit zero or one token each,
// multi-valued fields one token per element, and the options map one token
// per (option, value) pair. Numeric fields that are absent or non-numeric
// are silently skipped.
func ExtractFeatures(p *CategoryProfile, it *Item) ([]string, map[string]float64) {
	tokens := make([]string, 0, 16)
	numeric := make(map[string]float64, len(p.NumericFields))

	for _, field := range p.CategoricalFields {
		slug := Slugify(it.categoricalValue(field))
		if slug != "" {
			tokens = append(tokens, fmt.Sprintf("cat::%s::cat::%s::%s", p.ID, field, slug))
		}
	}

	for _, field := range p.MultiFields {
		if field == "options" {
			// Sorted option names keep token emission order, and therefore
			// feature index assignment, deterministic across process restarts.
			optNames := make([]string, 0, len(it.Options))
			for optName := range it.Options {
				optNames = append(optNames, optName)
			}
			sort.Strings(optNames)
			for _, optName := range optNames {
				optSlug := Slugify(optName)
				if optSlug == "" {
					continue
				}
				for _, optValue := range it.Options[optName] {
					valueSlug := Slugify(optValue)
					if valueSlug != "" {
						tokens = append(tokens, fmt.Sprintf("cat::%s::multi::option::%s|%s", p.ID, optSlug, valueSlug))
					}
				}
			}
			continue
		}

		for _, v := range it.multiValues(field) {
			slug := Slugify(v)
			if slug != "" {
				tokens = append(tokens, fmt.Sprintf("cat::%s::multi::%s::%s", p.ID, field, slug))
			}
		}
	}

	for _, field := range p.NumericFields {
		if v, ok := it.numericValue(field); ok {
			numeric[fmt.Sprintf("cat::%s::num::%s_z", p.ID, field)] = v
		}
	}

	return tokens, numeric
}
