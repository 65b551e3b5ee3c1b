// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

package game

import (
	"math"
	"sort"
	"strings"

	"github.com/decidio/duel/internal/catalog"
	"github.com/decidio/duel/internal/recommend/pcf"
	"github.com/decidio/duel/internal/store"
)

const (
	// tasteWeightFloor is the minimum absolute profile weight a dimension
	// needs before it is worth showing to the player.
	tasteWeightFloor = 0.05

	// roundTasteLimit and summaryTasteLimit cap the likes/dislikes lists;
	// the summary takes the wider cut.
	roundTasteLimit   = 4
	summaryTasteLimit = 8

	sharedFeatureLimit = 8
	hiddenTopN         = 5
)

// aiReason is the one-line rationale attached to every round resolution.
const aiReason = "AI selected the highest-scoring candidate under the current sequential preference state."

// explainRound assembles the model's side of the story for one resolved
// round: what it likes and dislikes so far, what the two picks had in
// common, and the hidden preferences it thinks it has spotted.
func (s *Service) explainRound(
	state *pcf.State,
	selectedIDs []string,
	humanItem, aiItem *catalog.Item,
	scored []store.ScoredID,
	byID map[string]*catalog.Item,
	category string,
) Explanation {
	likes, dislikes := tasteDims(state, s.rec.FeatureKeys(), tasteWeightFloor, roundTasteLimit)
	hidden := humanizeHidden(s.rec.HiddenPreferencesForState(state, selectedIDs, hiddenTopN))
	return Explanation{
		Reason:            aiReason,
		Likes:             likes,
		Dislikes:          dislikes,
		SharedFeatures:    sharedFeatures(humanItem, aiItem, category),
		HiddenPreferences: hidden,
		TopCandidates:     scoredCards(scored[:min(3, len(scored))], byID),
	}
}

// tasteDims extracts the strongest positive and negative profile dimensions
// as display labels. Numeric dimensions are hidden except price, which
// collapses into one direction label carried by whichever price bound has
// the larger magnitude. Labels deduplicate keeping the stronger weight.
func tasteDims(st *pcf.State, keys []string, floor float64, topN int) (likes, dislikes []string) {
	if st == nil {
		return nil, nil
	}

	type dim struct {
		label  string
		weight float64
	}
	dims := make([]dim, 0, 16)

	var priceKey string
	var priceWeight float64
	n := min(len(keys), len(st.UserVec))
	for i := 0; i < n; i++ {
		w := st.UserVec[i]
		key := keys[i]
		if catalog.IsNumericFeatureKey(key) {
			if isPriceKey(key) && math.Abs(w) > math.Abs(priceWeight) {
				priceKey, priceWeight = key, w
			}
			continue
		}
		if math.Abs(w) <= floor {
			continue
		}
		label, ok := catalog.HumanizeFeature(key)
		if !ok || label == "" {
			continue
		}
		dims = append(dims, dim{label: label, weight: w})
	}
	if priceKey != "" && math.Abs(priceWeight) > floor {
		dims = append(dims, dim{
			label:  catalog.NumericPreferenceLabel(priceKey, priceWeight),
			weight: priceWeight,
		})
	}

	sort.SliceStable(dims, func(i, j int) bool {
		return math.Abs(dims[i].weight) > math.Abs(dims[j].weight)
	})

	seen := make(map[string]struct{}, len(dims))
	for _, d := range dims {
		lk := strings.ToLower(d.label)
		if _, dup := seen[lk]; dup {
			continue
		}
		seen[lk] = struct{}{}
		if d.weight > 0 {
			if len(likes) < topN {
				likes = append(likes, d.label)
			}
		} else if len(dislikes) < topN {
			dislikes = append(dislikes, d.label)
		}
	}
	return likes, dislikes
}

// isPriceKey matches the numeric price dimensions of any category.
func isPriceKey(key string) bool {
	parts := strings.Split(key, "::")
	return len(parts) >= 4 && parts[2] == "num" && strings.HasPrefix(parts[3], "price_")
}

// sharedFeatures lists what two items have in common, humanized. Tokens the
// category treats as redundant drop out inside HumanizeFeature.
func sharedFeatures(a, b *catalog.Item, category string) []string {
	if a == nil || b == nil {
		return nil
	}
	profile, err := catalog.ProfileFor(category)
	if err != nil {
		return nil
	}
	tokensA, _ := catalog.ExtractFeatures(profile, a)
	tokensB, _ := catalog.ExtractFeatures(profile, b)
	inB := make(map[string]struct{}, len(tokensB))
	for _, t := range tokensB {
		inB[t] = struct{}{}
	}

	seen := make(map[string]struct{}, len(tokensA))
	var out []string
	for _, t := range tokensA {
		if _, ok := inB[t]; !ok {
			continue
		}
		label, ok := catalog.HumanizeFeature(t)
		if !ok || label == "" {
			continue
		}
		lk := strings.ToLower(label)
		if _, dup := seen[lk]; dup {
			continue
		}
		seen[lk] = struct{}{}
		out = append(out, label)
		if len(out) >= sharedFeatureLimit {
			break
		}
	}
	return out
}

// humanizeHidden maps hidden preferences to display labels, dropping any
// the category hides.
func humanizeHidden(prefs []pcf.HiddenPreference) []string {
	out := make([]string, 0, len(prefs))
	for _, h := range prefs {
		if label, ok := catalog.HumanizeFeature(h.Feature); ok && label != "" {
			out = append(out, label)
		}
	}
	return out
}

// narrative composes the summary's one-liner from up to three hidden
// preference labels.
func narrative(labels []string) string {
	if len(labels) > 3 {
		labels = labels[:3]
	}
	switch len(labels) {
	case 0:
		return "No hidden patterns stood out; your picks say what they mean."
	case 1:
		return "Your picks hint at an unspoken pull toward " + labels[0] + "."
	case 2:
		return "Your picks hint at an unspoken pull toward " + labels[0] + " and " + labels[1] + "."
	default:
		return "Your picks hint at an unspoken pull toward " + labels[0] + ", " + labels[1] + ", and " + labels[2] + "."
	}
}
