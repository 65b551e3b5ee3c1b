// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

package pcf

import (
	"math"
	"sort"

	"github.com/decidio/duel/internal/catalog"
)

// HiddenPreference is a profile dimension the player favors without picking
// it directly: its weight accumulated through co-occurrence with other
// picked features rather than through its own selection frequency.
type HiddenPreference struct {
	// Feature is the raw feature key, resolvable through the feature space.
	Feature string `json:"feature"`

	// Index is the dense feature-space index of the dimension.
	Index int `json:"-"`

	// Latency is normalized weight minus selection frequency, in [0,1].
	Latency float64 `json:"latency"`

	// Weight is the normalized profile weight, in [0,1].
	Weight float64 `json:"weight"`
}

// ItemVector pairs an item id with its feature-space vector for hidden-gem
// scoring.
type ItemVector struct {
	ID  string
	Vec []float64
}

// HiddenGem is a non-selected item that scores highly on hidden dimensions
// alone.
type HiddenGem struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// DetectHiddenPreferences finds profile dimensions whose weight outruns
// their selection frequency.
//
// For each dimension the normalized weight is |user_vec[i]| / max|user_vec|
// and the frequency is the share of selected items with that feature
// present. Dimensions pass when weight >= HiddenMinWeight and the latency
// (weight - frequency) >= HiddenMinLatency. Numeric dimensions are skipped
// because z-scored values are nonzero on nearly every item, which makes
// their frequencies meaningless. Detection needs at least
// HiddenMinSelections picks.
//
// keys is the feature-space key list in dense index order. Results are
// rounded to 4 decimals and sorted by latency descending, capped at topN.
func (m *Model) DetectHiddenPreferences(st *State, selectedVecs [][]float64, keys []string, topN int) []HiddenPreference {
	if st == nil || st.Count < m.cfg.HiddenMinSelections || len(selectedVecs) == 0 {
		return nil
	}

	maxAbs := 0.0
	for _, w := range st.UserVec {
		if a := math.Abs(w); a > maxAbs {
			maxAbs = a
		}
	}
	if maxAbs == 0 {
		return nil
	}

	freq := make([]float64, len(st.UserVec))
	for _, vec := range selectedVecs {
		n := len(vec)
		if len(freq) < n {
			n = len(freq)
		}
		for i := 0; i < n; i++ {
			if vec[i] != 0 {
				freq[i]++
			}
		}
	}
	total := float64(len(selectedVecs))

	var out []HiddenPreference
	for i, w := range st.UserVec {
		if i >= len(keys) || catalog.IsNumericFeatureKey(keys[i]) {
			continue
		}
		weight := math.Abs(w) / maxAbs
		if weight < m.cfg.HiddenMinWeight {
			continue
		}
		latency := weight - freq[i]/total
		if latency < m.cfg.HiddenMinLatency {
			continue
		}
		out = append(out, HiddenPreference{
			Feature: keys[i],
			Index:   i,
			Latency: round4(latency),
			Weight:  round4(weight),
		})
	}

	sort.SliceStable(out, func(a, b int) bool { return out[a].Latency > out[b].Latency })
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}

// HiddenGemItems scores non-selected items against the profile masked to the
// hidden dimensions only. Items must carry at least one hidden feature to
// qualify; ties resolve by id for determinism. Results are capped at topN,
// sorted by score descending.
func (m *Model) HiddenGemItems(st *State, hidden []HiddenPreference, selectedIDs []string, items []ItemVector, topN int) []HiddenGem {
	if st == nil || len(hidden) == 0 || len(items) == 0 {
		return nil
	}

	hiddenVec := make([]float64, len(st.UserVec))
	for _, h := range hidden {
		if h.Index >= 0 && h.Index < len(hiddenVec) {
			hiddenVec[h.Index] = st.UserVec[h.Index]
		}
	}

	selected := make(map[string]struct{}, len(selectedIDs))
	for _, id := range selectedIDs {
		selected[id] = struct{}{}
	}

	var gems []HiddenGem
	for _, it := range items {
		if _, ok := selected[it.ID]; ok {
			continue
		}
		present := false
		for _, h := range hidden {
			if h.Index >= 0 && h.Index < len(it.Vec) && it.Vec[h.Index] != 0 {
				present = true
				break
			}
		}
		if !present {
			continue
		}
		gems = append(gems, HiddenGem{ID: it.ID, Score: cosine(hiddenVec, it.Vec)})
	}

	sort.SliceStable(gems, func(a, b int) bool {
		if gems[a].Score != gems[b].Score {
			return gems[a].Score > gems[b].Score
		}
		return gems[a].ID < gems[b].ID
	})
	if topN > 0 && len(gems) > topN {
		gems = gems[:topN]
	}
	return gems
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
