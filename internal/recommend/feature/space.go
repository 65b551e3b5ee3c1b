// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

// Package feature builds the dense feature space items are vectorized into.
//
// The space assigns every raw feature key a stable dense index in first-seen
// order and standardizes numeric dimensions with per-key z-stats computed
// over the catalog. For a fixed catalog iteration order the resulting index
// is identical across processes, which keeps persisted preference states
// meaningful across restarts.
package feature

import (
	"fmt"
	"math"

	"github.com/decidio/duel/internal/catalog"
)

// Stats holds the standardization parameters of one numeric dimension.
type Stats struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// Space maps raw feature keys to dense vector indices. Immutable after Build;
// safe for concurrent use.
type Space struct {
	index   map[string]int
	keys    []string
	numeric map[string]Stats
}

// Build constructs a feature space from one pass over the catalog. Token keys
// enter the index in first-seen order; numeric keys enter interleaved in the
// declaration order of their profile. Returns an error when an item carries
// an unregistered category.
func Build(items []*catalog.Item) (*Space, error) {
	s := &Space{
		index:   make(map[string]int),
		numeric: make(map[string]Stats),
	}
	samples := make(map[string][]float64)

	for _, it := range items {
		profile, err := catalog.ProfileFor(it.Category)
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", it.SourceID, err)
		}

		tokens, numerics := catalog.ExtractFeatures(profile, it)
		for _, tok := range tokens {
			s.add(tok)
		}

		// Iterate declared numeric fields rather than the extracted map to
		// keep index assignment deterministic.
		for _, field := range profile.NumericFields {
			key := fmt.Sprintf("cat::%s::num::%s_z", profile.ID, field)
			if v, ok := numerics[key]; ok {
				s.add(key)
				samples[key] = append(samples[key], v)
			}
		}
	}

	for key, vals := range samples {
		s.numeric[key] = summarize(vals)
	}

	return s, nil
}

func (s *Space) add(key string) {
	if _, ok := s.index[key]; !ok {
		s.index[key] = len(s.keys)
		s.keys = append(s.keys, key)
	}
}

// summarize computes mean and population standard deviation, clamping a zero
// deviation to 1 so standardization never divides by zero.
func summarize(vals []float64) Stats {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	mean := sum / float64(len(vals))

	var sq float64
	for _, v := range vals {
		d := v - mean
		sq += d * d
	}
	std := math.Sqrt(sq / float64(len(vals)))
	if std == 0 {
		std = 1
	}
	return Stats{Mean: mean, StdDev: std}
}

// Dim returns the width of vectors produced by this space.
func (s *Space) Dim() int {
	return len(s.keys)
}

// Index returns the dense index of a raw feature key.
func (s *Space) Index(key string) (int, bool) {
	idx, ok := s.index[key]
	return idx, ok
}

// Key returns the raw feature key at a dense index.
func (s *Space) Key(idx int) string {
	if idx < 0 || idx >= len(s.keys) {
		return ""
	}
	return s.keys[idx]
}

// Keys returns all raw feature keys in dense index order. The returned slice
// is shared; callers must not mutate it.
func (s *Space) Keys() []string {
	return s.keys
}

// NumericStats returns the standardization stats of a numeric key.
func (s *Space) NumericStats(key string) (Stats, bool) {
	st, ok := s.numeric[key]
	return st, ok
}

// Vectorize maps an item into the space: 1.0 for each present token,
// (value-mean)/stddev for each present numeric dimension, 0 elsewhere.
// Tokens the space has never seen are ignored, so vectorizing against a
// stale space degrades instead of failing.
func (s *Space) Vectorize(it *catalog.Item) []float64 {
	vec := make([]float64, len(s.keys))

	profile, err := catalog.ProfileFor(it.Category)
	if err != nil {
		return vec
	}

	tokens, numerics := catalog.ExtractFeatures(profile, it)
	for _, tok := range tokens {
		if idx, ok := s.index[tok]; ok {
			vec[idx] = 1.0
		}
	}
	for key, v := range numerics {
		idx, ok := s.index[key]
		if !ok {
			continue
		}
		st, ok := s.numeric[key]
		if !ok {
			continue
		}
		vec[idx] = (v - st.Mean) / st.StdDev
	}

	return vec
}
