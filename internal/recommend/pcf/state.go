// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

package pcf

// StateSchemaVersion is bumped whenever the serialized State shape changes.
// Stored states with another version are stale and must be reinitialized.
const StateSchemaVersion = 1

// State is the per-session online preference profile. It is persisted as a
// JSON blob on the session document and must stay serializable.
//
// The invariant len(UserVec) == feature-space width holds at every update
// and scoring call. A feature-space rebuild changes the width, which makes
// stored states stale; staleness is detected with ValidFor and resolved by
// explicit reinitialization, never by silent truncation or padding.
type State struct {
	SchemaVersion   int       `json:"schema_version"`
	UserVec         []float64 `json:"user_vec"`
	Bias            float64   `json:"bias"`
	Count           int       `json:"count"`
	Decay           float64   `json:"decay"`
	ExceptionWeight float64   `json:"exception_weight"`
}

// ValidFor reports whether the state can score vectors of the given width.
func (s *State) ValidFor(dim int) bool {
	return s != nil && s.SchemaVersion == StateSchemaVersion && len(s.UserVec) == dim
}

// Clone returns a deep copy of the state.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	out := *s
	out.UserVec = make([]float64, len(s.UserVec))
	copy(out.UserVec, s.UserVec)
	return &out
}
