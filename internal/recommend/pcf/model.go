// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

// Package pcf implements the prefix collaborative filter, the online
// preference model behind each game session.
//
// The model keeps one decayed sum of selected item vectors per session and
// a scalar rating bias. Every selection folds its vector into the profile;
// every prefix rating nudges the bias toward the observed rating. Scoring
// is cosine similarity against the profile mapped onto the 1..5 rating
// scale.
//
// # Thread Safety
//
// Model is immutable after New and safe for concurrent use. State is not
// synchronized; each session's state is owned by one request at a time and
// callers must not share a State across goroutines.
package pcf

import "math"

// Default hyperparameters. They reproduce the tuned production behavior and
// are overridable through Config for experiments and tests.
const (
	// DefaultDecay discounts the existing profile before each selection
	// folds in, so recent picks dominate long sessions.
	DefaultDecay = 0.85

	// DefaultExceptionWeight is the reduced fold-in weight for selections
	// the player marked as off-profile exceptions.
	DefaultExceptionWeight = 0.35

	// DefaultBiasLearningRate scales how far one prefix rating moves the
	// bias toward the observed rating.
	DefaultBiasLearningRate = 0.25

	// DefaultHiddenMinWeight is the minimum normalized profile weight for
	// a dimension to qualify as a hidden preference.
	DefaultHiddenMinWeight = 0.15

	// DefaultHiddenMinLatency is the minimum weight-minus-frequency gap
	// for a dimension to qualify as a hidden preference.
	DefaultHiddenMinLatency = 0.10

	// DefaultHiddenMinSelections gates hidden-preference detection until
	// the session has enough picks to make frequencies meaningful.
	DefaultHiddenMinSelections = 3
)

// Config holds the model hyperparameters.
type Config struct {
	Decay               float64
	ExceptionWeight     float64
	BiasLearningRate    float64
	HiddenMinWeight     float64
	HiddenMinLatency    float64
	HiddenMinSelections int
}

// DefaultConfig returns the production hyperparameters.
func DefaultConfig() Config {
	return Config{
		Decay:               DefaultDecay,
		ExceptionWeight:     DefaultExceptionWeight,
		BiasLearningRate:    DefaultBiasLearningRate,
		HiddenMinWeight:     DefaultHiddenMinWeight,
		HiddenMinLatency:    DefaultHiddenMinLatency,
		HiddenMinSelections: DefaultHiddenMinSelections,
	}
}

// Model applies the prefix collaborative filter updates and scoring rules.
type Model struct {
	cfg Config
}

// New creates a model, filling zero-valued config fields with defaults.
func New(cfg Config) *Model {
	def := DefaultConfig()
	if cfg.Decay <= 0 {
		cfg.Decay = def.Decay
	}
	if cfg.ExceptionWeight <= 0 {
		cfg.ExceptionWeight = def.ExceptionWeight
	}
	if cfg.BiasLearningRate <= 0 {
		cfg.BiasLearningRate = def.BiasLearningRate
	}
	if cfg.HiddenMinWeight <= 0 {
		cfg.HiddenMinWeight = def.HiddenMinWeight
	}
	if cfg.HiddenMinLatency <= 0 {
		cfg.HiddenMinLatency = def.HiddenMinLatency
	}
	if cfg.HiddenMinSelections <= 0 {
		cfg.HiddenMinSelections = def.HiddenMinSelections
	}
	return &Model{cfg: cfg}
}

// InitState creates a fresh zero profile for the given feature-space width.
func (m *Model) InitState(dim int) *State {
	return &State{
		SchemaVersion:   StateSchemaVersion,
		UserVec:         make([]float64, dim),
		Bias:            0,
		Count:           0,
		Decay:           m.cfg.Decay,
		ExceptionWeight: m.cfg.ExceptionWeight,
	}
}

// UpdateWithSelection folds a selected item's vector into the profile:
//
//	user_vec <- decay*user_vec + w*item_vec
//
// with w the state's exception weight for exception picks and 1.0 otherwise.
// The item vector width must match the state width; mismatched calls are a
// caller bug and the shorter width wins to avoid an index panic.
func (m *Model) UpdateWithSelection(st *State, itemVec []float64, isException bool) {
	w := 1.0
	if isException {
		w = st.ExceptionWeight
	}
	n := len(st.UserVec)
	if len(itemVec) < n {
		n = len(itemVec)
	}
	for i := 0; i < n; i++ {
		st.UserVec[i] = st.Decay*st.UserVec[i] + w*itemVec[i]
	}
	st.Count++
}

// UpdateWithPrefixRating moves the bias toward an observed prefix rating by
// a fraction of the prediction error.
func (m *Model) UpdateWithPrefixRating(st *State, rating float64) {
	predicted := m.PredictPrefixRating(st)
	st.Bias += m.cfg.BiasLearningRate * (rating - predicted)
}

// PredictPrefixRating estimates the rating the player would give their
// selection sequence so far. The profile norm saturates through tanh so a
// long decisive session predicts high without overflowing the scale.
func (m *Model) PredictPrefixRating(st *State) float64 {
	raw := 3.0 + 1.5*math.Tanh(norm(st.UserVec)/3.0) + st.Bias
	return clamp(raw, 1.0, 5.0)
}

// ScoreItem predicts the player's affinity for one item on the 1..5 scale.
// A zero profile or zero item vector scores neutral (cosine 0).
func (m *Model) ScoreItem(st *State, itemVec []float64) float64 {
	cos := cosine(st.UserVec, itemVec)
	return clamp(3.0+1.7*cos+st.Bias, 1.0, 5.0)
}

// CoherenceScore measures how self-consistent a set of selections is: the
// mean pairwise cosine of the item vectors rescaled from [-1,1] to [0,1].
// Fewer than two vectors score 0.
func CoherenceScore(vecs [][]float64) float64 {
	if len(vecs) < 2 {
		return 0
	}
	var sum float64
	var pairs int
	for i := 0; i < len(vecs); i++ {
		for j := i + 1; j < len(vecs); j++ {
			sum += cosine(vecs[i], vecs[j])
			pairs++
		}
	}
	mean := sum / float64(pairs)
	return (mean + 1.0) / 2.0
}

// cosine computes cosine similarity, returning 0 when either vector has
// zero norm. Mismatched widths compare over the shorter prefix.
func cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	for i := n; i < len(a); i++ {
		na += a[i] * a[i]
	}
	for i := n; i < len(b); i++ {
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func norm(v []float64) float64 {
	var sq float64
	for _, x := range v {
		sq += x * x
	}
	return math.Sqrt(sq)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
