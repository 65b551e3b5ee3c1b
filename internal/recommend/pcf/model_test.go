// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

package pcf

import (
	"math"
	"testing"
)

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		cfg    Config
		verify func(t *testing.T, m *Model)
	}{
		{
			name: "applies defaults for zero config",
			cfg:  Config{},
			verify: func(t *testing.T, m *Model) {
				if m.cfg.Decay != DefaultDecay {
					t.Errorf("Decay = %f, want %f", m.cfg.Decay, DefaultDecay)
				}
				if m.cfg.ExceptionWeight != DefaultExceptionWeight {
					t.Errorf("ExceptionWeight = %f, want %f", m.cfg.ExceptionWeight, DefaultExceptionWeight)
				}
				if m.cfg.HiddenMinSelections != DefaultHiddenMinSelections {
					t.Errorf("HiddenMinSelections = %d, want %d", m.cfg.HiddenMinSelections, DefaultHiddenMinSelections)
				}
			},
		},
		{
			name: "uses provided config values",
			cfg:  Config{Decay: 0.5, ExceptionWeight: 0.2, BiasLearningRate: 0.1},
			verify: func(t *testing.T, m *Model) {
				if m.cfg.Decay != 0.5 {
					t.Errorf("Decay = %f, want 0.5", m.cfg.Decay)
				}
				if m.cfg.BiasLearningRate != 0.1 {
					t.Errorf("BiasLearningRate = %f, want 0.1", m.cfg.BiasLearningRate)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(tt.cfg)
			if m == nil {
				t.Fatal("New() returned nil")
			}
			tt.verify(t, m)
		})
	}
}

func TestInitState(t *testing.T) {
	m := New(Config{})
	st := m.InitState(12)

	if st.SchemaVersion != StateSchemaVersion {
		t.Errorf("SchemaVersion = %d, want %d", st.SchemaVersion, StateSchemaVersion)
	}
	if len(st.UserVec) != 12 {
		t.Errorf("len(UserVec) = %d, want 12", len(st.UserVec))
	}
	for i, w := range st.UserVec {
		if w != 0 {
			t.Errorf("UserVec[%d] = %f, want 0", i, w)
		}
	}
	if st.Bias != 0 || st.Count != 0 {
		t.Errorf("Bias = %f, Count = %d, want zeros", st.Bias, st.Count)
	}
	if st.Decay != DefaultDecay {
		t.Errorf("Decay = %f, want %f", st.Decay, DefaultDecay)
	}
	if !st.ValidFor(12) {
		t.Error("fresh state fails ValidFor(12)")
	}
	if st.ValidFor(13) {
		t.Error("state claims validity for mismatched width")
	}
}

func TestUpdateWithSelection(t *testing.T) {
	m := New(Config{})

	t.Run("full weight for regular pick", func(t *testing.T) {
		st := m.InitState(3)
		m.UpdateWithSelection(st, []float64{1, 0, 2}, false)

		want := []float64{1, 0, 2}
		for i := range want {
			if !almostEqual(st.UserVec[i], want[i], 1e-12) {
				t.Errorf("UserVec[%d] = %f, want %f", i, st.UserVec[i], want[i])
			}
		}
		if st.Count != 1 {
			t.Errorf("Count = %d, want 1", st.Count)
		}
	})

	t.Run("decay applies before fold-in", func(t *testing.T) {
		st := m.InitState(2)
		m.UpdateWithSelection(st, []float64{1, 1}, false)
		m.UpdateWithSelection(st, []float64{1, 0}, false)

		// 0.85*1 + 1 and 0.85*1 + 0
		if !almostEqual(st.UserVec[0], 1.85, 1e-12) {
			t.Errorf("UserVec[0] = %f, want 1.85", st.UserVec[0])
		}
		if !almostEqual(st.UserVec[1], 0.85, 1e-12) {
			t.Errorf("UserVec[1] = %f, want 0.85", st.UserVec[1])
		}
		if st.Count != 2 {
			t.Errorf("Count = %d, want 2", st.Count)
		}
	})

	t.Run("exception pick folds in at reduced weight", func(t *testing.T) {
		st := m.InitState(1)
		m.UpdateWithSelection(st, []float64{1}, true)
		if !almostEqual(st.UserVec[0], DefaultExceptionWeight, 1e-12) {
			t.Errorf("UserVec[0] = %f, want %f", st.UserVec[0], DefaultExceptionWeight)
		}
	})

	t.Run("norm stays bounded under repeated unit updates", func(t *testing.T) {
		st := m.InitState(4)
		unit := []float64{0.5, 0.5, 0.5, 0.5}
		// Geometric series bound: ||v|| <= ||unit|| / (1 - decay).
		bound := norm(unit)/(1.0-DefaultDecay) + 1e-9
		for i := 0; i < 200; i++ {
			m.UpdateWithSelection(st, unit, false)
			if n := norm(st.UserVec); n > bound {
				t.Fatalf("norm after %d updates = %f, exceeds bound %f", i+1, n, bound)
			}
		}
	})
}

func TestPredictPrefixRating(t *testing.T) {
	m := New(Config{})

	t.Run("zero state predicts neutral", func(t *testing.T) {
		st := m.InitState(4)
		got := m.PredictPrefixRating(st)
		if !almostEqual(got, 3.0, 1e-12) {
			t.Errorf("PredictPrefixRating = %f, want 3.0", got)
		}
	})

	t.Run("always within rating scale", func(t *testing.T) {
		st := m.InitState(4)
		st.Bias = 40 // absurd bias still clamps
		if got := m.PredictPrefixRating(st); got != 5.0 {
			t.Errorf("PredictPrefixRating = %f, want 5.0", got)
		}
		st.Bias = -40
		if got := m.PredictPrefixRating(st); got != 1.0 {
			t.Errorf("PredictPrefixRating = %f, want 1.0", got)
		}
	})

	t.Run("saturates below 5 under 50 decisive updates", func(t *testing.T) {
		st := m.InitState(3)
		vec := []float64{1, 1, 1}
		for i := 0; i < 50; i++ {
			m.UpdateWithSelection(st, vec, false)
		}
		got := m.PredictPrefixRating(st)
		if got < 4.0 || got > 5.0 {
			t.Errorf("saturated prediction = %f, want within [4,5]", got)
		}
	})
}

func TestUpdateWithPrefixRating(t *testing.T) {
	m := New(Config{})

	t.Run("bias moves toward rating", func(t *testing.T) {
		st := m.InitState(2)
		before := m.PredictPrefixRating(st)
		m.UpdateWithPrefixRating(st, 5)
		after := m.PredictPrefixRating(st)
		if after <= before {
			t.Errorf("prediction did not move toward 5: before %f after %f", before, after)
		}
	})

	t.Run("converges toward repeated rating", func(t *testing.T) {
		st := m.InitState(2)
		for i := 0; i < 60; i++ {
			m.UpdateWithPrefixRating(st, 4.5)
		}
		got := m.PredictPrefixRating(st)
		if !almostEqual(got, 4.5, 0.05) {
			t.Errorf("converged prediction = %f, want ~4.5", got)
		}
	})
}

func TestScoreItem(t *testing.T) {
	m := New(Config{})

	tests := []struct {
		name    string
		userVec []float64
		bias    float64
		itemVec []float64
		want    float64
	}{
		{"zero profile scores neutral", []float64{0, 0}, 0, []float64{1, 0}, 3.0},
		{"zero item scores neutral", []float64{1, 0}, 0, []float64{0, 0}, 3.0},
		{"aligned item scores high", []float64{1, 0}, 0, []float64{2, 0}, 4.7},
		{"opposed item scores low", []float64{1, 0}, 0, []float64{-1, 0}, 1.3},
		{"bias shifts score", []float64{1, 0}, 0.3, []float64{1, 0}, 5.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &State{SchemaVersion: StateSchemaVersion, UserVec: tt.userVec, Bias: tt.bias}
			got := m.ScoreItem(st, tt.itemVec)
			if !almostEqual(got, tt.want, 1e-9) {
				t.Errorf("ScoreItem = %f, want %f", got, tt.want)
			}
			if got < 1.0 || got > 5.0 {
				t.Errorf("ScoreItem = %f, outside [1,5]", got)
			}
		})
	}
}

func TestCoherenceScore(t *testing.T) {
	tests := []struct {
		name string
		vecs [][]float64
		want float64
	}{
		{"fewer than two vectors", [][]float64{{1, 0}}, 0},
		{"identical vectors score one", [][]float64{{1, 1}, {1, 1}, {1, 1}}, 1.0},
		{"orthogonal vectors score half", [][]float64{{1, 0}, {0, 1}}, 0.5},
		{"opposed vectors score zero", [][]float64{{1, 0}, {-1, 0}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CoherenceScore(tt.vecs)
			if !almostEqual(got, tt.want, 1e-9) {
				t.Errorf("CoherenceScore = %f, want %f", got, tt.want)
			}
			if got < 0 || got > 1 {
				t.Errorf("CoherenceScore = %f, outside [0,1]", got)
			}
		})
	}
}

func TestStateClone(t *testing.T) {
	m := New(Config{})
	st := m.InitState(3)
	m.UpdateWithSelection(st, []float64{1, 2, 3}, false)

	cl := st.Clone()
	cl.UserVec[0] = 99
	cl.Bias = 7

	if st.UserVec[0] == 99 {
		t.Error("Clone shares underlying vector")
	}
	if st.Bias == 7 {
		t.Error("Clone shares bias")
	}
}

func TestCosineMismatchedWidths(t *testing.T) {
	// Stale vectors shorter than the profile must degrade, not panic.
	got := cosine([]float64{1, 0, 0}, []float64{1})
	if !almostEqual(got, 1.0, 1e-12) {
		t.Errorf("cosine = %f, want 1.0", got)
	}
}
