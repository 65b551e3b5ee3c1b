// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

// Package pbcf implements prefix-based collaborative filtering: non-negative
// matrix factorization over the sparse (prefix sequence, user) rating matrix,
// following the missing-value NMF of Yu & Riedl (2014).
//
// Each row of the matrix is a selection prefix (hyphen-joined item ids, in
// pick order), each column a user, each observed cell the prefix rating that
// user gave that exact sequence. Training factors R ~ W*H with multiplicative
// updates, re-imputing the observed cells every iteration so the factors only
// explain the missing ones. Prediction folds a user's observed column into
// the trained item factors and reads off ratings for every known prefix.
//
// # Thread Safety
//
// Engine is safe for concurrent use. Train takes an exclusive lock;
// PredictForUser and Stats take a shared lock.
package pbcf

import (
	"context"
	"math"
	"math/rand"
	"strings"
	"sync"

	"gonum.org/v1/gonum/mat"
)

// Default hyperparameters for the factorization.
const (
	DefaultLatentDim  = 6
	DefaultIterations = 50
	DefaultSeed       = 42
)

const eps = 1e-6

// Observation is one (prefix, user, rating) training cell. Observations must
// arrive ordered by rating creation time; a later observation for the same
// cell overwrites the earlier one.
type Observation struct {
	PrefixKey string
	UserID    string
	Rating    float64
}

// Stats describes the trained model for the debug endpoint.
type Stats struct {
	Trained      bool    `json:"trained"`
	PrefixCount  int     `json:"prefix_count"`
	UserCount    int     `json:"user_count"`
	RatingsCount int     `json:"ratings_count"`
	MissingRatio float64 `json:"missing_ratio"`
	LatentDim    int     `json:"latent_dim"`
}

// Config holds the factorization hyperparameters.
type Config struct {
	// LatentDim caps the latent dimension k. The effective k is
	// min(LatentDim, max(2, min(prefixes, users))).
	LatentDim int

	// Iterations is the multiplicative-update count for both training and
	// per-user fold-in.
	Iterations int

	// Seed makes factor initialization deterministic. Each Train and each
	// PredictForUser draws from a fresh stream, so results do not depend
	// on call order.
	Seed int64
}

// DefaultConfig returns the production hyperparameters.
func DefaultConfig() Config {
	return Config{
		LatentDim:  DefaultLatentDim,
		Iterations: DefaultIterations,
		Seed:       DefaultSeed,
	}
}

// Engine is the PBCF model. Zero value is unusable; construct with New.
type Engine struct {
	cfg Config

	mu         sync.RWMutex
	trained    bool
	prefixKeys []string
	userIndex  map[string]int
	ratings    *mat.Dense // observed matrix, NaN for missing
	w          *mat.Dense // prefix factors, P x k
	latentDim  int
	cellCount  int // observed cells after dedupe
	trainedObs int // raw observations fed to the last Train
}

// New creates an engine, filling zero-valued config fields with defaults.
func New(cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.LatentDim <= 0 {
		cfg.LatentDim = def.LatentDim
	}
	if cfg.Iterations <= 0 {
		cfg.Iterations = def.Iterations
	}
	if cfg.Seed == 0 {
		cfg.Seed = def.Seed
	}
	return &Engine{cfg: cfg}
}

// PrefixKey joins item ids into the canonical row label: hyphen-joined, in
// selection timestamp order.
func PrefixKey(itemIDs []string) string {
	return strings.Join(itemIDs, "-")
}

// Train rebuilds the factorization from scratch. Empty input clears the
// model back to untrained. The only error is context cancellation.
func (e *Engine) Train(ctx context.Context, observations []Observation) error {
	type cell struct {
		row, col int
		rating   float64
	}

	prefixKeys := make([]string, 0, len(observations))
	prefixIndex := make(map[string]int, len(observations))
	userIDs := make([]string, 0, len(observations))
	userIndex := make(map[string]int, len(observations))
	cellIndex := make(map[[2]int]int, len(observations))
	cells := make([]cell, 0, len(observations))

	for _, obs := range observations {
		if obs.PrefixKey == "" || obs.UserID == "" {
			continue
		}
		row, ok := prefixIndex[obs.PrefixKey]
		if !ok {
			row = len(prefixKeys)
			prefixIndex[obs.PrefixKey] = row
			prefixKeys = append(prefixKeys, obs.PrefixKey)
		}
		col, ok := userIndex[obs.UserID]
		if !ok {
			col = len(userIDs)
			userIndex[obs.UserID] = col
			userIDs = append(userIDs, obs.UserID)
		}
		// Latest observation per cell wins.
		if at, ok := cellIndex[[2]int{row, col}]; ok {
			cells[at].rating = obs.Rating
			continue
		}
		cellIndex[[2]int{row, col}] = len(cells)
		cells = append(cells, cell{row: row, col: col, rating: obs.Rating})
	}

	p, u := len(prefixKeys), len(userIDs)
	if p == 0 || u == 0 {
		e.mu.Lock()
		e.trained = false
		e.prefixKeys = nil
		e.userIndex = nil
		e.ratings = nil
		e.w = nil
		e.cellCount = 0
		e.trainedObs = len(observations)
		e.mu.Unlock()
		return nil
	}

	r0 := mat.NewDense(p, u, nil)
	for i := 0; i < p; i++ {
		for j := 0; j < u; j++ {
			r0.Set(i, j, math.NaN())
		}
	}
	for _, c := range cells {
		r0.Set(c.row, c.col, c.rating)
	}

	clampK := min(p, u)
	if clampK < 2 {
		clampK = 2
	}
	k := e.cfg.LatentDim
	if k > clampK {
		k = clampK
	}

	rng := rand.New(rand.NewSource(e.cfg.Seed))
	w := randomDense(p, k, rng)
	h := randomDense(k, u, rng)

	// Temporaries are split per shape so gonum can reuse their backing
	// arrays across iterations.
	var rp mat.Dense                 // P x U
	var wtw, hht mat.Dense           // k x k
	var numH, denH, fracH mat.Dense  // k x U
	var numW, denW, fracW mat.Dense  // P x k
	for iter := 0; iter < e.cfg.Iterations; iter++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		// R' = W*H with observed cells hard-imputed.
		rp.Mul(w, h)
		for _, c := range cells {
			rp.Set(c.row, c.col, c.rating)
		}

		// H *= (Wt R') / (Wt W H + eps)
		numH.Mul(w.T(), &rp)
		wtw.Mul(w.T(), w)
		denH.Mul(&wtw, h)
		denH.Apply(addEps, &denH)
		fracH.DivElem(&numH, &denH)
		h.MulElem(h, &fracH)

		// W *= (R' Ht) / (W H Ht + eps)
		numW.Mul(&rp, h.T())
		hht.Mul(h, h.T())
		denW.Mul(w, &hht)
		denW.Apply(addEps, &denW)
		fracW.DivElem(&numW, &denW)
		w.MulElem(w, &fracW)
	}

	e.mu.Lock()
	e.trained = true
	e.prefixKeys = prefixKeys
	e.userIndex = userIndex
	e.ratings = r0
	e.w = w
	e.latentDim = k
	e.cellCount = len(cells)
	e.trainedObs = len(observations)
	e.mu.Unlock()
	return nil
}

// PredictForUser folds the user's observed ratings into the trained factors
// and returns predicted ratings for every known prefix, clipped to [1,5].
// The second return is false when the model is untrained or the user was not
// part of the training matrix.
func (e *Engine) PredictForUser(userID string) (map[string]float64, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.trained || e.w == nil {
		return nil, false
	}
	col, ok := e.userIndex[userID]
	if !ok {
		return nil, false
	}

	p := len(e.prefixKeys)
	k := e.latentDim

	type obs struct {
		row    int
		rating float64
	}
	var observed []obs
	for i := 0; i < p; i++ {
		if v := e.ratings.At(i, col); !math.IsNaN(v) {
			observed = append(observed, obs{row: i, rating: v})
		}
	}

	rng := rand.New(rand.NewSource(e.cfg.Seed))
	h := mat.NewVecDense(k, nil)
	for i := 0; i < k; i++ {
		h.SetVec(i, rng.Float64()+0.1)
	}

	var wtw mat.Dense
	wtw.Mul(e.w.T(), e.w)

	r := mat.NewVecDense(p, nil)
	num := mat.NewVecDense(k, nil)
	den := mat.NewVecDense(k, nil)
	for iter := 0; iter < e.cfg.Iterations; iter++ {
		r.MulVec(e.w, h)
		for _, o := range observed {
			r.SetVec(o.row, o.rating)
		}
		num.MulVec(e.w.T(), r)
		den.MulVec(&wtw, h)
		for i := 0; i < k; i++ {
			h.SetVec(i, h.AtVec(i)*num.AtVec(i)/(den.AtVec(i)+eps))
		}
	}

	r.MulVec(e.w, h)
	out := make(map[string]float64, p)
	for i, key := range e.prefixKeys {
		v := r.AtVec(i)
		if v < 1.0 {
			v = 1.0
		} else if v > 5.0 {
			v = 5.0
		}
		out[key] = v
	}
	return out, true
}

// Stats reports the trained model shape.
func (e *Engine) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.trained {
		return Stats{Trained: false, MissingRatio: 1.0, LatentDim: e.cfg.LatentDim}
	}
	total := len(e.prefixKeys) * len(e.userIndex)
	missing := 1.0
	if total > 0 {
		missing = 1.0 - float64(e.cellCount)/float64(total)
	}
	return Stats{
		Trained:      true,
		PrefixCount:  len(e.prefixKeys),
		UserCount:    len(e.userIndex),
		RatingsCount: e.cellCount,
		MissingRatio: math.Round(missing*1000) / 1000,
		LatentDim:    e.latentDim,
	}
}

// Trained reports whether a factorization is loaded.
func (e *Engine) Trained() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.trained
}

// TrainedObservationCount returns the raw observation count fed to the last
// Train call. The owner compares it against the store's rating count to
// decide when a retrain is due.
func (e *Engine) TrainedObservationCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.trainedObs
}

func randomDense(rows, cols int, rng *rand.Rand) *mat.Dense {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = rng.Float64() + 0.1
	}
	return mat.NewDense(rows, cols, data)
}

func addEps(_, _ int, v float64) float64 { return v + eps }
