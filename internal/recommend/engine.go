// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

package recommend

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"runtime"
	"sort"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/decidio/duel/internal/catalog"
	"github.com/decidio/duel/internal/core"
	"github.com/decidio/duel/internal/metrics"
	"github.com/decidio/duel/internal/recommend/feature"
	"github.com/decidio/duel/internal/recommend/pbcf"
	"github.com/decidio/duel/internal/recommend/pcf"
	"github.com/decidio/duel/internal/store"
)

// Config holds the engine's model hyperparameters.
type Config struct {
	// PBCFLatentDim caps the latent dimension of the prefix factorization.
	PBCFLatentDim int

	// PBCFIterations is the multiplicative-update iteration count.
	PBCFIterations int

	// PBCFSeed seeds factor initialization and the wildcard draw.
	PBCFSeed int64

	// StrongLimit is the default number of strong recommendations.
	StrongLimit int
}

// DefaultConfig returns the canonical hyperparameters.
func DefaultConfig() Config {
	return Config{
		PBCFLatentDim:  pbcf.DefaultLatentDim,
		PBCFIterations: pbcf.DefaultIterations,
		PBCFSeed:       pbcf.DefaultSeed,
		StrongLimit:    2,
	}
}

// Engine is the taste-inference facade. It is safe for concurrent use.
type Engine struct {
	cfg    Config
	store  Store
	logger zerolog.Logger
	model  *pcf.Model
	prefix *pbcf.Engine

	// Catalog snapshot, swapped whole by Refresh.
	mu      sync.RWMutex
	space   *feature.Space
	itemIDs []string
	items   map[string]*catalog.Item
	vectors map[string][]float64

	// Prefix-model retrain bookkeeping.
	trainMu     sync.Mutex
	ratingCount int64

	rng   *rand.Rand
	rngMu sync.Mutex
}

// New creates an engine. Zero config fields fall back to defaults.
func New(cfg Config, st Store, logger zerolog.Logger) *Engine {
	def := DefaultConfig()
	if cfg.PBCFLatentDim <= 0 {
		cfg.PBCFLatentDim = def.PBCFLatentDim
	}
	if cfg.PBCFIterations <= 0 {
		cfg.PBCFIterations = def.PBCFIterations
	}
	if cfg.PBCFSeed == 0 {
		cfg.PBCFSeed = def.PBCFSeed
	}
	if cfg.StrongLimit <= 0 {
		cfg.StrongLimit = def.StrongLimit
	}

	return &Engine{
		cfg:    cfg,
		store:  st,
		logger: logger.With().Str("component", "recommend").Logger(),
		model:  pcf.New(pcf.DefaultConfig()),
		prefix: pbcf.New(pbcf.Config{
			LatentDim:  cfg.PBCFLatentDim,
			Iterations: cfg.PBCFIterations,
			Seed:       cfg.PBCFSeed,
		}),
		ratingCount: -1,
		rng:         rand.New(rand.NewSource(cfg.PBCFSeed)), //nolint:gosec // wildcard sampling needs no crypto
	}
}

// Refresh rebuilds the feature space and vector table from the catalog and
// retrains the prefix model when the rating log moved. An empty catalog is
// not an error; the engine just stays not ready.
func (e *Engine) Refresh(ctx context.Context) error {
	items, err := e.store.AllProducts(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	if len(items) == 0 {
		e.mu.Lock()
		e.space = nil
		e.itemIDs = nil
		e.items = nil
		e.vectors = nil
		e.mu.Unlock()
		e.logger.Warn().Msg("catalog is empty, recommendations unavailable")
	} else {
		space, err := feature.Build(items)
		if err != nil {
			return fmt.Errorf("build feature space: %w", err)
		}

		vecs := make([][]float64, len(items))
		g, _ := errgroup.WithContext(ctx)
		g.SetLimit(runtime.GOMAXPROCS(0))
		chunk := (len(items) + runtime.GOMAXPROCS(0) - 1) / runtime.GOMAXPROCS(0)
		if chunk < 1 {
			chunk = 1
		}
		for lo := 0; lo < len(items); lo += chunk {
			lo, hi := lo, lo+chunk
			if hi > len(items) {
				hi = len(items)
			}
			g.Go(func() error {
				for i := lo; i < hi; i++ {
					vecs[i] = space.Vectorize(items[i])
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return fmt.Errorf("vectorize catalog: %w", err)
		}

		ids := make([]string, len(items))
		byID := make(map[string]*catalog.Item, len(items))
		vecByID := make(map[string][]float64, len(items))
		for i, it := range items {
			id := it.ID.Hex()
			ids[i] = id
			byID[id] = it
			vecByID[id] = vecs[i]
		}

		e.mu.Lock()
		e.space = space
		e.itemIDs = ids
		e.items = byID
		e.vectors = vecByID
		e.mu.Unlock()

		e.logger.Info().
			Int("items", len(items)).
			Int("dimensions", space.Dim()).
			Msg("feature space rebuilt")
	}

	if _, err := e.RefreshPrefixModel(ctx, "refresh", false); err != nil {
		return err
	}
	return nil
}

// Ready reports whether a feature space is loaded.
func (e *Engine) Ready() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.space != nil && e.space.Dim() > 0
}

// Dim returns the current feature-space width, 0 when not ready.
func (e *Engine) Dim() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.space == nil {
		return 0
	}
	return e.space.Dim()
}

// CatalogIDs returns the item ids of the current snapshot in stable order.
func (e *Engine) CatalogIDs() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, len(e.itemIDs))
	copy(out, e.itemIDs)
	return out
}

// ItemByID returns a snapshot item, or nil when unknown.
func (e *Engine) ItemByID(id string) *catalog.Item {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.items[id]
}

// VectorFor returns an item's feature vector from the current snapshot.
func (e *Engine) VectorFor(itemID string) ([]float64, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v, ok := e.vectors[itemID]
	return v, ok
}

// FeatureKeys returns the current space's feature keys in index order.
func (e *Engine) FeatureKeys() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.space == nil {
		return nil
	}
	return e.space.Keys()
}

// InitStateBlob serializes a fresh model state sized to the current space.
func (e *Engine) InitStateBlob() ([]byte, error) {
	return e.EncodeStateBlob(e.model.InitState(e.Dim()))
}

// EncodeStateBlob serializes session model state.
func (e *Engine) EncodeStateBlob(st *pcf.State) ([]byte, error) {
	raw, err := json.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("encode model state: %w", err)
	}
	return raw, nil
}

// DecodeStateBlob deserializes session model state. Unreadable blobs and
// blobs from an older schema or a differently sized space are replaced with
// a fresh state; stale taste must not be applied to a reshaped space.
func (e *Engine) DecodeStateBlob(raw []byte) *pcf.State {
	dim := e.Dim()
	if len(raw) == 0 {
		return e.model.InitState(dim)
	}
	var st pcf.State
	if err := json.Unmarshal(raw, &st); err != nil {
		e.logger.Warn().Err(err).Msg("model state blob unreadable, reinitializing")
		return e.model.InitState(dim)
	}
	if !st.ValidFor(dim) {
		e.logger.Info().
			Int("blob_version", st.SchemaVersion).
			Int("blob_dim", len(st.UserVec)).
			Int("space_dim", dim).
			Msg("model state stale, reinitializing")
		return e.model.InitState(dim)
	}
	return &st
}

// UpdateStateWithSelection folds an item into the state. Returns false when
// the item has no vector in the current snapshot; the state is untouched.
func (e *Engine) UpdateStateWithSelection(st *pcf.State, itemID string, isException bool) bool {
	vec, ok := e.VectorFor(itemID)
	if !ok {
		return false
	}
	e.model.UpdateWithSelection(st, vec, isException)
	return true
}

// UpdateStateWithRating nudges the state's bias toward a 1-5 rating.
func (e *Engine) UpdateStateWithRating(st *pcf.State, rating float64) {
	e.model.UpdateWithPrefixRating(st, rating)
}

// MetricsForState computes coherence over the selected items and the
// predicted next prefix rating for the state.
func (e *Engine) MetricsForState(st *pcf.State, selectedIDs []string) SessionMetrics {
	vecs := e.vectorsFor(selectedIDs)
	return SessionMetrics{
		CoherenceScore:        pcf.CoherenceScore(vecs),
		PredictedPrefixRating: e.model.PredictPrefixRating(st),
		SelectionCount:        len(selectedIDs),
	}
}

// ScoreCandidates scores candidate items against a state and returns them
// ordered by score descending, id descending on ties. Unknown ids are
// dropped.
func (e *Engine) ScoreCandidates(st *pcf.State, candidateIDs []string) []store.ScoredID {
	e.mu.RLock()
	defer e.mu.RUnlock()

	scored := make([]store.ScoredID, 0, len(candidateIDs))
	for _, id := range candidateIDs {
		vec, ok := e.vectors[id]
		if !ok {
			continue
		}
		scored = append(scored, store.ScoredID{
			ProductID: id,
			Score:     e.model.ScoreItem(st, vec),
		})
	}
	sortScoredDesc(scored)
	return scored
}

// ScoreItems scores loaded items against a state, in the ScoreCandidates
// order. Items missing from the snapshot are vectorized live, so a round can
// score a candidate ingested after the last refresh.
func (e *Engine) ScoreItems(st *pcf.State, items []*catalog.Item) []store.ScoredID {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.space == nil {
		return nil
	}

	scored := make([]store.ScoredID, 0, len(items))
	for _, it := range items {
		id := it.ID.Hex()
		vec, ok := e.vectors[id]
		if !ok {
			vec = e.space.Vectorize(it)
		}
		scored = append(scored, store.ScoredID{
			ProductID: id,
			Score:     e.model.ScoreItem(st, vec),
		})
	}
	sortScoredDesc(scored)
	return scored
}

// UpdateStateWithItem folds a loaded item into the state, vectorizing live
// when the snapshot has no cached vector for it. A no-op before the first
// refresh.
func (e *Engine) UpdateStateWithItem(st *pcf.State, it *catalog.Item, isException bool) {
	e.mu.RLock()
	vec, ok := e.vectors[it.ID.Hex()]
	if !ok && e.space != nil {
		vec = e.space.Vectorize(it)
		ok = true
	}
	e.mu.RUnlock()

	if ok {
		e.model.UpdateWithSelection(st, vec, isException)
	}
}

// sortScoredDesc orders by score descending, then id descending, the same
// total order the round ranker has always used.
func sortScoredDesc(scored []store.ScoredID) {
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].ProductID > scored[j].ProductID
	})
}

// vectorsFor collects vectors of the ids present in the snapshot.
func (e *Engine) vectorsFor(ids []string) [][]float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	vecs := make([][]float64, 0, len(ids))
	for _, id := range ids {
		if v, ok := e.vectors[id]; ok {
			vecs = append(vecs, v)
		}
	}
	return vecs
}

// PrefixModelTrained reports whether the prefix factorization holds a model.
func (e *Engine) PrefixModelTrained() bool {
	return e.prefix.Trained()
}

// Stats reports the engine's current shape for the stats endpoint.
func (e *Engine) Stats() Stats {
	e.mu.RLock()
	size := len(e.itemIDs)
	dim := 0
	if e.space != nil {
		dim = e.space.Dim()
	}
	e.mu.RUnlock()

	e.trainMu.Lock()
	count := e.ratingCount
	e.trainMu.Unlock()
	if count < 0 {
		count = 0
	}

	return Stats{
		CatalogSize: size,
		FeatureDim:  dim,
		RatingCount: count,
		PrefixModel: e.prefix.Stats(),
	}
}

// RefreshPrefixModel retrains the prefix factorization when the rating log
// has moved since the last train, or unconditionally when force is set.
// Returns true when a train ran. Concurrent triggers serialize.
func (e *Engine) RefreshPrefixModel(ctx context.Context, trigger string, force bool) (bool, error) {
	e.trainMu.Lock()
	defer e.trainMu.Unlock()

	count, err := e.store.CountPrefixRatings(ctx)
	if err != nil {
		return false, fmt.Errorf("count prefix ratings: %w", err)
	}
	if !force && count == e.ratingCount {
		return false, nil
	}

	start := time.Now()
	obs, err := e.buildObservations(ctx)
	if err != nil {
		metrics.RecordPrefixModelTraining(trigger, "error", time.Since(start), int(count), 0)
		return false, err
	}
	if err := e.prefix.Train(ctx, obs); err != nil {
		metrics.RecordPrefixModelTraining(trigger, "error", time.Since(start), int(count), 0)
		return false, fmt.Errorf("train prefix model: %w", err)
	}
	e.ratingCount = count

	stats := e.prefix.Stats()
	metrics.RecordPrefixModelTraining(trigger, "success", time.Since(start), int(count), stats.MissingRatio)
	e.logger.Info().
		Str("trigger", trigger).
		Int64("ratings", count).
		Int("observations", len(obs)).
		Int("prefixes", stats.PrefixCount).
		Int("users", stats.UserCount).
		Float64("missing_ratio", stats.MissingRatio).
		Dur("elapsed", time.Since(start)).
		Msg("prefix model retrained")
	return true, nil
}

// buildObservations replays the rating log into (prefix, user, rating)
// triples. A rating's prefix is the ids its session had selected by the
// rating's timestamp; ratings with no prior selections carry no signal and
// are skipped.
func (e *Engine) buildObservations(ctx context.Context) ([]pbcf.Observation, error) {
	ratings, err := e.store.AllPrefixRatings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load prefix ratings: %w", err)
	}
	if len(ratings) == 0 {
		return nil, nil
	}

	type sessionLog struct {
		userID     string
		selections []*store.Selection
	}
	logs := make(map[string]*sessionLog)

	obs := make([]pbcf.Observation, 0, len(ratings))
	for _, r := range ratings {
		sid := r.SessionID.Hex()
		lg, ok := logs[sid]
		if !ok {
			sess, err := e.store.GetSession(ctx, sid)
			if err != nil {
				if errors.Is(err, core.ErrNotFound) {
					continue
				}
				return nil, fmt.Errorf("load session %s: %w", sid, err)
			}
			sels, err := e.store.SelectionsForSession(ctx, sid)
			if err != nil {
				return nil, fmt.Errorf("load selections %s: %w", sid, err)
			}
			lg = &sessionLog{userID: sess.UserID.Hex(), selections: sels}
			logs[sid] = lg
		}

		var prefixIDs []string
		for _, sel := range lg.selections {
			if !sel.CreatedAt.After(r.CreatedAt) {
				prefixIDs = append(prefixIDs, sel.ProductID.Hex())
			}
		}
		if len(prefixIDs) == 0 {
			continue
		}
		obs = append(obs, pbcf.Observation{
			PrefixKey: pbcf.PrefixKey(prefixIDs),
			UserID:    lg.userID,
			Rating:    float64(r.Rating),
		})
	}
	return obs, nil
}
