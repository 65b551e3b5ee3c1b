// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

package recommend

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/decidio/duel/internal/catalog"
	"github.com/decidio/duel/internal/core"
	"github.com/decidio/duel/internal/metrics"
	"github.com/decidio/duel/internal/recommend/pbcf"
	"github.com/decidio/duel/internal/recommend/pcf"
	"github.com/decidio/duel/internal/store"
)

const (
	profileHiddenTopN = 5
	profileGemsTopN   = 5
)

// SelectItem records an item choice for a session: the selection is
// appended to the log, the item vector is folded into the session's model
// state, and the refreshed metrics are returned.
func (e *Engine) SelectItem(ctx context.Context, sessionID, itemID string, isException bool) (*SessionMetrics, error) {
	if !e.Ready() {
		return nil, core.ModelNotReadyf("feature space not built")
	}
	productOID, err := primitive.ObjectIDFromHex(itemID)
	if err != nil {
		return nil, core.Validationf("invalid product id %q", itemID)
	}

	sess, err := e.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	vec, ok := e.VectorFor(itemID)
	if !ok {
		// Items ingested after the last refresh have no snapshot vector;
		// vectorize against the current space on the fly.
		item, err := e.store.GetProduct(ctx, itemID)
		if err != nil {
			return nil, err
		}
		vec, err = e.vectorizeLive(item)
		if err != nil {
			return nil, err
		}
	}

	st := e.DecodeStateBlob(sess.State)
	e.model.UpdateWithSelection(st, vec, isException)

	if _, err := e.store.AppendSelection(ctx, &store.Selection{
		SessionID:   sess.ID,
		ProductID:   productOID,
		IsException: isException,
		CreatedAt:   time.Now().UTC(),
	}); err != nil {
		return nil, err
	}
	if err := e.persistState(ctx, sessionID, st); err != nil {
		return nil, err
	}
	metrics.RecordProfileUpdate("selection")

	ids, err := e.selectedIDs(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	m := e.MetricsForState(st, ids)
	return &m, nil
}

// RateSession records a 1-5 satisfaction rating for the session's selection
// sequence so far and nudges the model's bias toward it.
func (e *Engine) RateSession(ctx context.Context, sessionID string, rating int, tags []string) (*SessionMetrics, error) {
	if rating < 1 || rating > 5 {
		return nil, core.Validationf("rating must be between 1 and 5, got %d", rating)
	}

	sess, err := e.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	st := e.DecodeStateBlob(sess.State)
	e.model.UpdateWithPrefixRating(st, float64(rating))

	if _, err := e.store.AppendPrefixRating(ctx, &store.PrefixRating{
		SessionID: sess.ID,
		Rating:    rating,
		Tags:      tags,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		return nil, err
	}
	if err := e.persistState(ctx, sessionID, st); err != nil {
		return nil, err
	}
	metrics.RecordProfileUpdate("rating")

	ids, err := e.selectedIDs(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	m := e.MetricsForState(st, ids)
	return &m, nil
}

// Recommend produces the strong/wildcard answer for a session. Strong picks
// come from the top of the ranking; the wildcard is drawn uniformly from
// the bottom eighth (at least ten items) so low-scored territory keeps
// getting probed. When the prefix factorization knows this user, its
// prediction for the would-be prefix replaces the online score.
func (e *Engine) Recommend(ctx context.Context, sessionID string, limit int) (*Recommendation, error) {
	if !e.Ready() {
		return nil, core.ModelNotReadyf("feature space not built")
	}
	if limit <= 0 {
		limit = e.cfg.StrongLimit
	}

	sess, err := e.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	st := e.DecodeStateBlob(sess.State)

	selectedIDs, err := e.selectedIDs(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	selected := make(map[string]struct{}, len(selectedIDs))
	for _, id := range selectedIDs {
		selected[id] = struct{}{}
	}

	m := e.MetricsForState(st, selectedIDs)
	rec := &Recommendation{
		Strong:                []ScoredItem{},
		CoherenceScore:        m.CoherenceScore,
		PredictedPrefixRating: m.PredictedPrefixRating,
	}

	var candidates []string
	for _, id := range e.CatalogIDs() {
		if _, used := selected[id]; !used {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return rec, nil
	}

	preds, havePreds := e.prefix.PredictForUser(sess.UserID.Hex())
	base := pbcf.PrefixKey(selectedIDs)

	scored := make([]store.ScoredID, 0, len(candidates))
	for _, id := range candidates {
		vec, ok := e.VectorFor(id)
		if !ok {
			continue
		}
		key := id
		if base != "" {
			key = base + "-" + id
		}
		score := e.model.ScoreItem(st, vec)
		if havePreds {
			if p, ok := preds[key]; ok {
				score = p
			}
		}
		scored = append(scored, store.ScoredID{ProductID: id, Score: score})
	}
	sortScoredDesc(scored)

	for i := 0; i < len(scored) && i < limit; i++ {
		rec.Strong = append(rec.Strong, ScoredItem{
			Item:  e.ItemByID(scored[i].ProductID),
			Score: scored[i].Score,
		})
	}

	tail := len(scored) / 8
	if tail < 10 {
		tail = 10
	}
	if tail > len(scored) {
		tail = len(scored)
	}
	pool := scored[len(scored)-tail:]
	e.rngMu.Lock()
	pick := pool[e.rng.Intn(len(pool))]
	e.rngMu.Unlock()
	rec.Wildcard = &ScoredItem{Item: e.ItemByID(pick.ProductID), Score: pick.Score}

	return rec, nil
}

// SessionProfile reports the learned taste profile of a session: hidden
// preferences the history alone does not explain, hidden-gem items those
// dimensions point at, and the session metrics.
func (e *Engine) SessionProfile(ctx context.Context, sessionID string) (*Profile, error) {
	if !e.Ready() {
		return nil, core.ModelNotReadyf("feature space not built")
	}

	sess, err := e.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	st := e.DecodeStateBlob(sess.State)

	selectedIDs, err := e.selectedIDs(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	hidden := e.model.DetectHiddenPreferences(st, e.vectorsFor(selectedIDs), e.FeatureKeys(), profileHiddenTopN)

	prefs := make([]ProfilePreference, 0, len(hidden))
	for _, h := range hidden {
		label, ok := catalog.HumanizeFeature(h.Feature)
		if !ok || label == "" {
			continue
		}
		prefs = append(prefs, ProfilePreference{
			Label:   label,
			Weight:  h.Weight,
			Latency: h.Latency,
		})
	}

	gems := e.hiddenGems(st, hidden, selectedIDs, profileGemsTopN)

	p := &Profile{
		SessionMetrics:    e.MetricsForState(st, selectedIDs),
		HiddenPreferences: prefs,
		HiddenGems:        gems,
	}
	return p, nil
}

// HiddenPreferencesForState exposes raw hidden preferences for a state;
// the game layer folds them into explanations and summaries.
func (e *Engine) HiddenPreferencesForState(st *pcf.State, selectedIDs []string, topN int) []pcf.HiddenPreference {
	return e.model.DetectHiddenPreferences(st, e.vectorsFor(selectedIDs), e.FeatureKeys(), topN)
}

// HiddenGemsForState scores catalog items on the hidden dimensions alone,
// skipping excludeIDs. The game summary passes its recommendation list in
// the exclusions so gems never repeat it.
func (e *Engine) HiddenGemsForState(st *pcf.State, hidden []pcf.HiddenPreference, excludeIDs []string, topN int) []ScoredItem {
	return e.hiddenGems(st, hidden, excludeIDs, topN)
}

// hiddenGems maps the model's gem scoring over the current snapshot.
func (e *Engine) hiddenGems(st *pcf.State, hidden []pcf.HiddenPreference, selectedIDs []string, topN int) []ScoredItem {
	e.mu.RLock()
	items := make([]pcf.ItemVector, 0, len(e.itemIDs))
	for _, id := range e.itemIDs {
		items = append(items, pcf.ItemVector{ID: id, Vec: e.vectors[id]})
	}
	e.mu.RUnlock()

	gems := e.model.HiddenGemItems(st, hidden, selectedIDs, items, topN)
	out := make([]ScoredItem, 0, len(gems))
	for _, g := range gems {
		out = append(out, ScoredItem{Item: e.ItemByID(g.ID), Score: g.Score})
	}
	return out
}

// vectorizeLive vectorizes an item against the current space without
// touching the snapshot table.
func (e *Engine) vectorizeLive(item *catalog.Item) ([]float64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.space == nil {
		return nil, core.ModelNotReadyf("feature space not built")
	}
	return e.space.Vectorize(item), nil
}

// persistState writes the state blob back to the session document.
func (e *Engine) persistState(ctx context.Context, sessionID string, st *pcf.State) error {
	raw, err := e.EncodeStateBlob(st)
	if err != nil {
		return err
	}
	if err := e.store.UpdateSessionState(ctx, sessionID, raw); err != nil {
		return fmt.Errorf("persist model state: %w", err)
	}
	return nil
}

// selectedIDs returns a session's selected product ids oldest first.
func (e *Engine) selectedIDs(ctx context.Context, sessionID string) ([]string, error) {
	sels, err := e.store.SelectionsForSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(sels))
	for _, s := range sels {
		ids = append(ids, s.ProductID.Hex())
	}
	return ids, nil
}
