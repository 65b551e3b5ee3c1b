// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

package testinfra

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/decidio/duel/internal/catalog"
	"github.com/decidio/duel/internal/core"
	"github.com/decidio/duel/internal/store"
)

// MemStore is an in-memory store.Store for tests.
type MemStore struct {
	mu sync.Mutex

	products map[string]*catalog.Item // keyed by hex id
	users    map[string]*store.User
	sessions map[string]*store.Session

	selections []*store.Selection
	ratings    []*store.PrefixRating

	games  map[string]*store.Game
	rounds []*store.GameRound
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		products: make(map[string]*catalog.Item),
		users:    make(map[string]*store.User),
		sessions: make(map[string]*store.Session),
		games:    make(map[string]*store.Game),
	}
}

var _ store.Store = (*MemStore)(nil)

// parseID mirrors the mongo adapter: bad hex is a validation error.
func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, core.Validationf("invalid id %q", id)
	}
	return oid, nil
}

// ---- ProductStore ----

// SeedProducts loads items directly, assigning ids to any item without one.
func (m *MemStore) SeedProducts(items []*catalog.Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range items {
		if it.ID.IsZero() {
			it.ID = primitive.NewObjectID()
		}
		m.products[it.ID.Hex()] = it
	}
}

func (m *MemStore) AllProducts(_ context.Context) ([]*catalog.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := make([]*catalog.Item, 0, len(m.products))
	for _, it := range m.products {
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].ID.Hex() < items[j].ID.Hex()
	})
	return items, nil
}

func (m *MemStore) ListProducts(ctx context.Context, category string, limit, offset int) ([]*catalog.Item, error) {
	all, _ := m.AllProducts(ctx)

	filtered := make([]*catalog.Item, 0, len(all))
	for _, it := range all {
		if category == "" || it.Category == category {
			filtered = append(filtered, it)
		}
	}
	if offset >= len(filtered) {
		return []*catalog.Item{}, nil
	}
	filtered = filtered[offset:]
	if limit > 0 && limit < len(filtered) {
		filtered = filtered[:limit]
	}
	return filtered, nil
}

func (m *MemStore) CountProducts(_ context.Context, category string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for _, it := range m.products {
		if category == "" || it.Category == category {
			n++
		}
	}
	return n, nil
}

func (m *MemStore) GetProduct(_ context.Context, id string) (*catalog.Item, error) {
	if _, err := parseID(id); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	it, ok := m.products[id]
	if !ok {
		return nil, core.NotFoundf("product %s not found", id)
	}
	return it, nil
}

func (m *MemStore) GetProductsByIDs(_ context.Context, ids []string) ([]*catalog.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := make([]*catalog.Item, 0, len(ids))
	for _, id := range ids {
		if it, ok := m.products[id]; ok {
			items = append(items, it)
		}
	}
	return items, nil
}

func (m *MemStore) UpsertProduct(_ context.Context, item *catalog.Item) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.products {
		if existing.Category == item.Category && existing.SourceID == item.SourceID {
			item.ID = existing.ID
			item.CreatedAt = existing.CreatedAt
			m.products[existing.ID.Hex()] = item
			return false, nil
		}
	}
	if item.ID.IsZero() {
		item.ID = primitive.NewObjectID()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	m.products[item.ID.Hex()] = item
	return true, nil
}

func (m *MemStore) VerifyProductSchema(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int
	for _, it := range m.products {
		if it.Category == "" {
			n++
		}
	}
	if n > 0 {
		return core.Schemaf("%d products have no category; run the catalog migration before starting", n)
	}
	return nil
}

// ---- UserStore ----

func (m *MemStore) CreateUser(_ context.Context, name string) (*store.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u := &store.User{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Sessions:  []primitive.ObjectID{},
		CreatedAt: time.Now().UTC(),
	}
	m.users[u.ID.Hex()] = u
	return cloneUser(u), nil
}

func (m *MemStore) GetUser(_ context.Context, id string) (*store.User, error) {
	if _, err := parseID(id); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, core.NotFoundf("user %s not found", id)
	}
	return cloneUser(u), nil
}

func (m *MemStore) CreateSession(_ context.Context, userID string, state []byte) (*store.Session, error) {
	uid, err := parseID(userID)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	sess := &store.Session{
		ID:            primitive.NewObjectID(),
		UserID:        uid,
		State:         append([]byte(nil), state...),
		Selections:    []primitive.ObjectID{},
		PrefixRatings: []primitive.ObjectID{},
		CreatedAt:     time.Now().UTC(),
	}
	m.sessions[sess.ID.Hex()] = sess
	if u, ok := m.users[userID]; ok {
		u.Sessions = append(u.Sessions, sess.ID)
	}
	return cloneSession(sess), nil
}

func (m *MemStore) GetSession(_ context.Context, id string) (*store.Session, error) {
	if _, err := parseID(id); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok {
		return nil, core.NotFoundf("session %s not found", id)
	}
	return cloneSession(sess), nil
}

func (m *MemStore) UpdateSessionState(_ context.Context, sessionID string, state []byte) error {
	if _, err := parseID(sessionID); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[sessionID]
	if !ok {
		return core.NotFoundf("session %s not found", sessionID)
	}
	sess.State = append([]byte(nil), state...)
	return nil
}

// ---- LearningStore ----

func (m *MemStore) AppendSelection(_ context.Context, sel *store.Selection) (*store.Selection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *sel
	cp.ID = primitive.NewObjectID()
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	m.selections = append(m.selections, &cp)
	if sess, ok := m.sessions[cp.SessionID.Hex()]; ok {
		sess.Selections = append(sess.Selections, cp.ID)
	}
	out := cp
	return &out, nil
}

func (m *MemStore) AppendPrefixRating(_ context.Context, rating *store.PrefixRating) (*store.PrefixRating, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *rating
	cp.ID = primitive.NewObjectID()
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	m.ratings = append(m.ratings, &cp)
	if sess, ok := m.sessions[cp.SessionID.Hex()]; ok {
		sess.PrefixRatings = append(sess.PrefixRatings, cp.ID)
	}
	out := cp
	return &out, nil
}

func (m *MemStore) SelectionsForSession(_ context.Context, sessionID string) ([]*store.Selection, error) {
	if _, err := parseID(sessionID); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*store.Selection
	for _, sel := range m.selections {
		if sel.SessionID.Hex() == sessionID {
			cp := *sel
			out = append(out, &cp)
		}
	}
	// Stable on CreatedAt: appends within the same instant keep log order.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemStore) AllPrefixRatings(_ context.Context) ([]*store.PrefixRating, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*store.PrefixRating, 0, len(m.ratings))
	for _, r := range m.ratings {
		cp := *r
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemStore) CountPrefixRatings(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.ratings)), nil
}

// ---- GameStore ----

func (m *MemStore) CreateGame(_ context.Context, game *store.Game) (*store.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := cloneGame(game)
	cp.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = now
	}
	cp.UpdatedAt = now
	m.games[cp.ID.Hex()] = cp
	return cloneGame(cp), nil
}

func (m *MemStore) GetGame(_ context.Context, id string) (*store.Game, error) {
	if _, err := parseID(id); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.games[id]
	if !ok {
		return nil, core.NotFoundf("game %s not found", id)
	}
	return cloneGame(g), nil
}

func (m *MemStore) SetGameOnboardingPool(_ context.Context, gameID string, poolIDs []string) error {
	return m.updateGame(gameID, func(g *store.Game) {
		g.OnboardingPoolIDs = append([]string(nil), poolIDs...)
	})
}

func (m *MemStore) CompleteGameOnboarding(_ context.Context, gameID string, selectedIDs []string, rating int, state []byte) error {
	return m.updateGame(gameID, func(g *store.Game) {
		g.OnboardingSelectedIDs = append([]string(nil), selectedIDs...)
		g.OnboardingRating = &rating
		g.ModelState = append([]byte(nil), state...)
		g.Status = store.GameStatusReady
	})
}

func (m *MemStore) SetGameStatus(_ context.Context, gameID, status string) error {
	return m.updateGame(gameID, func(g *store.Game) {
		g.Status = status
	})
}

func (m *MemStore) ApplyGameRoundResult(_ context.Context, gameID string, currentRound, humanScore, aiScore int, status string, state []byte) error {
	return m.updateGame(gameID, func(g *store.Game) {
		g.CurrentRound = currentRound
		g.HumanScore = humanScore
		g.AIScore = aiScore
		g.Status = status
		g.ModelState = append([]byte(nil), state...)
	})
}

func (m *MemStore) updateGame(gameID string, apply func(*store.Game)) error {
	if _, err := parseID(gameID); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.games[gameID]
	if !ok {
		return core.NotFoundf("game %s not found", gameID)
	}
	apply(g)
	g.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MemStore) LeaderboardGames(_ context.Context, limit int) ([]*store.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var completed []*store.Game
	for _, g := range m.games {
		if g.Status == store.GameStatusCompleted {
			completed = append(completed, cloneGame(g))
		}
	}
	sort.Slice(completed, func(i, j int) bool {
		di, dj := completed[i].ScoreDifference(), completed[j].ScoreDifference()
		if di != dj {
			return di > dj
		}
		if completed[i].HumanScore != completed[j].HumanScore {
			return completed[i].HumanScore > completed[j].HumanScore
		}
		return completed[i].CreatedAt.Before(completed[j].CreatedAt)
	})
	if limit > 0 && limit < len(completed) {
		completed = completed[:limit]
	}
	return completed, nil
}

func (m *MemStore) PlayerGames(_ context.Context, playerName string, limit int) ([]*store.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var games []*store.Game
	for _, g := range m.games {
		if g.PlayerName == playerName {
			games = append(games, cloneGame(g))
		}
	}
	sort.Slice(games, func(i, j int) bool {
		return games[i].CreatedAt.After(games[j].CreatedAt)
	})
	if limit > 0 && limit < len(games) {
		games = games[:limit]
	}
	return games, nil
}

func (m *MemStore) UpsertGameRound(_ context.Context, round *store.GameRound) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.rounds {
		if existing.GameID == round.GameID && existing.RoundNumber == round.RoundNumber {
			return nil // $setOnInsert semantics: existing round untouched
		}
	}
	cp := cloneRound(round)
	cp.ID = primitive.NewObjectID()
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	m.rounds = append(m.rounds, cp)
	return nil
}

func (m *MemStore) GetGameRound(_ context.Context, gameID string, roundNumber int) (*store.GameRound, error) {
	if _, err := parseID(gameID); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.rounds {
		if r.GameID.Hex() == gameID && r.RoundNumber == roundNumber {
			return cloneRound(r), nil
		}
	}
	return nil, core.NotFoundf("round %d of game %s not found", roundNumber, gameID)
}

func (m *MemStore) CompleteGameRound(_ context.Context, roundID string, result *store.RoundCompletion) error {
	if _, err := parseID(roundID); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.rounds {
		if r.ID.Hex() != roundID || r.Completed {
			continue
		}
		r.HumanPickID = result.HumanPickID
		r.AIPickID = result.AIPickID
		r.AIConfidence = result.AIConfidence
		r.AITopK = append([]store.ScoredID(nil), result.AITopK...)
		r.AITop3IDs = append([]string(nil), result.AITop3IDs...)
		r.AIRankOfPick = result.AIRankOfPick
		r.AICorrect = result.AICorrect
		r.AIExact = result.AIExact
		r.HumanPoints = result.HumanPoints
		r.AIPoints = result.AIPoints
		r.PostMetrics = result.PostMetrics
		r.Completed = true
		at := result.CompletedAt
		r.CompletedAt = &at
		return nil
	}
	return core.NotFoundf("open round %s not found", roundID)
}

func (m *MemStore) CompletedPickIDs(_ context.Context, gameID string) ([]string, error) {
	if _, err := parseID(gameID); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var completed []*store.GameRound
	for _, r := range m.rounds {
		if r.GameID.Hex() == gameID && r.Completed {
			completed = append(completed, r)
		}
	}
	sort.Slice(completed, func(i, j int) bool {
		return completed[i].RoundNumber < completed[j].RoundNumber
	})
	ids := make([]string, 0, len(completed))
	for _, r := range completed {
		ids = append(ids, r.HumanPickID)
	}
	return ids, nil
}

func (m *MemStore) OpenRound(_ context.Context, gameID string) (*store.GameRound, error) {
	if _, err := parseID(gameID); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var open *store.GameRound
	for _, r := range m.rounds {
		if r.GameID.Hex() != gameID || r.Completed {
			continue
		}
		if open == nil || r.RoundNumber < open.RoundNumber {
			open = r
		}
	}
	if open == nil {
		return nil, core.NotFoundf("no open round for game %s", gameID)
	}
	return cloneRound(open), nil
}

func (m *MemStore) RoundsForGame(_ context.Context, gameID string) ([]*store.GameRound, error) {
	if _, err := parseID(gameID); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var rounds []*store.GameRound
	for _, r := range m.rounds {
		if r.GameID.Hex() == gameID {
			rounds = append(rounds, cloneRound(r))
		}
	}
	sort.Slice(rounds, func(i, j int) bool {
		return rounds[i].RoundNumber < rounds[j].RoundNumber
	})
	return rounds, nil
}

// ---- clone helpers ----
// Reads hand out copies so caller mutations cannot reach the store, the
// same isolation a driver decode gives.

func cloneUser(u *store.User) *store.User {
	cp := *u
	cp.Sessions = append([]primitive.ObjectID(nil), u.Sessions...)
	return &cp
}

func cloneSession(s *store.Session) *store.Session {
	cp := *s
	cp.State = append([]byte(nil), s.State...)
	cp.Selections = append([]primitive.ObjectID(nil), s.Selections...)
	cp.PrefixRatings = append([]primitive.ObjectID(nil), s.PrefixRatings...)
	return &cp
}

func cloneGame(g *store.Game) *store.Game {
	cp := *g
	cp.ModelState = append([]byte(nil), g.ModelState...)
	cp.OnboardingPoolIDs = append([]string(nil), g.OnboardingPoolIDs...)
	cp.OnboardingSelectedIDs = append([]string(nil), g.OnboardingSelectedIDs...)
	if g.OnboardingRating != nil {
		r := *g.OnboardingRating
		cp.OnboardingRating = &r
	}
	return &cp
}

func cloneRound(r *store.GameRound) *store.GameRound {
	cp := *r
	cp.CandidateIDs = append([]string(nil), r.CandidateIDs...)
	cp.AITopK = append([]store.ScoredID(nil), r.AITopK...)
	cp.AITop3IDs = append([]string(nil), r.AITop3IDs...)
	if r.CompletedAt != nil {
		at := *r.CompletedAt
		cp.CompletedAt = &at
	}
	return &cp
}
