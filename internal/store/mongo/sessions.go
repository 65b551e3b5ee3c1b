// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/decidio/duel/internal/core"
	"github.com/decidio/duel/internal/store"
)

// CreateUser inserts a player identity.
func (s *Store) CreateUser(ctx context.Context, name string) (u *store.User, err error) {
	start := time.Now()
	defer func() { observe("insert", collUsers, start, err) }()

	u = &store.User{
		Name:      name,
		Sessions:  []primitive.ObjectID{},
		CreatedAt: time.Now().UTC(),
	}
	res, err := s.db.Collection(collUsers).InsertOne(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	u.ID = res.InsertedID.(primitive.ObjectID)
	return u, nil
}

// GetUser loads one user by hex id.
func (s *Store) GetUser(ctx context.Context, id string) (u *store.User, err error) {
	start := time.Now()
	defer func() { observe("find_one", collUsers, start, err) }()

	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	u = &store.User{}
	err = s.db.Collection(collUsers).FindOne(ctx, bson.M{"_id": oid}).Decode(u)
	if notFound(err) {
		return nil, core.NotFoundf("user %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user %s: %w", id, err)
	}
	return u, nil
}

// CreateSession inserts a learning session seeded with the given model
// state and links it into the owning user's sessions list.
func (s *Store) CreateSession(ctx context.Context, userID string, state []byte) (sess *store.Session, err error) {
	start := time.Now()
	defer func() { observe("insert", collSessions, start, err) }()

	uid, err := parseID(userID)
	if err != nil {
		return nil, err
	}
	sess = &store.Session{
		UserID:        uid,
		State:         state,
		Selections:    []primitive.ObjectID{},
		PrefixRatings: []primitive.ObjectID{},
		CreatedAt:     time.Now().UTC(),
	}
	res, err := s.db.Collection(collSessions).InsertOne(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	sess.ID = res.InsertedID.(primitive.ObjectID)

	_, err = s.db.Collection(collUsers).UpdateByID(ctx, uid,
		bson.M{"$push": bson.M{"sessions": sess.ID}})
	if err != nil {
		return nil, fmt.Errorf("failed to link session to user %s: %w", userID, err)
	}
	return sess, nil
}

// GetSession loads one session by hex id.
func (s *Store) GetSession(ctx context.Context, id string) (sess *store.Session, err error) {
	start := time.Now()
	defer func() { observe("find_one", collSessions, start, err) }()

	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	sess = &store.Session{}
	err = s.db.Collection(collSessions).FindOne(ctx, bson.M{"_id": oid}).Decode(sess)
	if notFound(err) {
		return nil, core.NotFoundf("session %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}
	return sess, nil
}

// UpdateSessionState replaces a session's serialized model state.
func (s *Store) UpdateSessionState(ctx context.Context, sessionID string, state []byte) (err error) {
	start := time.Now()
	defer func() { observe("update", collSessions, start, err) }()

	oid, err := parseID(sessionID)
	if err != nil {
		return err
	}
	res, err := s.db.Collection(collSessions).UpdateByID(ctx, oid, bson.M{"$set": bson.M{"state": state}})
	if err != nil {
		return fmt.Errorf("failed to update session state %s: %w", sessionID, err)
	}
	if res.MatchedCount == 0 {
		return core.NotFoundf("session %s not found", sessionID)
	}
	return nil
}

// AppendSelection inserts a selection document and links it to its session.
// The caller controls CreatedAt so selection order is explicit.
func (s *Store) AppendSelection(ctx context.Context, sel *store.Selection) (out *store.Selection, err error) {
	start := time.Now()
	defer func() { observe("insert", collSelections, start, err) }()

	if sel.CreatedAt.IsZero() {
		sel.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.Collection(collSelections).InsertOne(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("failed to append selection: %w", err)
	}
	sel.ID = res.InsertedID.(primitive.ObjectID)

	_, err = s.db.Collection(collSessions).UpdateByID(ctx, sel.SessionID,
		bson.M{"$push": bson.M{"selections": sel.ID}})
	if err != nil {
		return nil, fmt.Errorf("failed to link selection to session: %w", err)
	}
	return sel, nil
}

// AppendPrefixRating inserts a rating document and links it to its session.
func (s *Store) AppendPrefixRating(ctx context.Context, rating *store.PrefixRating) (out *store.PrefixRating, err error) {
	start := time.Now()
	defer func() { observe("insert", collPrefixRatings, start, err) }()

	if rating.CreatedAt.IsZero() {
		rating.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.Collection(collPrefixRatings).InsertOne(ctx, rating)
	if err != nil {
		return nil, fmt.Errorf("failed to append prefix rating: %w", err)
	}
	rating.ID = res.InsertedID.(primitive.ObjectID)

	_, err = s.db.Collection(collSessions).UpdateByID(ctx, rating.SessionID,
		bson.M{"$push": bson.M{"prefix_ratings": rating.ID}})
	if err != nil {
		return nil, fmt.Errorf("failed to link prefix rating to session: %w", err)
	}
	return rating, nil
}

// SelectionsForSession returns a session's selections oldest first.
func (s *Store) SelectionsForSession(ctx context.Context, sessionID string) (sels []*store.Selection, err error) {
	start := time.Now()
	defer func() { observe("find", collSelections, start, err) }()

	oid, err := parseID(sessionID)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := s.db.Collection(collSelections).Find(ctx, bson.M{"session_id": oid}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list selections for session %s: %w", sessionID, err)
	}
	if err = cur.All(ctx, &sels); err != nil {
		return nil, fmt.Errorf("failed to decode selections: %w", err)
	}
	return sels, nil
}

// AllPrefixRatings returns every rating oldest first, the order the prefix
// factorization trainer replays them in.
func (s *Store) AllPrefixRatings(ctx context.Context) (ratings []*store.PrefixRating, err error) {
	start := time.Now()
	defer func() { observe("find", collPrefixRatings, start, err) }()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := s.db.Collection(collPrefixRatings).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list prefix ratings: %w", err)
	}
	if err = cur.All(ctx, &ratings); err != nil {
		return nil, fmt.Errorf("failed to decode prefix ratings: %w", err)
	}
	return ratings, nil
}

// CountPrefixRatings counts all ratings across sessions.
func (s *Store) CountPrefixRatings(ctx context.Context) (n int64, err error) {
	start := time.Now()
	defer func() { observe("count", collPrefixRatings, start, err) }()

	n, err = s.db.Collection(collPrefixRatings).CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count prefix ratings: %w", err)
	}
	return n, nil
}
