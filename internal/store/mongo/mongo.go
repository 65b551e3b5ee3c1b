// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

// Package mongo implements the store contract on MongoDB. One Store wraps
// one client; collection handles are resolved per call. Every operation is
// instrumented through the metrics package.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	driver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/decidio/duel/internal/config"
	"github.com/decidio/duel/internal/core"
	"github.com/decidio/duel/internal/logging"
	"github.com/decidio/duel/internal/metrics"
	"github.com/decidio/duel/internal/store"
)

// Store must satisfy the full persistence contract.
var _ store.Store = (*Store)(nil)

// Collection names.
const (
	collProducts      = "products"
	collUsers         = "users"
	collSessions      = "sessions"
	collSelections    = "selections"
	collPrefixRatings = "prefix_ratings"
	collGames         = "games"
	collGameRounds    = "game_rounds"
)

// Store is the MongoDB-backed implementation of store.Store.
type Store struct {
	client *driver.Client
	db     *driver.Database
	cfg    *config.MongoDBConfig
}

// New connects to MongoDB and verifies the connection with a ping. The
// caller owns the Store and must Close it.
func New(ctx context.Context, cfg *config.MongoDBConfig) (*Store, error) {
	opts := options.Client().
		ApplyURI(cfg.URL).
		SetMinPoolSize(cfg.MinPoolSize).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetConnectTimeout(cfg.ConnectTimeout)

	client, err := driver.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongodb ping failed: %w", err)
	}

	logging.Info().
		Str("database", cfg.DBName).
		Uint64("max_pool_size", cfg.MaxPoolSize).
		Msg("Connected to MongoDB")

	return &Store{
		client: client,
		db:     client.Database(cfg.DBName),
		cfg:    cfg,
	}, nil
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("mongodb disconnect failed: %w", err)
	}
	return nil
}

// Ping checks connectivity; used by the health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// EnsureIndexes creates every index the query paths rely on. CreateMany is
// idempotent, so this runs unconditionally at startup.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	start := time.Now()

	byColl := map[string][]driver.IndexModel{
		collProducts: {
			{
				Keys:    bson.D{{Key: "category", Value: 1}, {Key: "source_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		collGames: {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "player_name", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		collGameRounds: {
			{
				Keys:    bson.D{{Key: "game_id", Value: 1}, {Key: "round_number", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "game_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		collSelections: {
			{Keys: bson.D{{Key: "session_id", Value: 1}, {Key: "created_at", Value: 1}}},
		},
		collPrefixRatings: {
			{Keys: bson.D{{Key: "session_id", Value: 1}, {Key: "created_at", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: 1}}},
		},
	}

	total := 0
	for coll, models := range byColl {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			metrics.RecordStoreQuery("create_indexes", coll, time.Since(start), err)
			return fmt.Errorf("failed to create indexes on %s: %w", coll, err)
		}
		total += len(models)
	}

	logging.Info().
		Int("indexes", total).
		Dur("elapsed", time.Since(start)).
		Msg("MongoDB indexes ensured")
	return nil
}

// VerifyProductSchema fails with a schema error when any stored product has
// no category. Older catalogs predate the category field; they must be
// migrated before this build will serve them.
func (s *Store) VerifyProductSchema(ctx context.Context) error {
	start := time.Now()
	filter := bson.M{"$or": bson.A{
		bson.M{"category": bson.M{"$exists": false}},
		bson.M{"category": ""},
	}}
	n, err := s.db.Collection(collProducts).CountDocuments(ctx, filter)
	metrics.RecordStoreQuery("count", collProducts, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to verify product schema: %w", err)
	}
	if n > 0 {
		return core.Schemaf("%d products have no category; run the catalog migration before starting", n)
	}
	return nil
}

// observe records one store operation in the metrics registry.
func observe(op, coll string, start time.Time, err error) {
	metrics.RecordStoreQuery(op, coll, time.Since(start), err)
}

// notFound reports whether err is the driver's no-documents sentinel.
func notFound(err error) bool {
	return errors.Is(err, driver.ErrNoDocuments)
}

// parseID converts a client-supplied hex id, mapping bad input to a
// validation error rather than a driver panic downstream.
func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, core.Validationf("invalid id %q", id)
	}
	return oid, nil
}
