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

	"github.com/decidio/duel/internal/catalog"
	"github.com/decidio/duel/internal/core"
	"github.com/decidio/duel/internal/metrics"
)

// AllProducts returns the full catalog sorted by id ascending.
func (s *Store) AllProducts(ctx context.Context) (items []*catalog.Item, err error) {
	start := time.Now()
	defer func() { observe("find", collProducts, start, err) }()

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.db.Collection(collProducts).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	if err = cur.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return items, nil
}

// ListProducts pages through one category, or the whole catalog when
// category is empty. Order is id ascending so pages are stable.
func (s *Store) ListProducts(ctx context.Context, category string, limit, offset int) (items []*catalog.Item, err error) {
	start := time.Now()
	defer func() { observe("find", collProducts, start, err) }()

	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cur, err := s.db.Collection(collProducts).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	if err = cur.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return items, nil
}

// CountProducts counts a category's items, or all items when category is
// empty.
func (s *Store) CountProducts(ctx context.Context, category string) (n int64, err error) {
	start := time.Now()
	defer func() { observe("count", collProducts, start, err) }()

	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}
	n, err = s.db.Collection(collProducts).CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}

// GetProduct loads one item by hex id.
func (s *Store) GetProduct(ctx context.Context, id string) (item *catalog.Item, err error) {
	start := time.Now()
	defer func() { observe("find_one", collProducts, start, err) }()

	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	item = &catalog.Item{}
	err = s.db.Collection(collProducts).FindOne(ctx, bson.M{"_id": oid}).Decode(item)
	if notFound(err) {
		return nil, core.NotFoundf("product %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load product %s: %w", id, err)
	}
	return item, nil
}

// GetProductsByIDs batch-loads items with one $in query and reorders the
// result to match ids. Malformed and unknown ids are dropped.
func (s *Store) GetProductsByIDs(ctx context.Context, ids []string) (items []*catalog.Item, err error) {
	if len(ids) == 0 {
		return nil, nil
	}

	start := time.Now()
	defer func() { observe("find", collProducts, start, err) }()

	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, perr := primitive.ObjectIDFromHex(id); perr == nil {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return nil, nil
	}

	cur, err := s.db.Collection(collProducts).Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	var found []*catalog.Item
	if err = cur.All(ctx, &found); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	byID := make(map[string]*catalog.Item, len(found))
	for _, it := range found {
		byID[it.ID.Hex()] = it
	}
	items = make([]*catalog.Item, 0, len(found))
	for _, id := range ids {
		if it, ok := byID[id]; ok {
			items = append(items, it)
		}
	}
	return items, nil
}

// UpsertProduct inserts or replaces an item keyed by (category, source_id),
// the identity the ingest pipeline works in. Returns true on first insert.
func (s *Store) UpsertProduct(ctx context.Context, item *catalog.Item) (created bool, err error) {
	start := time.Now()
	defer func() { observe("upsert", collProducts, start, err) }()

	filter := bson.M{"category": item.Category, "source_id": item.SourceID}
	res, err := s.db.Collection(collProducts).ReplaceOne(ctx, filter, item, options.Replace().SetUpsert(true))
	if err != nil {
		return false, fmt.Errorf("failed to upsert product %s/%s: %w", item.Category, item.SourceID, err)
	}
	metrics.StoreDocumentsUpserted.WithLabelValues(collProducts).Inc()
	return res.UpsertedCount > 0, nil
}
