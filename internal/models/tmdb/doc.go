// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

// Package tmdb defines the wire types returned by The Movie Database (TMDB)
// v3 API endpoints used during catalog ingestion.
//
// Only the fields the ingester reads are declared; TMDB responses carry many
// more, and unknown fields are ignored on decode. The structs mirror two
// endpoints:
//
//   - /discover/movie - paged discovery, one DiscoverResponse per page
//   - /movie/{id}?append_to_response=keywords,credits,release_dates -
//     full MovieDetail including appended sub-resources
//
// These types never leave internal/ingest; the normalizer converts a
// MovieDetail into a catalog.Item before anything is persisted.
package tmdb
