// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

package tmdb

import (
	"testing"

	"github.com/goccy/go-json"
)

// TestMovieDetailDecode decodes a trimmed but structurally faithful TMDB
// /movie/{id} payload with appended sub-resources.
func TestMovieDetailDecode(t *testing.T) {
	payload := `{
		"id": 603,
		"title": "The Matrix",
		"adult": false,
		"overview": "Set in the 22nd century.",
		"release_date": "1999-03-30",
		"runtime": 136,
		"vote_average": 8.2,
		"vote_count": 24000,
		"popularity": 85.6,
		"original_language": "en",
		"poster_path": "/matrix-poster.jpg",
		"backdrop_path": "/matrix-backdrop.jpg",
		"genres": [{"id": 28, "name": "Action"}, {"id": 878, "name": "Science Fiction"}],
		"production_companies": [{"id": 79, "name": "Village Roadshow Pictures"}],
		"production_countries": [{"iso_3166_1": "US", "name": "United States of America"}],
		"keywords": {"keywords": [{"id": 310, "name": "artificial intelligence"}]},
		"credits": {"crew": [
			{"name": "Lana Wachowski", "job": "Director"},
			{"name": "Bill Pope", "job": "Director of Photography"}
		]},
		"release_dates": {"results": [
			{"iso_3166_1": "US", "release_dates": [{"certification": "R"}]}
		]},
		"unknown_future_field": {"ignored": true}
	}`

	var detail MovieDetail
	if err := json.Unmarshal([]byte(payload), &detail); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if detail.ID != 603 {
		t.Errorf("ID = %d, want 603", detail.ID)
	}
	if detail.Title != "The Matrix" {
		t.Errorf("Title = %q, want The Matrix", detail.Title)
	}
	if detail.Runtime != 136 {
		t.Errorf("Runtime = %d, want 136", detail.Runtime)
	}
	if len(detail.Genres) != 2 || detail.Genres[1].Name != "Science Fiction" {
		t.Errorf("Genres = %+v, want two entries ending in Science Fiction", detail.Genres)
	}
	if len(detail.Keywords.Keywords) != 1 || detail.Keywords.Keywords[0].Name != "artificial intelligence" {
		t.Errorf("Keywords = %+v, want [artificial intelligence]", detail.Keywords.Keywords)
	}
	if len(detail.Credits.Crew) != 2 || detail.Credits.Crew[0].Job != "Director" {
		t.Errorf("Crew = %+v, want director first", detail.Credits.Crew)
	}
	if len(detail.ReleaseDates.Results) != 1 || detail.ReleaseDates.Results[0].ReleaseDates[0].Certification != "R" {
		t.Errorf("ReleaseDates = %+v, want US certification R", detail.ReleaseDates.Results)
	}
	if detail.ProductionCountries[0].ISO3166 != "US" {
		t.Errorf("ProductionCountries[0].ISO3166 = %q, want US", detail.ProductionCountries[0].ISO3166)
	}
}

func TestDiscoverResponseDecode(t *testing.T) {
	payload := `{
		"page": 3,
		"total_pages": 120,
		"total_results": 2400,
		"results": [
			{"id": 603, "title": "The Matrix", "vote_count": 24000, "vote_average": 8.2, "popularity": 85.6},
			{"id": 604, "title": "The Matrix Reloaded", "vote_count": 12000, "vote_average": 7.0, "popularity": 44.1}
		]
	}`

	var page DiscoverResponse
	if err := json.Unmarshal([]byte(payload), &page); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if page.Page != 3 || page.TotalPages != 120 {
		t.Errorf("Page/TotalPages = %d/%d, want 3/120", page.Page, page.TotalPages)
	}
	if len(page.Results) != 2 {
		t.Fatalf("len(Results) = %d, want 2", len(page.Results))
	}
	if page.Results[1].ID != 604 {
		t.Errorf("Results[1].ID = %d, want 604", page.Results[1].ID)
	}
}
