// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

package tmdb

// DiscoverResponse is one page of /discover/movie results. TMDB caps
// total_pages at 500 regardless of total_results.
type DiscoverResponse struct {
	Page         int            `json:"page"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
	Results      []MovieSummary `json:"results"`
}

// MovieSummary is a single discovery row. The ingester only needs the ID to
// fetch details; the remaining fields feed progress logging.
type MovieSummary struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	VoteCount   int     `json:"vote_count"`
	VoteAverage float64 `json:"vote_average"`
	Popularity  float64 `json:"popularity"`
}

// MovieDetail is the /movie/{id} response with keywords, credits and
// release_dates appended. Runtime is zero when TMDB has no runtime on file.
type MovieDetail struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	Adult            bool    `json:"adult"`
	Overview         string  `json:"overview"`
	ReleaseDate      string  `json:"release_date"`
	Runtime          int     `json:"runtime"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	Popularity       float64 `json:"popularity"`
	OriginalLanguage string  `json:"original_language"`
	PosterPath       string  `json:"poster_path"`
	BackdropPath     string  `json:"backdrop_path"`

	Genres              []Genre             `json:"genres"`
	ProductionCompanies []ProductionCompany `json:"production_companies"`
	ProductionCountries []ProductionCountry `json:"production_countries"`

	// Appended sub-resources.
	Keywords     KeywordList        `json:"keywords"`
	Credits      CreditList         `json:"credits"`
	ReleaseDates ReleaseDateResults `json:"release_dates"`
}

// Genre is a TMDB genre reference.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ProductionCompany is a studio attached to a movie, ordered by billing.
type ProductionCompany struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ProductionCountry identifies a production country by ISO 3166-1 code.
type ProductionCountry struct {
	ISO3166 string `json:"iso_3166_1"`
	Name    string `json:"name"`
}

// Keyword is a TMDB keyword reference.
type Keyword struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// KeywordList is the keywords sub-resource envelope.
type KeywordList struct {
	Keywords []Keyword `json:"keywords"`
}

// CrewMember is one crew credit. Directors carry Job == "Director".
type CrewMember struct {
	Name string `json:"name"`
	Job  string `json:"job"`
}

// CreditList is the credits sub-resource envelope. Cast is omitted; the
// catalog only profiles directors.
type CreditList struct {
	Crew []CrewMember `json:"crew"`
}

// ReleaseDateResults is the release_dates sub-resource envelope, grouped
// by country.
type ReleaseDateResults struct {
	Results []CountryReleaseDates `json:"results"`
}

// CountryReleaseDates holds every release event for one country.
type CountryReleaseDates struct {
	ISO3166      string        `json:"iso_3166_1"`
	ReleaseDates []ReleaseDate `json:"release_dates"`
}

// ReleaseDate is a single release event; only the certification is used.
type ReleaseDate struct {
	Certification string `json:"certification"`
}
