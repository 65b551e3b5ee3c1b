// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/decidio/duel/internal/catalog"
	"github.com/decidio/duel/internal/models/tmdb"
)

const (
	// imageBaseURL prefixes TMDB image paths at the w500 rendition, wide
	// enough for duel cards without pulling originals.
	imageBaseURL = "https://image.tmdb.org/t/p/w500"

	movieCategory = "movies"
	unknownStudio = "Unknown Studio"
)

// Caps on list-valued profile fields. Feature vectors grow with vocabulary
// size, so unbounded keyword or cast lists would bloat the space without
// adding signal.
const (
	maxGenres    = 8
	maxKeywords  = 15
	maxCompanies = 8
	maxDirectors = 4
	maxTags      = 6
)

// Slug converts a title into a URL-safe handle: lowercased letters and
// digits with every other run of characters collapsed to a single dash.
func Slug(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteByte('-')
		}
	}
	out := b.String()
	for strings.Contains(out, "--") {
		out = strings.ReplaceAll(out, "--", "-")
	}
	return strings.Trim(out, "-")
}

// decadeBucket maps a release year onto its decade label, e.g. 1994 -> "1990s".
func decadeBucket(year int) string {
	if year <= 0 {
		return ""
	}
	return fmt.Sprintf("%ds", year/10*10)
}

// runtimeBucket groups runtimes into short (<90), standard (90-130) and
// long (>130) minutes.
func runtimeBucket(minutes int) string {
	switch {
	case minutes <= 0:
		return ""
	case minutes < 90:
		return "short"
	case minutes <= 130:
		return "standard"
	default:
		return "long"
	}
}

// certification picks an age rating from the release_dates sub-resource,
// preferring the US certification and falling back to the first non-empty
// one from any country.
func certification(detail *tmdb.MovieDetail) string {
	firstNonEmpty := ""
	for _, country := range detail.ReleaseDates.Results {
		for _, rel := range country.ReleaseDates {
			cert := strings.TrimSpace(rel.Certification)
			if cert == "" {
				continue
			}
			if country.ISO3166 == "US" {
				return cert
			}
			if firstNonEmpty == "" {
				firstNonEmpty = cert
			}
		}
	}
	return firstNonEmpty
}

// releaseYear parses the year out of a TMDB release_date ("2006-05-19").
// Returns 0 when the date is missing or malformed.
func releaseYear(releaseDate string) int {
	releaseDate = strings.TrimSpace(releaseDate)
	if len(releaseDate) < 4 {
		return 0
	}
	year, err := strconv.Atoi(releaseDate[:4])
	if err != nil {
		return 0
	}
	return year
}

// QualityOK reports whether a movie clears the catalog quality floor: at
// least one image, a description, a known runtime and enough votes to make
// the community scores meaningful.
func QualityOK(detail *tmdb.MovieDetail, minVoteCount int) bool {
	if detail.PosterPath == "" && detail.BackdropPath == "" {
		return false
	}
	if strings.TrimSpace(detail.Overview) == "" {
		return false
	}
	if detail.Runtime <= 0 {
		return false
	}
	return detail.VoteCount >= minVoteCount
}

// NormalizeMovie converts a TMDB movie detail into a catalog item in the
// movies category. Returns nil for adult titles and for payloads without an
// ID or title; quality filtering is separate, see QualityOK.
func NormalizeMovie(detail *tmdb.MovieDetail) *catalog.Item {
	title := strings.TrimSpace(detail.Title)
	if detail.ID == 0 || title == "" || detail.Adult {
		return nil
	}

	genres := make([]string, 0, len(detail.Genres))
	for _, g := range detail.Genres {
		if name := strings.TrimSpace(g.Name); name != "" {
			genres = append(genres, name)
		}
	}

	keywords := make([]string, 0, len(detail.Keywords.Keywords))
	for _, k := range detail.Keywords.Keywords {
		if name := strings.TrimSpace(k.Name); name != "" {
			keywords = append(keywords, name)
		}
	}

	companies := make([]string, 0, len(detail.ProductionCompanies))
	for _, co := range detail.ProductionCompanies {
		if name := strings.TrimSpace(co.Name); name != "" {
			companies = append(companies, name)
		}
	}

	var directors []string
	for _, crew := range detail.Credits.Crew {
		if crew.Job != "Director" {
			continue
		}
		if name := strings.TrimSpace(crew.Name); name != "" {
			directors = append(directors, name)
		}
	}

	primaryCountry := ""
	for _, country := range detail.ProductionCountries {
		if iso := strings.TrimSpace(country.ISO3166); iso != "" {
			primaryCountry = iso
			break
		}
	}

	vendor := unknownStudio
	if len(companies) > 0 {
		vendor = companies[0]
	}

	images := make([]catalog.Image, 0, 2)
	if detail.PosterPath != "" {
		images = append(images, catalog.Image{
			URL:      imageBaseURL + detail.PosterPath,
			Alt:      title + " poster",
			Position: 0,
		})
	}
	if detail.BackdropPath != "" {
		images = append(images, catalog.Image{
			URL:      imageBaseURL + detail.BackdropPath,
			Alt:      title + " backdrop",
			Position: 1,
		})
	}

	item := &catalog.Item{
		SourceID:    fmt.Sprintf("tmdb_movie_%d", detail.ID),
		Title:       title,
		Category:    movieCategory,
		Handle:      Slug(fmt.Sprintf("%s-%d", title, detail.ID)),
		Vendor:      vendor,
		ProductType: "Movie",
		Currency:    "USD",
		Tags:        truncate(genres, maxTags),

		OriginalLanguage:    strings.TrimSpace(detail.OriginalLanguage),
		Certification:       certification(detail),
		PrimaryCountry:      primaryCountry,
		Genres:              truncate(genres, maxGenres),
		Keywords:            truncate(keywords, maxKeywords),
		ProductionCompanies: truncate(companies, maxCompanies),
		Directors:           truncate(directors, maxDirectors),

		Description: strings.TrimSpace(detail.Overview),
		URL:         fmt.Sprintf("https://www.themoviedb.org/movie/%d", detail.ID),
		Images:      images,
		CreatedAt:   time.Now().UTC(),
	}

	if year := releaseYear(detail.ReleaseDate); year > 0 {
		item.ReleaseYear = &year
		item.DecadeBucket = decadeBucket(year)
	}
	if detail.Runtime > 0 {
		runtime := detail.Runtime
		item.RuntimeMinutes = &runtime
		item.RuntimeBucket = runtimeBucket(runtime)
	}

	voteAverage := detail.VoteAverage
	item.VoteAverage = &voteAverage
	popularity := detail.Popularity
	item.Popularity = &popularity

	return item
}

// truncate returns at most n leading elements of values.
func truncate(values []string, n int) []string {
	if len(values) <= n {
		return values
	}
	return values[:n]
}
