// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

package catalog

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Image is a product image with ordering metadata.
type Image struct {
	URL      string `bson:"url" json:"url"`
	Alt      string `bson:"alt,omitempty" json:"alt,omitempty"`
	Position int    `bson:"position" json:"position"`
}

// Item is a catalog entry. All categories share one collection; movie-specific
// fields stay zero-valued for pens and vice versa. Items are immutable from
// the game's perspective, re-ingestion replaces them in place.
type Item struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SourceID string             `bson:"source_id" json:"source_id"`
	Title    string             `bson:"title" json:"title"`
	Category string             `bson:"category" json:"category"`
	Handle   string             `bson:"handle,omitempty" json:"handle,omitempty"`

	// Vendor is the brand for pens and the lead studio for movies.
	Vendor      string              `bson:"vendor,omitempty" json:"vendor,omitempty"`
	ProductType string              `bson:"product_type,omitempty" json:"product_type,omitempty"`
	PriceMin    *float64            `bson:"price_min,omitempty" json:"price_min,omitempty"`
	PriceMax    *float64            `bson:"price_max,omitempty" json:"price_max,omitempty"`
	Currency    string              `bson:"currency,omitempty" json:"currency,omitempty"`
	Tags        []string            `bson:"tags,omitempty" json:"tags"`
	Options     map[string][]string `bson:"options,omitempty" json:"options"`

	// Movie-specific normalized fields.
	ReleaseYear         *int     `bson:"release_year,omitempty" json:"release_year,omitempty"`
	RuntimeMinutes      *int     `bson:"runtime_minutes,omitempty" json:"runtime_minutes,omitempty"`
	VoteAverage         *float64 `bson:"vote_average,omitempty" json:"vote_average,omitempty"`
	Popularity          *float64 `bson:"popularity,omitempty" json:"popularity,omitempty"`
	OriginalLanguage    string   `bson:"original_language,omitempty" json:"original_language,omitempty"`
	Certification       string   `bson:"certification,omitempty" json:"certification,omitempty"`
	PrimaryCountry      string   `bson:"primary_country,omitempty" json:"primary_country,omitempty"`
	DecadeBucket        string   `bson:"decade_bucket,omitempty" json:"decade_bucket,omitempty"`
	RuntimeBucket       string   `bson:"runtime_bucket,omitempty" json:"runtime_bucket,omitempty"`
	Genres              []string `bson:"genres,omitempty" json:"genres,omitempty"`
	Keywords            []string `bson:"keywords,omitempty" json:"keywords,omitempty"`
	ProductionCompanies []string `bson:"production_companies,omitempty" json:"production_companies,omitempty"`
	Directors           []string `bson:"directors,omitempty" json:"directors,omitempty"`

	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	URL         string    `bson:"url,omitempty" json:"url,omitempty"`
	Images      []Image   `bson:"images,omitempty" json:"images,omitempty"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// categoricalValue returns the raw value for a profile categorical field.
func (it *Item) categoricalValue(field string) string {
	switch field {
	case "vendor":
		return it.Vendor
	case "product_type":
		return it.ProductType
	case "primary_country":
		return it.PrimaryCountry
	case "original_language":
		return it.OriginalLanguage
	case "certification":
		return it.Certification
	case "decade_bucket":
		return it.DecadeBucket
	case "runtime_bucket":
		return it.RuntimeBucket
	default:
		return ""
	}
}

// multiValues returns the raw values for a profile multi-valued field.
// The options field is handled separately because of its map shape.
func (it *Item) multiValues(field string) []string {
	switch field {
	case "tags":
		return it.Tags
	case "genres":
		return it.Genres
	case "keywords":
		return it.Keywords
	case "production_companies":
		return it.ProductionCompanies
	case "directors":
		return it.Directors
	default:
		return nil
	}
}

// numericValue returns the value for a profile numeric field.
// The second return is false when the item does not carry the field.
func (it *Item) numericValue(field string) (float64, bool) {
	switch field {
	case "price_min":
		if it.PriceMin != nil {
			return *it.PriceMin, true
		}
	case "price_max":
		if it.PriceMax != nil {
			return *it.PriceMax, true
		}
	case "release_year":
		if it.ReleaseYear != nil {
			return float64(*it.ReleaseYear), true
		}
	case "runtime_minutes":
		if it.RuntimeMinutes != nil {
			return float64(*it.RuntimeMinutes), true
		}
	case "vote_average":
		if it.VoteAverage != nil {
			return *it.VoteAverage, true
		}
	case "popularity":
		if it.Popularity != nil {
			return *it.Popularity, true
		}
	}
	return 0, false
}

// PrimaryImageURL returns the first image URL, or empty when the item has none.
func (it *Item) PrimaryImageURL() string {
	if len(it.Images) == 0 {
		return ""
	}
	return it.Images[0].URL
}
