// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

package testinfra

import (
	"encoding/binary"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/decidio/duel/internal/catalog"
)

var penVendors = []string{"Pelikan", "Sailor", "Lamy", "TWSBI", "Kaweco"}

var penTags = []string{
	"gold-nib", "piston-filler", "demonstrator", "pocket",
	"italic", "flex", "vintage", "limited-edition",
}

var movieStudios = []string{"A24", "Mirage", "Gaumont", "Toho"}

var movieGenres = []string{"drama", "action", "comedy", "thriller", "horror", "romance"}

// ItemID returns a deterministic ObjectID whose hex order follows n.
func ItemID(n int) primitive.ObjectID {
	var id primitive.ObjectID
	binary.BigEndian.PutUint32(id[8:], uint32(n+1))
	return id
}

// Pen builds a deterministic fountain pen. Vendors, nib options and tags
// cycle with n and the price climbs linearly, so a catalog of a few dozen
// pens spans several brands and all three price terciles.
func Pen(n int) *catalog.Item {
	price := 15.0 + float64(n)*12.0
	priceMax := price + 10.0
	return &catalog.Item{
		ID:          ItemID(n),
		SourceID:    fmt.Sprintf("shopify_pen_%d", n+1),
		Title:       fmt.Sprintf("Test Pen %02d", n+1),
		Category:    "fountain_pens",
		Vendor:      penVendors[n%len(penVendors)],
		ProductType: "Fountain Pen",
		PriceMin:    &price,
		PriceMax:    &priceMax,
		Currency:    "USD",
		Tags:        []string{penTags[n%len(penTags)], penTags[(n+3)%len(penTags)]},
		Options: map[string][]string{
			"Nib Size": {"Fine", "Medium"},
		},
		Images: []catalog.Image{{URL: fmt.Sprintf("https://cdn.example.com/pens/%d.jpg", n+1), Position: 1}},
	}
}

// PenCatalog builds n pens with ascending ids.
func PenCatalog(n int) []*catalog.Item {
	items := make([]*catalog.Item, n)
	for i := range items {
		items[i] = Pen(i)
	}
	return items
}

// Movie builds a deterministic movie item.
func Movie(n int) *catalog.Item {
	year := 1980 + (n%5)*10
	runtime := 85 + (n%4)*20
	vote := 5.5 + float64(n%5)*0.8
	return &catalog.Item{
		ID:             ItemID(1000 + n),
		SourceID:       fmt.Sprintf("tmdb_movie_%d", 9000+n),
		Title:          fmt.Sprintf("Test Movie %02d", n+1),
		Category:       "movies",
		Vendor:         movieStudios[n%len(movieStudios)],
		ProductType:    "Movie",
		ReleaseYear:    &year,
		RuntimeMinutes: &runtime,
		VoteAverage:    &vote,
		Genres:         []string{movieGenres[n%len(movieGenres)], movieGenres[(n+2)%len(movieGenres)]},
		Tags:           []string{movieGenres[n%len(movieGenres)]},
		DecadeBucket:   fmt.Sprintf("%ds", year/10*10),
	}
}

// MovieCatalog builds n movies with ascending ids.
func MovieCatalog(n int) []*catalog.Item {
	items := make([]*catalog.Item, n)
	for i := range items {
		items[i] = Movie(i)
	}
	return items
}
