// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

package game

import (
	"math/rand"
	"sort"

	"github.com/decidio/duel/internal/catalog"
)

// onboardingPool samples a diverse seeding pool. Small catalogs are returned
// whole, shuffled. Larger ones are stratified into price terciles by
// price_min (missing prices count as 0) with a vendor round-robin inside
// each tercile, so no price band or brand dominates what the player first
// sees. Shortfalls fill from the shuffled remainder.
func onboardingPool(rng *rand.Rand, items []*catalog.Item, size int) []string {
	if len(items) <= size {
		ids := make([]string, len(items))
		for i, it := range items {
			ids[i] = it.ID.Hex()
		}
		shuffleStrings(rng, ids)
		return ids
	}

	shuffled := make([]*catalog.Item, len(items))
	copy(shuffled, items)
	shuffleItems(rng, shuffled)

	prices := make([]float64, len(shuffled))
	for i, it := range shuffled {
		prices[i] = priceOf(it)
	}
	sort.Float64s(prices)
	q1 := prices[len(prices)/3]
	q2 := prices[2*len(prices)/3]

	var low, mid, high []*catalog.Item
	for _, it := range shuffled {
		switch p := priceOf(it); {
		case p <= q1:
			low = append(low, it)
		case p <= q2:
			mid = append(mid, it)
		default:
			high = append(high, it)
		}
	}

	// Tercile targets split size as evenly as possible, low bands first
	// (17/17/16 for the canonical 50).
	chosen := roundRobinByVendor(rng, low, (size+2)/3)
	chosen = append(chosen, roundRobinByVendor(rng, mid, (size+1)/3)...)
	chosen = append(chosen, roundRobinByVendor(rng, high, size/3)...)

	chosenIDs := make(map[string]struct{}, len(chosen))
	for _, it := range chosen {
		chosenIDs[it.ID.Hex()] = struct{}{}
	}
	if len(chosen) < size {
		remainder := make([]*catalog.Item, 0, len(shuffled)-len(chosen))
		for _, it := range shuffled {
			if _, ok := chosenIDs[it.ID.Hex()]; !ok {
				remainder = append(remainder, it)
			}
		}
		shuffleItems(rng, remainder)
		need := min(size-len(chosen), len(remainder))
		chosen = append(chosen, remainder[:need]...)
	}
	if len(chosen) > size {
		chosen = chosen[:size]
	}
	shuffleItems(rng, chosen)

	ids := make([]string, len(chosen))
	for i, it := range chosen {
		ids[i] = it.ID.Hex()
	}
	return ids
}

// roundRobinByVendor draws up to target items from a bucket, one per vendor
// per pass. Vendor visit order and each vendor's queue are shuffled first;
// vendors drop out as they run dry.
func roundRobinByVendor(rng *rand.Rand, bucket []*catalog.Item, target int) []*catalog.Item {
	byVendor := make(map[string][]*catalog.Item)
	vendors := make([]string, 0, 16)
	for _, it := range bucket {
		v := it.Vendor
		if v == "" {
			v = "Unknown"
		}
		if _, ok := byVendor[v]; !ok {
			vendors = append(vendors, v)
		}
		byVendor[v] = append(byVendor[v], it)
	}
	for _, v := range vendors {
		shuffleItems(rng, byVendor[v])
	}
	rng.Shuffle(len(vendors), func(i, j int) { vendors[i], vendors[j] = vendors[j], vendors[i] })

	picks := make([]*catalog.Item, 0, target)
	for len(picks) < target && len(vendors) > 0 {
		next := make([]string, 0, len(vendors))
		for _, v := range vendors {
			queue := byVendor[v]
			if len(queue) > 0 {
				picks = append(picks, queue[len(queue)-1])
				byVendor[v] = queue[:len(queue)-1]
				if len(picks) >= target {
					break
				}
			}
			if len(byVendor[v]) > 0 {
				next = append(next, v)
			}
		}
		vendors = next
	}
	return picks
}

func shuffleItems(rng *rand.Rand, items []*catalog.Item) {
	rng.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
}

func priceOf(it *catalog.Item) float64 {
	if it.PriceMin == nil {
		return 0
	}
	return *it.PriceMin
}
