// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

/*
Package catalog defines the item model and the per-category feature grammar.

A category profile declares which item attributes become categorical tokens,
which become multi-valued tokens, and which feed numeric dimensions. Two
profiles ship: fountain_pens and movies. The token grammar is:

	cat::<category>::cat::<field>::<slug>
	cat::<category>::multi::<field>::<slug>
	cat::<category>::multi::option::<opt>|<value>
	cat::<category>::num::<field>_z

Raw feature keys are an internal currency shared by the feature space, the
online preference model and the prefix factorization engine. The humanizer
turns them back into display labels and hides keys a player would find
redundant ("fountain pen" tokens on a fountain pen site).
*/
package catalog
