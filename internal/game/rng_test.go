// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

package game

import "testing"

func TestRngForDeterministic(t *testing.T) {
	a := rngFor("game-1", 3, saltRoundCandidates)
	b := rngFor("game-1", 3, saltRoundCandidates)
	for i := 0; i < 16; i++ {
		if av, bv := a.Int63(), b.Int63(); av != bv {
			t.Fatalf("draw %d differs for identical site: %d vs %d", i, av, bv)
		}
	}
}

func TestRngForSeparatesStreams(t *testing.T) {
	base := rngFor("game-1", 1, saltRoundCandidates)
	others := map[string]func() int64{
		"different game":  rngFor("game-2", 1, saltRoundCandidates).Int63,
		"different round": rngFor("game-1", 2, saltRoundCandidates).Int63,
		"different salt":  rngFor("game-1", 1, saltOnboarding).Int63,
	}

	first := base.Int63()
	for name, draw := range others {
		if draw() == first {
			t.Errorf("%s produced the same first draw; streams overlap", name)
		}
	}
}
