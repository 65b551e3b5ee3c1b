// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

package game

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// Draw-site salts. Each randomized decision inside a game gets its own salt
// so streams never overlap.
const (
	saltOnboarding      = "onboarding"
	saltRoundCandidates = "round_candidates"
)

// rngFor derives the deterministic stream for one draw site: the seed is the
// first 64 bits of SHA-256("{game}:{round}:{salt}"). Pools and candidate
// slates therefore replay identically across process restarts and retries.
func rngFor(gameID string, round int, salt string) *rand.Rand {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s:%d:%s", gameID, round, salt))
	seed := binary.BigEndian.Uint64(sum[:8])
	return rand.New(rand.NewSource(int64(seed))) //nolint:gosec // gameplay shuffles need determinism, not crypto
}

func shuffleStrings(rng *rand.Rand, s []string) {
	rng.Shuffle(len(s), func(i, j int) { s[i], s[j] = s[j], s[i] })
}
