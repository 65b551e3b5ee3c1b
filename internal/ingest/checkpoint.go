// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"github.com/decidio/duel/internal/logging"
)

// Checkpoint records how far an ingest run got. It is written after every
// processed page, so a killed run resumes at the exact year and page where
// it stopped instead of re-fetching the whole catalog.
type Checkpoint struct {
	// CurrentYear is the release year being ingested. Zero means no run
	// has recorded progress yet and the runner starts at the newest
	// configured year.
	CurrentYear int `json:"current_year"`

	// NextPage is the next discovery page to fetch within CurrentYear.
	NextPage int `json:"next_page"`

	// UpsertedCount accumulates across resumed runs.
	UpsertedCount int64 `json:"upserted_count"`

	UpdatedAt time.Time `json:"updated_at"`
}

// LoadCheckpoint reads a checkpoint file. A missing or unreadable file is
// not an error: ingestion simply starts from scratch. Corrupt files are
// logged and treated the same way.
func LoadCheckpoint(path string) *Checkpoint {
	fresh := &Checkpoint{NextPage: 1}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Warn().Err(err).Str("path", path).Msg("Failed to read ingest checkpoint, starting fresh")
		}
		return fresh
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		logging.Warn().Err(err).Str("path", path).Msg("Corrupt ingest checkpoint, starting fresh")
		return fresh
	}
	if cp.NextPage < 1 {
		cp.NextPage = 1
	}
	return &cp
}

// SaveCheckpoint writes the checkpoint, creating parent directories as
// needed. UpdatedAt is stamped here so callers only fill in progress fields.
func SaveCheckpoint(path string, cp *Checkpoint) error {
	cp.UpdatedAt = time.Now().UTC()

	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode ingest checkpoint: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create checkpoint directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write ingest checkpoint: %w", err)
	}
	return nil
}
