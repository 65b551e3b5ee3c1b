// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

package game

import (
	"context"
	"errors"
	"strings"

	"github.com/decidio/duel/internal/core"
	"github.com/decidio/duel/internal/store"
)

// Default page sizes for the read endpoints.
const (
	defaultLeaderboardLimit = 10
	defaultHistoryLimit     = 20
)

// GameStatus reports where a game stands, including the lowest open round
// if one is waiting for a pick.
func (s *Service) GameStatus(ctx context.Context, gameID string) (*GameStatus, error) {
	game, err := s.store.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	var inProgress *int
	open, err := s.store.OpenRound(ctx, gameID)
	switch {
	case err == nil:
		n := open.RoundNumber
		inProgress = &n
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}

	return &GameStatus{
		ID:                      game.ID.Hex(),
		PlayerName:              game.PlayerName,
		Status:                  game.Status,
		CurrentRound:            game.CurrentRound,
		TotalRounds:             game.TotalRounds,
		HumanScore:              game.HumanScore,
		AIScore:                 game.AIScore,
		OnboardingComplete:      game.OnboardingComplete(),
		OnboardingSelectedCount: len(game.OnboardingSelectedIDs),
		RoundInProgress:         inProgress,
	}, nil
}

// Leaderboard ranks completed games by score difference, best human result
// first. Ties resolve by human score, then by age.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	games, err := s.store.LeaderboardGames(ctx, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(games))
	for i, g := range games {
		entries = append(entries, LeaderboardEntry{
			Rank:            i + 1,
			PlayerName:      g.PlayerName,
			HumanScore:      g.HumanScore,
			AIScore:         g.AIScore,
			ScoreDifference: g.ScoreDifference(),
			RoundsCompleted: g.CurrentRound,
			CreatedAt:       g.CreatedAt,
		})
	}
	return entries, nil
}

// PlayerHistory lists a player's games in any status, newest first.
func (s *Service) PlayerHistory(ctx context.Context, playerName string, limit int) ([]PlayerGameEntry, error) {
	name := strings.TrimSpace(playerName)
	if name == "" {
		return nil, core.Validationf("player name is required")
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	games, err := s.store.PlayerGames(ctx, name, limit)
	if err != nil {
		return nil, err
	}
	entries := make([]PlayerGameEntry, 0, len(games))
	for _, g := range games {
		entries = append(entries, PlayerGameEntry{
			ID:              g.ID.Hex(),
			PlayerName:      g.PlayerName,
			Status:          g.Status,
			HumanScore:      g.HumanScore,
			AIScore:         g.AIScore,
			ScoreDifference: g.ScoreDifference(),
			RoundsCompleted: g.CurrentRound,
			TotalRounds:     g.TotalRounds,
			CreatedAt:       g.CreatedAt,
		})
	}
	return entries, nil
}
