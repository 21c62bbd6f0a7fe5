package repository

import (
	"context"
	"errors"
	"sync"

	"calmcompanion/internal/models"
)

const gameStatsKey = "game_stats"

// GameStatsRepository stores the active profile's personal bests
type GameStatsRepository struct {
	cs *CollectionStore
	mu sync.Mutex
}

func NewGameStatsRepository(cs *CollectionStore) *GameStatsRepository {
	return &GameStatsRepository{cs: cs}
}

// GetGameStats returns stored stats or the zero record
func (r *GameStatsRepository) GetGameStats(ctx context.Context) models.GameStats {
	return GetCollection(ctx, r.cs, gameStatsKey, models.GameStats{})
}

// SaveGameStats merges the supplied fields over the stored stats
func (r *GameStatsRepository) SaveGameStats(ctx context.Context, update models.GameStatsUpdate) (models.GameStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return UpdateCollection(ctx, r.cs, gameStatsKey, models.GameStats{}, func(stats models.GameStats) (models.GameStats, error) {
		return stats.Apply(update), nil
	})
}

// RecordSimonLevel stores level if it beats the current best
func (r *GameStatsRepository) RecordSimonLevel(ctx context.Context, level int) (bool, error) {
	return r.recordIf(ctx, func(s models.GameStats) (models.GameStatsUpdate, bool) {
		return models.GameStatsUpdate{SimonMaxLevel: &level}, level > s.SimonMaxLevel
	})
}

// RecordBalloonScore stores score if it beats the current best
func (r *GameStatsRepository) RecordBalloonScore(ctx context.Context, score int) (bool, error) {
	return r.recordIf(ctx, func(s models.GameStats) (models.GameStatsUpdate, bool) {
		return models.GameStatsUpdate{BalloonsMaxScore: &score}, score > s.BalloonsMaxScore
	})
}

// RecordMemoryMoves stores moves if it is fewer than the current best
func (r *GameStatsRepository) RecordMemoryMoves(ctx context.Context, moves int) (bool, error) {
	return r.recordIf(ctx, func(s models.GameStats) (models.GameStatsUpdate, bool) {
		better := s.MemoryBestMoves == nil || moves < *s.MemoryBestMoves
		return models.GameStatsUpdate{MemoryBestMoves: &moves}, better
	})
}

// errNotBetter aborts an update that would not improve a personal best
var errNotBetter = errors.New("not a personal best")

func (r *GameStatsRepository) recordIf(ctx context.Context, check func(models.GameStats) (models.GameStatsUpdate, bool)) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := UpdateCollection(ctx, r.cs, gameStatsKey, models.GameStats{}, func(stats models.GameStats) (models.GameStats, error) {
		update, better := check(stats)
		if !better {
			return stats, errNotBetter
		}
		return stats.Apply(update), nil
	})
	switch {
	case errors.Is(err, errNotBetter):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}
