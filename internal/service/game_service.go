package service

import (
	"context"
	"errors"
	"log"
	"sync"

	"calmcompanion/internal/games"
	"calmcompanion/internal/models"
	"calmcompanion/internal/repository"
)

// ErrNoGame is returned when acting on a game that has not been started
var ErrNoGame = errors.New("no game in progress")

// DefaultMemorySymbols are the pairs dealt when a client sends none
var DefaultMemorySymbols = []string{"🌙", "🌿", "🐢", "☁️", "🌊", "🦋"}

// GameService runs the active profile's Simon and Memory sessions and records
// personal bests. Sessions are discarded when the profile changes.
type GameService struct {
	stats  *repository.GameStatsRepository
	timers games.Timers

	mu     sync.Mutex
	simon  *games.Simon
	memory *games.Memory
}

func NewGameService(stats *repository.GameStatsRepository) *GameService {
	return &GameService{stats: stats, timers: games.RealTimers}
}

// Stats returns the active profile's personal bests
func (s *GameService) Stats(ctx context.Context) models.GameStats {
	return s.stats.GetGameStats(ctx)
}

// UpdateStats merges update into the stored stats
func (s *GameService) UpdateStats(ctx context.Context, update models.GameStatsUpdate) (models.GameStats, error) {
	return s.stats.SaveGameStats(ctx, update)
}

// RecordBalloonScore stores score if it is a new best
func (s *GameService) RecordBalloonScore(ctx context.Context, score int) (bool, error) {
	return s.stats.RecordBalloonScore(ctx, score)
}

// StartSimon discards any running round and starts a new one
func (s *GameService) StartSimon(ctx context.Context) (games.SimonSnapshot, error) {
	best := s.stats.GetGameStats(ctx).SimonMaxLevel
	simon := games.NewSimon(
		games.WithSimonTimers(s.timers),
		games.WithSimonBest(best, func(level int) {
			if _, err := s.stats.RecordSimonLevel(context.Background(), level); err != nil {
				log.Printf("Error recording Simon level: %v", err)
			}
		}),
	)
	if err := simon.Start(); err != nil {
		return games.SimonSnapshot{}, err
	}

	s.mu.Lock()
	if s.simon != nil {
		s.simon.Stop()
	}
	s.simon = simon
	s.mu.Unlock()

	return simon.Snapshot(), nil
}

func (s *GameService) currentSimon() (*games.Simon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.simon == nil {
		return nil, ErrNoGame
	}
	return s.simon, nil
}

// Simon returns the current round
func (s *GameService) Simon() (games.SimonSnapshot, error) {
	simon, err := s.currentSimon()
	if err != nil {
		return games.SimonSnapshot{}, err
	}
	return simon.Snapshot(), nil
}

// SimonPlaybackDone moves the round to awaiting input
func (s *GameService) SimonPlaybackDone() (games.SimonSnapshot, error) {
	simon, err := s.currentSimon()
	if err != nil {
		return games.SimonSnapshot{}, err
	}
	if err := simon.PlaybackDone(); err != nil {
		return simon.Snapshot(), err
	}
	return simon.Snapshot(), nil
}

// SimonPress handles one pad press
func (s *GameService) SimonPress(c games.Color) (games.SimonSnapshot, error) {
	simon, err := s.currentSimon()
	if err != nil {
		return games.SimonSnapshot{}, err
	}
	if _, err := simon.Press(c); err != nil {
		return simon.Snapshot(), err
	}
	return simon.Snapshot(), nil
}

// StartMemory deals a new board from symbols, or DefaultMemorySymbols when empty
func (s *GameService) StartMemory(symbols []string) games.MemorySnapshot {
	if len(symbols) == 0 {
		symbols = DefaultMemorySymbols
	}
	memory := games.NewMemory(symbols, nil,
		games.WithMemoryTimers(s.timers),
		games.WithMemoryComplete(func(moves int) {
			if _, err := s.stats.RecordMemoryMoves(context.Background(), moves); err != nil {
				log.Printf("Error recording memory moves: %v", err)
			}
		}),
	)

	s.mu.Lock()
	if s.memory != nil {
		s.memory.Stop()
	}
	s.memory = memory
	s.mu.Unlock()

	return memory.Snapshot()
}

// Memory returns the current board
func (s *GameService) Memory() (games.MemorySnapshot, error) {
	s.mu.Lock()
	memory := s.memory
	s.mu.Unlock()

	if memory == nil {
		return games.MemorySnapshot{}, ErrNoGame
	}
	return memory.Snapshot(), nil
}

// FlipCard flips one card on the current board
func (s *GameService) FlipCard(index int) (games.FlipResult, games.MemorySnapshot, error) {
	s.mu.Lock()
	memory := s.memory
	s.mu.Unlock()

	if memory == nil {
		return "", games.MemorySnapshot{}, ErrNoGame
	}
	result, err := memory.Flip(index)
	return result, memory.Snapshot(), err
}

// Reset stops both games. Register it as a ProfileListener.
func (s *GameService) Reset(string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.simon != nil {
		s.simon.Stop()
		s.simon = nil
	}
	if s.memory != nil {
		s.memory.Stop()
		s.memory = nil
	}
}
