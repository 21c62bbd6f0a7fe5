package models

import "errors"

// GameStats holds a profile's personal bests
type GameStats struct {
	MemoryBestMoves  *int `json:"memoryBestMoves"`
	SimonMaxLevel    int  `json:"simonMaxLevel"`
	BalloonsMaxScore int  `json:"balloonsMaxScore"`
}

func (g GameStats) Validate() error {
	if g.MemoryBestMoves != nil && *g.MemoryBestMoves < 0 {
		return errors.New("memoryBestMoves must not be negative")
	}
	if g.SimonMaxLevel < 0 || g.BalloonsMaxScore < 0 {
		return errors.New("game stats must not be negative")
	}
	return nil
}

// GameStatsUpdate is a partial update; nil fields are left unchanged
type GameStatsUpdate struct {
	MemoryBestMoves  *int `json:"memoryBestMoves,omitempty"`
	SimonMaxLevel    *int `json:"simonMaxLevel,omitempty"`
	BalloonsMaxScore *int `json:"balloonsMaxScore,omitempty"`
}

// Apply merges the non-nil fields of u over g
func (g GameStats) Apply(u GameStatsUpdate) GameStats {
	if u.MemoryBestMoves != nil {
		v := *u.MemoryBestMoves
		g.MemoryBestMoves = &v
	}
	if u.SimonMaxLevel != nil {
		g.SimonMaxLevel = *u.SimonMaxLevel
	}
	if u.BalloonsMaxScore != nil {
		g.BalloonsMaxScore = *u.BalloonsMaxScore
	}
	return g
}
