package handlers

import (
	"errors"
	"net/http"

	"calmcompanion/internal/games"
	"calmcompanion/internal/models"
	"calmcompanion/internal/repository"
	"calmcompanion/internal/service"
)

// GameHandler handles game sessions and personal bests
type GameHandler struct {
	gameService *service.GameService
}

// NewGameHandler creates a new game handler
func NewGameHandler(gameService *service.GameService) *GameHandler {
	return &GameHandler{gameService: gameService}
}

// memoryBoardView hides the symbols of face-down cards
type memoryBoardView struct {
	Result   games.FlipResult   `json:"result,omitempty"`
	Cards    []games.MemoryCard `json:"cards"`
	Moves    int                `json:"moves"`
	Complete bool               `json:"complete"`
}

func newMemoryBoardView(snap games.MemorySnapshot, result games.FlipResult) memoryBoardView {
	cards := make([]games.MemoryCard, len(snap.Cards))
	for i, c := range snap.Cards {
		cards[i] = c
		if c.State == games.CardHidden {
			cards[i].Symbol = ""
		}
	}
	return memoryBoardView{Result: result, Cards: cards, Moves: snap.Moves, Complete: snap.Complete}
}

type pressRequest struct {
	Color games.Color `json:"color"`
}

type startMemoryRequest struct {
	Symbols []string `json:"symbols"`
}

type flipRequest struct {
	Index int `json:"index"`
}

type scoreRequest struct {
	Score int `json:"score"`
}

type scoreResponse struct {
	NewBest bool             `json:"newBest"`
	Stats   models.GameStats `json:"stats"`
}

func (h *GameHandler) respondGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNoGame):
		respondWithError(w, http.StatusNotFound, "No game in progress", "", nil)
	case errors.Is(err, games.ErrInvalidMove):
		respondWithError(w, http.StatusConflict, err.Error(), "", nil)
	default:
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Game error", err)
	}
}

// GetStats returns the active profile's personal bests
func (h *GameHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.gameService.Stats(r.Context()))
}

// PatchStats merges a partial update into the stored stats
func (h *GameHandler) PatchStats(w http.ResponseWriter, r *http.Request) {
	var update models.GameStatsUpdate
	if !decodeJSON(w, r, &update) {
		return
	}

	stats, err := h.gameService.UpdateStats(r.Context(), update)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidValue) {
			respondWithError(w, http.StatusUnprocessableEntity, "Invalid game stats", "", nil)
			return
		}
		respondWithError(w, http.StatusServiceUnavailable, ErrStorageUnavailable, "Error saving game stats", err)
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}

// StartSimon starts a new Simon round
func (h *GameHandler) StartSimon(w http.ResponseWriter, r *http.Request) {
	snap, err := h.gameService.StartSimon(r.Context())
	if err != nil {
		h.respondGameError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, snap)
}

// GetSimon returns the current Simon round
func (h *GameHandler) GetSimon(w http.ResponseWriter, r *http.Request) {
	snap, err := h.gameService.Simon()
	if err != nil {
		h.respondGameError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, snap)
}

// SimonPlayed signals the client finished showing the sequence
func (h *GameHandler) SimonPlayed(w http.ResponseWriter, r *http.Request) {
	snap, err := h.gameService.SimonPlaybackDone()
	if err != nil {
		h.respondGameError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, snap)
}

// SimonPress handles one pad press
func (h *GameHandler) SimonPress(w http.ResponseWriter, r *http.Request) {
	var req pressRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	snap, err := h.gameService.SimonPress(req.Color)
	if err != nil {
		h.respondGameError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, snap)
}

// StartMemory deals a new board
func (h *GameHandler) StartMemory(w http.ResponseWriter, r *http.Request) {
	var req startMemoryRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Symbols) > 12 {
		respondWithError(w, http.StatusBadRequest, "At most 12 symbols", "", nil)
		return
	}
	respondWithJSON(w, http.StatusCreated, newMemoryBoardView(h.gameService.StartMemory(req.Symbols), ""))
}

// GetMemory returns the current board
func (h *GameHandler) GetMemory(w http.ResponseWriter, r *http.Request) {
	snap, err := h.gameService.Memory()
	if err != nil {
		h.respondGameError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newMemoryBoardView(snap, ""))
}

// FlipCard flips one card
func (h *GameHandler) FlipCard(w http.ResponseWriter, r *http.Request) {
	var req flipRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, snap, err := h.gameService.FlipCard(req.Index)
	if err != nil {
		h.respondGameError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newMemoryBoardView(snap, result))
}

// RecordBalloons stores a balloon-pop score
func (h *GameHandler) RecordBalloons(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Score < 0 {
		respondWithError(w, http.StatusBadRequest, "Score must not be negative", "", nil)
		return
	}

	better, err := h.gameService.RecordBalloonScore(r.Context(), req.Score)
	if err != nil {
		respondWithError(w, http.StatusServiceUnavailable, ErrStorageUnavailable, "Error saving balloon score", err)
		return
	}
	respondWithJSON(w, http.StatusOK, scoreResponse{NewBest: better, Stats: h.gameService.Stats(r.Context())})
}
