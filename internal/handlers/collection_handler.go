package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"regexp"

	"calmcompanion/internal/models"
	"calmcompanion/internal/repository"
)

var collectionKeyPattern = regexp.MustCompile(`^[a-z0-9_]{1,64}$`)

// schemaFor returns a validator for collections with a known shape
func schemaFor(key string) func(json.RawMessage) error {
	switch key {
	case "cards":
		return validateAs[models.CardList]
	case "routine":
		return validateAs[models.RoutineList]
	case "alarms":
		return validateAs[models.AlarmList]
	case "settings":
		return validateAs[models.Settings]
	case "activity_logs":
		return validateAs[models.ActivityLogList]
	case "game_stats":
		return validateAs[models.GameStats]
	}
	return nil
}

func validateAs[T models.Validator](raw json.RawMessage) error {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	return v.Validate()
}

// CollectionHandler exposes the active profile's collections as raw JSON
type CollectionHandler struct {
	cs *repository.CollectionStore
}

// NewCollectionHandler creates a new collection handler
func NewCollectionHandler(cs *repository.CollectionStore) *CollectionHandler {
	return &CollectionHandler{cs: cs}
}

func (h *CollectionHandler) key(w http.ResponseWriter, r *http.Request) (string, bool) {
	key := r.PathValue("key")
	if !collectionKeyPattern.MatchString(key) {
		respondWithError(w, http.StatusBadRequest, "Invalid collection key", "", nil)
		return "", false
	}
	return key, true
}

// GetCollection returns the stored value, or 404 when nothing valid is stored
func (h *CollectionHandler) GetCollection(w http.ResponseWriter, r *http.Request) {
	key, ok := h.key(w, r)
	if !ok {
		return
	}

	raw := repository.GetCollection[json.RawMessage](r.Context(), h.cs, key, nil)
	if raw != nil {
		if check := schemaFor(key); check != nil && check(raw) != nil {
			raw = nil
		}
	}
	if raw == nil {
		respondWithError(w, http.StatusNotFound, "Collection not found", "", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(raw)
}

// PutCollection replaces the stored value
func (h *CollectionHandler) PutCollection(w http.ResponseWriter, r *http.Request) {
	key, ok := h.key(w, r)
	if !ok {
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err != nil {
		respondWithError(w, http.StatusRequestEntityTooLarge, ErrBodyTooLarge, "", nil)
		return
	}
	if !json.Valid(body) {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", nil)
		return
	}
	if check := schemaFor(key); check != nil {
		if err := check(body); err != nil {
			respondWithError(w, http.StatusUnprocessableEntity, "Invalid "+key+": "+err.Error(), "", nil)
			return
		}
	}

	if err := repository.SaveCollection(r.Context(), h.cs, key, json.RawMessage(body)); err != nil {
		if errors.Is(err, repository.ErrInvalidValue) {
			respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", nil)
			return
		}
		respondWithError(w, http.StatusServiceUnavailable, ErrStorageUnavailable, "Error saving collection "+key, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
