package handlers

import (
	"errors"
	"net/http"

	"calmcompanion/internal/models"
	"calmcompanion/internal/repository"
)

// ActivityHandler handles the activity log and site reviews
type ActivityHandler struct {
	activityRepo *repository.ActivityRepository
	reviewRepo   *repository.ReviewRepository
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(activityRepo *repository.ActivityRepository, reviewRepo *repository.ReviewRepository) *ActivityHandler {
	return &ActivityHandler{activityRepo: activityRepo, reviewRepo: reviewRepo}
}

type logActivityRequest struct {
	Type   string `json:"type"`
	Detail string `json:"detail"`
}

// GetLogs returns the active profile's log, newest first
func (h *ActivityHandler) GetLogs(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.activityRepo.GetLogs(r.Context()))
}

// LogActivity appends an entry to the active profile's log
func (h *ActivityHandler) LogActivity(w http.ResponseWriter, r *http.Request) {
	var req logActivityRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	entry, err := h.activityRepo.LogActivity(r.Context(), models.ParseActivityType(req.Type), req.Detail)
	if err != nil {
		respondWithError(w, http.StatusServiceUnavailable, ErrStorageUnavailable, "Error logging activity", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, entry)
}

// GetReviews returns stored reviews or the seed reviews
func (h *ActivityHandler) GetReviews(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.reviewRepo.GetReviews(r.Context()))
}

// SaveReview prepends a review
func (h *ActivityHandler) SaveReview(w http.ResponseWriter, r *http.Request) {
	var review models.Review
	if !decodeJSON(w, r, &review) {
		return
	}

	saved, err := h.reviewRepo.SaveReview(r.Context(), review)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidValue) {
			respondWithError(w, http.StatusUnprocessableEntity, "Rating must be between 1 and 5", "", nil)
			return
		}
		respondWithError(w, http.StatusServiceUnavailable, ErrStorageUnavailable, "Error saving review", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, saved)
}
