package handlers

import (
	"errors"
	"net/http"

	"calmcompanion/internal/models"
	"calmcompanion/internal/service"
)

// ProfileHandler handles the profile registry and session
type ProfileHandler struct {
	profileService *service.ProfileService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

type createProfileRequest struct {
	Name       string `json:"name"`
	Avatar     string `json:"avatar"`
	ThemeColor string `json:"themeColor"`
}

type activeProfileResponse struct {
	ID      string          `json:"id"`
	Profile *models.Profile `json:"profile"`
}

// ListProfiles returns every profile
func (h *ProfileHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.profileService.ListProfiles(r.Context()))
}

// CreateProfile adds a profile
func (h *ProfileHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	var req createProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	profile, err := h.profileService.CreateProfile(r.Context(), req.Name, req.Avatar, req.ThemeColor)
	if err != nil {
		if errors.Is(err, service.ErrInvalidProfile) {
			respondWithError(w, http.StatusBadRequest, "Profile name is required", "", nil)
			return
		}
		respondWithError(w, http.StatusServiceUnavailable, ErrStorageUnavailable, "Error creating profile", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, profile)
}

// ActiveProfile returns the resolved active profile
func (h *ProfileHandler) ActiveProfile(w http.ResponseWriter, r *http.Request) {
	id, profile := h.profileService.ActiveProfile(r.Context())
	respondWithJSON(w, http.StatusOK, activeProfileResponse{ID: id, Profile: profile})
}

// SelectProfile switches the active profile
func (h *ProfileHandler) SelectProfile(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.profileService.SelectProfile(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			respondWithError(w, http.StatusNotFound, "Profile not found", "", nil)
			return
		}
		respondWithError(w, http.StatusServiceUnavailable, ErrStorageUnavailable, "Error selecting profile", err)
		return
	}
	h.ActiveProfile(w, r)
}

// DeleteProfile removes a profile and its data
func (h *ProfileHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.profileService.DeleteProfile(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			respondWithError(w, http.StatusNotFound, "Profile not found", "", nil)
			return
		}
		respondWithError(w, http.StatusServiceUnavailable, ErrStorageUnavailable, "Error deleting profile", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
