package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"calmcompanion/internal/service"
)

// CaregiverHandler handles the caregiver PIN and unlock
type CaregiverHandler struct {
	caregiverService *service.CaregiverService
}

// NewCaregiverHandler creates a new caregiver handler
func NewCaregiverHandler(caregiverService *service.CaregiverService) *CaregiverHandler {
	return &CaregiverHandler{caregiverService: caregiverService}
}

type pinRequest struct {
	PIN string `json:"pin"`
}

type unlockResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type lockStatusResponse struct {
	Locked bool `json:"locked"`
}

// Status reports whether a PIN is configured
func (h *CaregiverHandler) Status(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, lockStatusResponse{Locked: h.caregiverService.HasPIN(r.Context())})
}

// SetPIN sets or replaces the PIN. The route is guarded by RequireCaregiver,
// so changing an existing PIN needs a valid token.
func (h *CaregiverHandler) SetPIN(w http.ResponseWriter, r *http.Request) {
	var req pinRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.caregiverService.SetPIN(r.Context(), req.PIN); err != nil {
		if errors.Is(err, service.ErrInvalidPINValue) {
			respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
			return
		}
		respondWithError(w, http.StatusServiceUnavailable, ErrStorageUnavailable, "Error saving PIN", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Unlock exchanges the PIN for a caregiver token
func (h *CaregiverHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	var req pinRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, expiresAt, err := h.caregiverService.Unlock(r.Context(), req.PIN)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPINNotSet):
			respondWithError(w, http.StatusConflict, "No PIN configured", "", nil)
		case errors.Is(err, service.ErrInvalidPIN):
			respondWithError(w, http.StatusUnauthorized, "Incorrect PIN", "", nil)
		case errors.Is(err, service.ErrUnlockLocked):
			wait := time.Until(h.caregiverService.LockedUntil())
			w.Header().Set("Retry-After", strconv.Itoa(int(wait.Seconds())+1))
			respondWithError(w, http.StatusTooManyRequests, "Too many failed attempts, try again later", "", nil)
		default:
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error unlocking", err)
		}
		return
	}
	respondWithJSON(w, http.StatusOK, unlockResponse{Token: token, ExpiresAt: expiresAt})
}
