package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"calmcompanion/internal/service"
)

// BackupHandler handles export, import, reset and the activity digest
type BackupHandler struct {
	backupService  *service.BackupService
	profileService *service.ProfileService
	digestService  *service.DigestService
	importMaxSize  int64
}

// NewBackupHandler creates a new backup handler
func NewBackupHandler(backupService *service.BackupService, profileService *service.ProfileService, digestService *service.DigestService, importMaxSize int64) *BackupHandler {
	return &BackupHandler{
		backupService:  backupService,
		profileService: profileService,
		digestService:  digestService,
		importMaxSize:  importMaxSize,
	}
}

type digestRequest struct {
	To string `json:"to"`
}

type digestResponse struct {
	Sent    bool                  `json:"sent"`
	Summary service.DigestSummary `json:"summary"`
}

// Export downloads the active profile's cards and routine
func (h *BackupHandler) Export(w http.ResponseWriter, r *http.Request) {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("calmcompanion_backup_%s.json", timestamp)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	if err := h.backupService.ExportToWriter(r.Context(), w, ""); err != nil {
		log.Printf("Error exporting backup: %v", err)
	}
}

// Import restores a backup into the active profile
func (h *BackupHandler) Import(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, h.importMaxSize)

	backup, err := h.backupService.ImportFromReader(r.Context(), body, "")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			respondWithError(w, http.StatusRequestEntityTooLarge, ErrBodyTooLarge, "", nil)
		case errors.Is(err, service.ErrInvalidBackup):
			respondWithError(w, http.StatusUnprocessableEntity, err.Error(), "", nil)
		default:
			respondWithError(w, http.StatusServiceUnavailable, ErrStorageUnavailable, "Error importing backup", err)
		}
		return
	}
	respondWithJSON(w, http.StatusOK, backup)
}

// Reset removes all application data
func (h *BackupHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.profileService.ResetAppData(r.Context()); err != nil {
		respondWithError(w, http.StatusServiceUnavailable, ErrStorageUnavailable, "Error resetting app data", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Digest emails the activity summary to a caregiver
func (h *BackupHandler) Digest(w http.ResponseWriter, r *http.Request) {
	var req digestRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	summary, sent, err := h.digestService.Send(r.Context(), req.To)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRecipient) {
			respondWithError(w, http.StatusBadRequest, "Invalid email address", "", nil)
			return
		}
		respondWithError(w, http.StatusBadGateway, "Failed to send digest", "Error sending digest", err)
		return
	}
	respondWithJSON(w, http.StatusOK, digestResponse{Sent: sent, Summary: summary})
}
