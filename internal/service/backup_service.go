package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"calmcompanion/internal/models"
	"calmcompanion/internal/repository"
)

const (
	backupVersion = "1.0"

	cardsKey   = "cards"
	routineKey = "routine"
)

// ErrInvalidBackup is returned when an import file fails validation. Nothing
// is written when it is returned.
var ErrInvalidBackup = errors.New("invalid backup")

// BackupData is the portable export of one profile's board and routine
type BackupData struct {
	Version    string             `json:"version"`
	ExportedAt time.Time          `json:"exported_at"`
	ProfileID  string             `json:"profile_id"`
	Cards      models.CardList    `json:"cards"`
	Routine    models.RoutineList `json:"routine"`
}

// Validate checks the structure of an import. Absent collections are allowed
// and leave the stored value untouched.
func (b *BackupData) Validate() error {
	if b.Version == "" {
		return errors.New("version is required")
	}
	if b.Cards != nil {
		if err := b.Cards.Validate(); err != nil {
			return fmt.Errorf("cards: %w", err)
		}
	}
	if b.Routine != nil {
		if err := b.Routine.Validate(); err != nil {
			return fmt.Errorf("routine: %w", err)
		}
	}
	return nil
}

// BackupService handles profile export and restore
type BackupService struct {
	cs *repository.CollectionStore
}

// NewBackupService creates a new backup service
func NewBackupService(cs *repository.CollectionStore) *BackupService {
	return &BackupService{cs: cs}
}

func (s *BackupService) profileOrActive(profileID string) string {
	if profileID == "" {
		return s.cs.ResolvedProfileID()
	}
	return profileID
}

// Export collects the cards and routine of profileID, or of the active
// profile when profileID is empty.
func (s *BackupService) Export(ctx context.Context, profileID string) *BackupData {
	profileID = s.profileOrActive(profileID)

	return &BackupData{
		Version:    backupVersion,
		ExportedAt: time.Now().UTC(),
		ProfileID:  profileID,
		Cards:      repository.GetProfileCollection(ctx, s.cs, profileID, cardsKey, models.CardList{}),
		Routine:    repository.GetProfileCollection(ctx, s.cs, profileID, routineKey, models.RoutineList{}),
	}
}

// ExportToWriter writes an indented export (useful for HTTP responses and files)
func (s *BackupService) ExportToWriter(ctx context.Context, w io.Writer, profileID string) error {
	backup := s.Export(ctx, profileID)

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	log.Printf("Profile %s exported: %d cards, %d routine tasks", backup.ProfileID, len(backup.Cards), len(backup.Routine))
	return nil
}

// ImportFromReader restores a backup into profileID, or into the active
// profile when profileID is empty. The whole file is validated before
// anything is written.
func (s *BackupService) ImportFromReader(ctx context.Context, r io.Reader, profileID string) (*BackupData, error) {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return nil, fmt.Errorf("%w: failed to decode backup: %w", ErrInvalidBackup, err)
	}
	if err := backup.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBackup, err)
	}

	profileID = s.profileOrActive(profileID)
	keys := s.cs.Keyspace()

	entries := make(map[string]string, 2)
	if backup.Cards != nil {
		data, err := json.Marshal(backup.Cards)
		if err != nil {
			return nil, fmt.Errorf("failed to encode cards: %w", err)
		}
		entries[keys.Scoped(profileID, cardsKey)] = string(data)
	}
	if backup.Routine != nil {
		data, err := json.Marshal(backup.Routine)
		if err != nil {
			return nil, fmt.Errorf("failed to encode routine: %w", err)
		}
		entries[keys.Scoped(profileID, routineKey)] = string(data)
	}

	if len(entries) > 0 {
		if err := s.cs.Store().SetMany(ctx, entries); err != nil {
			return nil, fmt.Errorf("failed to import backup: %w", err)
		}
	}
	s.cs.Invalidate(ctx)

	log.Printf("Backup version %s (exported at %s) imported into profile %s", backup.Version, backup.ExportedAt.Format(time.RFC3339), profileID)
	backup.ProfileID = profileID
	return &backup, nil
}
