package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"calmcompanion/internal/models"
	"calmcompanion/internal/repository"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidProfile  = errors.New("invalid profile")
)

// ProfileListener is notified after the active profile changes
type ProfileListener func(profileID string)

// ProfileService owns profile lifecycle and the active profile session
type ProfileService struct {
	cs       *repository.CollectionStore
	profiles *repository.ProfileRepository

	mu        sync.Mutex
	listeners []ProfileListener
}

// NewProfileService creates a new profile service
func NewProfileService(cs *repository.CollectionStore, profiles *repository.ProfileRepository) *ProfileService {
	return &ProfileService{cs: cs, profiles: profiles}
}

// OnProfileChange registers fn to run after every successful SelectProfile,
// DeleteProfile of the active profile and ResetAppData.
func (s *ProfileService) OnProfileChange(fn ProfileListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *ProfileService) notify(profileID string) {
	s.mu.Lock()
	listeners := append([]ProfileListener(nil), s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(profileID)
	}
}

// ListProfiles returns every profile in insertion order
func (s *ProfileService) ListProfiles(ctx context.Context) models.ProfileList {
	return s.profiles.ListProfiles(ctx)
}

// ActiveProfile returns the resolved active profile id and its record, which
// is nil for the fallback profile or an id that no longer exists.
func (s *ProfileService) ActiveProfile(ctx context.Context) (string, *models.Profile) {
	id := s.cs.ResolvedProfileID()
	return id, s.profiles.GetProfile(ctx, id)
}

// CreateProfile adds a new profile with a fresh id
func (s *ProfileService) CreateProfile(ctx context.Context, name, avatar, themeColor string) (*models.Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidProfile)
	}

	profile := models.Profile{
		ID:         uuid.NewString(),
		Name:       name,
		Avatar:     avatar,
		ThemeColor: themeColor,
		CreatedAt:  time.Now().UnixMilli(),
	}
	if err := s.profiles.UpsertProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	log.Printf("Profile created: id=%s", profile.ID)
	return &profile, nil
}

// SelectProfile makes id the active profile. The fallback profile id is always
// accepted; any other id must exist.
func (s *ProfileService) SelectProfile(ctx context.Context, id string) error {
	if id != s.cs.Keyspace().FallbackProfileID() && s.profiles.GetProfile(ctx, id) == nil {
		return ErrProfileNotFound
	}

	if err := s.profiles.SetActiveProfileID(ctx, id); err != nil {
		return fmt.Errorf("failed to select profile: %w", err)
	}

	s.notify(id)
	return nil
}

// DeleteProfile removes a profile and every key scoped to it
func (s *ProfileService) DeleteProfile(ctx context.Context, id string) error {
	active := s.cs.ResolvedProfileID()

	existed, err := s.profiles.DeleteProfile(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	if !existed {
		return ErrProfileNotFound
	}

	log.Printf("Profile deleted: id=%s", id)
	if active == id {
		s.notify(s.cs.ResolvedProfileID())
	}
	return nil
}

// ResetAppData removes every key in the application namespace
func (s *ProfileService) ResetAppData(ctx context.Context) error {
	removed, err := s.cs.Store().RemoveKeysWithPrefix(ctx, s.cs.Keyspace().Prefix())
	if err != nil {
		return fmt.Errorf("failed to reset app data: %w", err)
	}
	s.cs.Invalidate(ctx)

	log.Printf("App data reset: %d keys removed", removed)
	s.notify(s.cs.ResolvedProfileID())
	return nil
}
