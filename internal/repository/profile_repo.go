package repository

import (
	"context"
	"fmt"
	"log"
	"sync"

	"calmcompanion/internal/models"
)

const profilesKey = "profiles"

// ProfileRepository manages the global profile list and the active profile pointer
type ProfileRepository struct {
	cs *CollectionStore
	mu sync.Mutex
}

func NewProfileRepository(cs *CollectionStore) *ProfileRepository {
	return &ProfileRepository{cs: cs}
}

// ListProfiles returns every profile in insertion order
func (r *ProfileRepository) ListProfiles(ctx context.Context) models.ProfileList {
	return GetGlobal(ctx, r.cs, profilesKey, models.ProfileList{})
}

// GetProfile returns the profile with id, or nil
func (r *ProfileRepository) GetProfile(ctx context.Context, id string) *models.Profile {
	profiles := r.ListProfiles(ctx)
	if i := profiles.Index(id); i >= 0 {
		return &profiles[i]
	}
	return nil
}

// UpsertProfile replaces a profile with the same id in place, or appends it
func (r *ProfileRepository) UpsertProfile(ctx context.Context, profile models.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	profiles := r.ListProfiles(ctx)
	if i := profiles.Index(profile.ID); i >= 0 {
		profiles[i] = profile
	} else {
		profiles = append(profiles, profile)
	}
	return SaveGlobal(ctx, r.cs, profilesKey, profiles)
}

// DeleteProfile removes the profile from the list, then purges its scoped keys
// and clears the active pointer if it referenced it. It reports whether the
// profile existed.
func (r *ProfileRepository) DeleteProfile(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	profiles := r.ListProfiles(ctx)
	i := profiles.Index(id)
	if i < 0 {
		return false, nil
	}
	profiles = append(profiles[:i], profiles[i+1:]...)
	if err := SaveGlobal(ctx, r.cs, profilesKey, profiles); err != nil {
		return false, err
	}

	removed, err := r.cs.PurgeProfile(ctx, id)
	if err != nil {
		return true, fmt.Errorf("failed to remove profile data: %w", err)
	}
	log.Printf("Profile %s removed with %d keys", id, removed)
	return true, nil
}

// GetActiveProfileID returns the selected profile id, if any
func (r *ProfileRepository) GetActiveProfileID() (string, bool) {
	return r.cs.ActiveProfileID()
}

// SetActiveProfileID overwrites the pointer without checking that id exists
func (r *ProfileRepository) SetActiveProfileID(ctx context.Context, id string) error {
	return r.cs.SetActiveProfile(ctx, id)
}
