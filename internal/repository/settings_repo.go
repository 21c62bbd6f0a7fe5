package repository

import (
	"context"

	"calmcompanion/internal/models"
)

const settingsKey = "settings"

// SettingsRepository stores per-profile preferences
type SettingsRepository struct {
	cs *CollectionStore
}

func NewSettingsRepository(cs *CollectionStore) *SettingsRepository {
	return &SettingsRepository{cs: cs}
}

// GetSettings returns the active profile's settings or the defaults
func (r *SettingsRepository) GetSettings(ctx context.Context) models.Settings {
	return GetCollection(ctx, r.cs, settingsKey, models.DefaultSettings())
}

// SaveSettings replaces the active profile's settings
func (r *SettingsRepository) SaveSettings(ctx context.Context, settings models.Settings) error {
	return SaveCollection(ctx, r.cs, settingsKey, settings)
}

// Language returns the active profile's preferred language tag
func (r *SettingsRepository) Language(ctx context.Context) models.Language {
	return r.GetSettings(ctx).Language
}
