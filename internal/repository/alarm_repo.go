package repository

import (
	"context"

	"calmcompanion/internal/models"
)

const alarmsKey = "alarms"

// AlarmRepository stores the active profile's daily reminders
type AlarmRepository struct {
	cs *CollectionStore
}

func NewAlarmRepository(cs *CollectionStore) *AlarmRepository {
	return &AlarmRepository{cs: cs}
}

// GetAlarms returns the active profile's alarms, empty when none are stored
func (r *AlarmRepository) GetAlarms(ctx context.Context) models.AlarmList {
	return GetCollection(ctx, r.cs, alarmsKey, models.AlarmList{})
}

func (r *AlarmRepository) SaveAlarms(ctx context.Context, alarms models.AlarmList) error {
	return SaveCollection(ctx, r.cs, alarmsKey, alarms)
}
