package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"calmcompanion/internal/models"
)

const (
	activityLogsKey = "activity_logs"

	// MaxActivityLogs bounds each profile's log
	MaxActivityLogs = 100
)

// ActivityRepository keeps a capped, newest-first event log per profile
type ActivityRepository struct {
	cs  *CollectionStore
	now func() time.Time
	mu  sync.Mutex
}

func NewActivityRepository(cs *CollectionStore) *ActivityRepository {
	return &ActivityRepository{cs: cs, now: time.Now}
}

// LogActivity prepends a new entry and truncates the log to MaxActivityLogs
func (r *ActivityRepository) LogActivity(ctx context.Context, activityType models.ActivityType, detail string) (models.ActivityLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := models.ActivityLog{
		ID:        newTimeOrderedID(),
		Timestamp: r.now().UnixMilli(),
		Type:      activityType,
		Detail:    detail,
	}

	_, err := UpdateCollection(ctx, r.cs, activityLogsKey, models.ActivityLogList{}, func(logs models.ActivityLogList) (models.ActivityLogList, error) {
		updated := make(models.ActivityLogList, 0, min(len(logs)+1, MaxActivityLogs))
		updated = append(updated, entry)
		updated = append(updated, logs...)
		if len(updated) > MaxActivityLogs {
			updated = updated[:MaxActivityLogs]
		}
		return updated, nil
	})
	return entry, err
}

// GetLogs returns the active profile's log, newest first
func (r *ActivityRepository) GetLogs(ctx context.Context) models.ActivityLogList {
	return GetCollection(ctx, r.cs, activityLogsKey, models.ActivityLogList{})
}

// newTimeOrderedID returns a UUIDv7, which embeds the creation time
func newTimeOrderedID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
