package scheduler

import (
	"context"
	"sync"
	"time"

	"calmcompanion/internal/models"
)

// AlarmSource provides the alarms to check
type AlarmSource interface {
	GetAlarms(ctx context.Context) models.AlarmList
}

// AlarmChecker fires enabled alarms whose HH:MM matches the current minute.
// Each alarm fires at most once per minute however often Check runs.
type AlarmChecker struct {
	source AlarmSource
	fire   func(models.Alarm)

	mu        sync.Mutex
	lastFired map[string]string
}

func NewAlarmChecker(source AlarmSource, fire func(models.Alarm)) *AlarmChecker {
	return &AlarmChecker{
		source:    source,
		fire:      fire,
		lastFired: make(map[string]string),
	}
}

// Check is a Task
func (c *AlarmChecker) Check(ctx context.Context, now time.Time) error {
	current := now.Format(models.ClockLayout)
	minute := now.Format("2006-01-02 15:04")

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, alarm := range c.source.GetAlarms(ctx) {
		if !alarm.Enabled || alarm.Time != current {
			continue
		}
		if c.lastFired[alarm.ID] == minute {
			continue
		}
		c.lastFired[alarm.ID] = minute
		c.fire(alarm)
	}
	return nil
}
