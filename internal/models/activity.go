package models

import "errors"

// ActivityType classifies activity log entries
type ActivityType string

const (
	ActivityCardClick        ActivityType = "card_click"
	ActivityTaskComplete     ActivityType = "task_complete"
	ActivityBreathingSession ActivityType = "breathing_session"
	ActivityOther            ActivityType = "other"
)

// ParseActivityType maps unknown values to ActivityOther
func ParseActivityType(s string) ActivityType {
	switch t := ActivityType(s); t {
	case ActivityCardClick, ActivityTaskComplete, ActivityBreathingSession:
		return t
	default:
		return ActivityOther
	}
}

// ActivityLog is one timestamped event in a profile's history
type ActivityLog struct {
	ID        string       `json:"id"`
	Timestamp int64        `json:"timestamp"` // epoch millis
	Type      ActivityType `json:"type"`
	Detail    string       `json:"detail"`
}

func (a ActivityLog) Validate() error {
	if a.ID == "" {
		return errors.New("activity id is required")
	}
	if a.Timestamp <= 0 {
		return errors.New("activity timestamp is required")
	}
	return nil
}

// ActivityLogList is stored newest first
type ActivityLogList []ActivityLog

func (l ActivityLogList) Validate() error {
	return validateEach(l)
}
