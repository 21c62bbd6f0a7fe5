package service

import (
	"log"
	"sync"
	"time"

	"calmcompanion/internal/models"
)

const maxFiredAlarms = 20

// FiredAlarm is an alarm that went off
type FiredAlarm struct {
	Alarm     models.Alarm `json:"alarm"`
	ProfileID string       `json:"profileId"`
	FiredAt   int64        `json:"firedAt"` // epoch millis
}

// AlarmNotifier keeps the most recently fired alarms until clients collect
// them. Fired alarms belonging to a previous profile are dropped on switch.
type AlarmNotifier struct {
	profileID func() string
	now       func() time.Time

	mu    sync.Mutex
	fired []FiredAlarm
}

func NewAlarmNotifier(profileID func() string) *AlarmNotifier {
	return &AlarmNotifier{profileID: profileID, now: time.Now}
}

// Fire records alarm. It is the AlarmChecker callback.
func (n *AlarmNotifier) Fire(alarm models.Alarm) {
	entry := FiredAlarm{Alarm: alarm, ProfileID: n.profileID(), FiredAt: n.now().UnixMilli()}
	log.Printf("Alarm fired: %s (%s) for profile %s", alarm.Label, alarm.Time, entry.ProfileID)

	n.mu.Lock()
	defer n.mu.Unlock()
	n.fired = append([]FiredAlarm{entry}, n.fired...)
	if len(n.fired) > maxFiredAlarms {
		n.fired = n.fired[:maxFiredAlarms]
	}
}

// Drain returns pending alarms, newest first, and clears them
func (n *AlarmNotifier) Drain() []FiredAlarm {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := n.fired
	n.fired = nil
	if out == nil {
		out = []FiredAlarm{}
	}
	return out
}

// Reset drops pending alarms. Register it as a ProfileListener.
func (n *AlarmNotifier) Reset(string) {
	n.mu.Lock()
	n.fired = nil
	n.mu.Unlock()
}
