package handlers

import (
	"net/http"
	"strconv"
	"time"

	"calmcompanion/internal/scheduler"
	"calmcompanion/internal/service"
)

// StatusHandler serves timer-driven state: presence, fired alarms and breathing pace
type StatusHandler struct {
	presence *scheduler.Presence
	notifier *service.AlarmNotifier
	pacer    scheduler.BreathingPacer
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(presence *scheduler.Presence, notifier *service.AlarmNotifier, pacer scheduler.BreathingPacer) *StatusHandler {
	return &StatusHandler{presence: presence, notifier: notifier, pacer: pacer}
}

type presenceResponse struct {
	Online int `json:"online"`
}

type breathingResponse struct {
	Phase       scheduler.BreathingPhase `json:"phase"`
	RemainingMs int64                    `json:"remainingMs"`
	Cycle       int                      `json:"cycle"`
	CycleMs     int64                    `json:"cycleMs"`
}

// Presence returns the simulated online count
func (h *StatusHandler) Presence(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, presenceResponse{Online: h.presence.Count()})
}

// FiredAlarms returns and clears alarms that went off since the last call
func (h *StatusHandler) FiredAlarms(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.notifier.Drain())
}

// Breathing returns the phase at ?elapsed=<ms> into a session
func (h *StatusHandler) Breathing(w http.ResponseWriter, r *http.Request) {
	var elapsed time.Duration
	if v := r.URL.Query().Get("elapsed"); v != "" {
		ms, err := strconv.ParseInt(v, 10, 64)
		if err != nil || ms < 0 {
			respondWithError(w, http.StatusBadRequest, "elapsed must be a non-negative number of milliseconds", "", nil)
			return
		}
		elapsed = time.Duration(ms) * time.Millisecond
	}

	state := h.pacer.PhaseAt(elapsed)
	respondWithJSON(w, http.StatusOK, breathingResponse{
		Phase:       state.Phase,
		RemainingMs: state.Remaining.Milliseconds(),
		Cycle:       state.Cycle,
		CycleMs:     h.pacer.CycleLength().Milliseconds(),
	})
}
