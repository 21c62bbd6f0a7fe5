package scheduler

import "time"

// BreathingPhase names a step in the breathing cycle
type BreathingPhase string

const (
	PhaseInhale BreathingPhase = "inhale"
	PhaseHold   BreathingPhase = "hold"
	PhaseExhale BreathingPhase = "exhale"
)

type phaseStep struct {
	phase    BreathingPhase
	duration time.Duration
}

// BreathingPacer describes a repeating inhale/hold/exhale cycle
type BreathingPacer struct {
	steps []phaseStep
}

// DefaultBreathingPacer uses 4 seconds per phase
func DefaultBreathingPacer() BreathingPacer {
	return NewBreathingPacer(4*time.Second, 4*time.Second, 4*time.Second)
}

func NewBreathingPacer(inhale, hold, exhale time.Duration) BreathingPacer {
	return BreathingPacer{steps: []phaseStep{
		{PhaseInhale, inhale},
		{PhaseHold, hold},
		{PhaseExhale, exhale},
	}}
}

// CycleLength is the duration of one full cycle
func (p BreathingPacer) CycleLength() time.Duration {
	var total time.Duration
	for _, s := range p.steps {
		total += s.duration
	}
	return total
}

// PhaseState is where a session is at a point in time
type PhaseState struct {
	Phase     BreathingPhase `json:"phase"`
	Remaining time.Duration  `json:"remaining"`
	Cycle     int            `json:"cycle"` // zero-based count of completed cycles
}

// PhaseAt returns the phase elapsed time into a session
func (p BreathingPacer) PhaseAt(elapsed time.Duration) PhaseState {
	cycle := p.CycleLength()
	if elapsed < 0 || cycle <= 0 {
		elapsed = 0
	}

	state := PhaseState{}
	if cycle > 0 {
		state.Cycle = int(elapsed / cycle)
		elapsed %= cycle
	}

	for _, s := range p.steps {
		if elapsed < s.duration {
			state.Phase = s.phase
			state.Remaining = s.duration - elapsed
			return state
		}
		elapsed -= s.duration
	}

	last := p.steps[len(p.steps)-1]
	state.Phase = last.phase
	return state
}
