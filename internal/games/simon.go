package games

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"
)

// SimonState is the phase of a sequence-recall round
type SimonState string

const (
	SimonIdle          SimonState = "idle"
	SimonPresenting    SimonState = "presenting"
	SimonAwaitingInput SimonState = "awaiting_input"
	SimonSuccess       SimonState = "success"
	SimonError         SimonState = "error"
)

// Color is one of the four pads
type Color int

const (
	Green Color = iota
	Red
	Yellow
	Blue
)

const NumColors = 4

func (c Color) String() string {
	switch c {
	case Green:
		return "green"
	case Red:
		return "red"
	case Yellow:
		return "yellow"
	case Blue:
		return "blue"
	default:
		return fmt.Sprintf("color(%d)", int(c))
	}
}

// ParseColor maps a pad name to its Color
func ParseColor(name string) (Color, error) {
	for c := Color(0); c < NumColors; c++ {
		if c.String() == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown color %q", ErrInvalidMove, name)
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

const (
	DefaultSimonErrorDelay   = 1500 * time.Millisecond
	DefaultSimonSuccessDelay = 1000 * time.Millisecond
)

// SimonSnapshot is a copy of the game state safe to hand to callers
type SimonSnapshot struct {
	State    SimonState `json:"state"`
	Sequence []Color    `json:"sequence"`
	Position int        `json:"position"`
	Level    int        `json:"level"`
	Best     int        `json:"best"`
}

// Simon is the sequence-recall game. Each completed round appends one step.
type Simon struct {
	mu       sync.Mutex
	state    SimonState
	sequence []Color
	position int
	best     int

	rng          *rand.Rand
	timers       Timers
	errorDelay   time.Duration
	successDelay time.Duration
	onLevel      func(level int)
	pending      Timer
}

type SimonOption func(*Simon)

func WithSimonRand(rng *rand.Rand) SimonOption {
	return func(s *Simon) { s.rng = rng }
}

func WithSimonTimers(t Timers) SimonOption {
	return func(s *Simon) { s.timers = t }
}

func WithSimonDelays(errorDelay, successDelay time.Duration) SimonOption {
	return func(s *Simon) {
		s.errorDelay = errorDelay
		s.successDelay = successDelay
	}
}

// WithSimonBest seeds the personal best and registers fn for new bests
func WithSimonBest(best int, fn func(level int)) SimonOption {
	return func(s *Simon) {
		s.best = best
		s.onLevel = fn
	}
}

func NewSimon(opts ...SimonOption) *Simon {
	s := &Simon{
		state:        SimonIdle,
		timers:       RealTimers,
		errorDelay:   DefaultSimonErrorDelay,
		successDelay: DefaultSimonSuccessDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins a new game with a one-step sequence
func (s *Simon) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != SimonIdle {
		return fmt.Errorf("%w: cannot start while %s", ErrInvalidMove, s.state)
	}
	s.sequence = s.sequence[:0]
	s.appendStep()
	s.position = 0
	s.state = SimonPresenting
	return nil
}

// PlaybackDone signals that the sequence has been shown to the player
func (s *Simon) PlaybackDone() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != SimonPresenting {
		return fmt.Errorf("%w: playback finished while %s", ErrInvalidMove, s.state)
	}
	s.position = 0
	s.state = SimonAwaitingInput
	return nil
}

// Press handles one player input and returns the resulting state
func (s *Simon) Press(c Color) (SimonState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != SimonAwaitingInput {
		return s.state, fmt.Errorf("%w: input while %s", ErrInvalidMove, s.state)
	}

	if s.sequence[s.position] != c {
		s.state = SimonError
		s.schedule(s.errorDelay, s.resetAfterError)
		return s.state, nil
	}

	s.position++
	if s.position < len(s.sequence) {
		return s.state, nil
	}

	level := len(s.sequence)
	if level > s.best {
		s.best = level
		if s.onLevel != nil {
			s.onLevel(level)
		}
	}
	s.appendStep()
	s.position = 0
	s.state = SimonSuccess
	s.schedule(s.successDelay, s.presentNext)
	return s.state, nil
}

// Snapshot returns a copy of the current state
func (s *Simon) Snapshot() SimonSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	level := len(s.sequence) - 1
	if s.state == SimonIdle || level < 0 {
		level = 0
	}
	return SimonSnapshot{
		State:    s.state,
		Sequence: append([]Color(nil), s.sequence...),
		Position: s.position,
		Level:    level,
		Best:     s.best,
	}
}

// Stop cancels any pending transition and returns the game to idle
func (s *Simon) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelPending()
	s.sequence = s.sequence[:0]
	s.position = 0
	s.state = SimonIdle
}

func (s *Simon) resetAfterError() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != SimonError {
		return
	}
	s.pending = nil
	s.sequence = s.sequence[:0]
	s.position = 0
	s.state = SimonIdle
}

func (s *Simon) presentNext() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != SimonSuccess {
		return
	}
	s.pending = nil
	s.state = SimonPresenting
}

// schedule must be called with s.mu held
func (s *Simon) schedule(d time.Duration, f func()) {
	s.cancelPending()
	s.pending = s.timers.AfterFunc(d, f)
}

func (s *Simon) cancelPending() {
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
}

func (s *Simon) appendStep() {
	var n int
	if s.rng != nil {
		n = s.rng.IntN(NumColors)
	} else {
		n = rand.IntN(NumColors)
	}
	s.sequence = append(s.sequence, Color(n))
}
