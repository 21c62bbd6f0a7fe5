package games

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"
)

// CardState is the face state of a memory card
type CardState string

const (
	CardHidden   CardState = "hidden"
	CardRevealed CardState = "revealed"
	CardMatched  CardState = "matched"
)

// FlipResult describes what a flip did
type FlipResult string

const (
	FlipRevealed FlipResult = "revealed"
	FlipMatch    FlipResult = "match"
	FlipMismatch FlipResult = "mismatch"
	FlipComplete FlipResult = "complete"
)

const DefaultMismatchDelay = 1000 * time.Millisecond

// MemoryCard is one face-down tile; two cards share each Symbol
type MemoryCard struct {
	Symbol string    `json:"symbol"`
	State  CardState `json:"state"`
}

// MemorySnapshot is a copy of the board safe to hand to callers
type MemorySnapshot struct {
	Cards    []MemoryCard `json:"cards"`
	Moves    int          `json:"moves"`
	Complete bool         `json:"complete"`
}

// Memory is the pair-matching game
type Memory struct {
	mu       sync.Mutex
	cards    []MemoryCard
	revealed []int
	moves    int
	matched  int

	timers        Timers
	mismatchDelay time.Duration
	onComplete    func(moves int)
	pending       Timer
}

type MemoryOption func(*Memory)

func WithMemoryTimers(t Timers) MemoryOption {
	return func(m *Memory) { m.timers = t }
}

func WithMismatchDelay(d time.Duration) MemoryOption {
	return func(m *Memory) { m.mismatchDelay = d }
}

func WithMemoryComplete(fn func(moves int)) MemoryOption {
	return func(m *Memory) { m.onComplete = fn }
}

// NewMemory deals two cards per symbol, shuffled with rng (nil uses the
// global source)
func NewMemory(symbols []string, rng *rand.Rand, opts ...MemoryOption) *Memory {
	cards := make([]MemoryCard, 0, len(symbols)*2)
	for _, sym := range symbols {
		cards = append(cards,
			MemoryCard{Symbol: sym, State: CardHidden},
			MemoryCard{Symbol: sym, State: CardHidden},
		)
	}

	swap := func(i, j int) { cards[i], cards[j] = cards[j], cards[i] }
	if rng != nil {
		rng.Shuffle(len(cards), swap)
	} else {
		rand.Shuffle(len(cards), swap)
	}

	m := &Memory{
		cards:         cards,
		timers:        RealTimers,
		mismatchDelay: DefaultMismatchDelay,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Flip reveals the card at index
func (m *Memory) Flip(index int) (FlipResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if index < 0 || index >= len(m.cards) {
		return "", fmt.Errorf("%w: card %d out of range", ErrInvalidMove, index)
	}
	if len(m.revealed) >= 2 {
		return "", fmt.Errorf("%w: waiting for cards to turn back", ErrInvalidMove)
	}
	if m.cards[index].State != CardHidden {
		return "", fmt.Errorf("%w: card %d is %s", ErrInvalidMove, index, m.cards[index].State)
	}

	m.cards[index].State = CardRevealed
	m.revealed = append(m.revealed, index)
	if len(m.revealed) < 2 {
		return FlipRevealed, nil
	}

	m.moves++
	a, b := m.revealed[0], m.revealed[1]
	if m.cards[a].Symbol != m.cards[b].Symbol {
		m.pending = m.timers.AfterFunc(m.mismatchDelay, m.hideMismatch)
		return FlipMismatch, nil
	}

	m.cards[a].State = CardMatched
	m.cards[b].State = CardMatched
	m.revealed = m.revealed[:0]
	m.matched += 2

	if m.matched == len(m.cards) {
		if m.onComplete != nil {
			m.onComplete(m.moves)
		}
		return FlipComplete, nil
	}
	return FlipMatch, nil
}

func (m *Memory) hideMismatch() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, i := range m.revealed {
		if m.cards[i].State == CardRevealed {
			m.cards[i].State = CardHidden
		}
	}
	m.revealed = m.revealed[:0]
	m.pending = nil
}

// Snapshot returns a copy of the board
func (m *Memory) Snapshot() MemorySnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return MemorySnapshot{
		Cards:    append([]MemoryCard(nil), m.cards...),
		Moves:    m.moves,
		Complete: len(m.cards) > 0 && m.matched == len(m.cards),
	}
}

// Stop cancels a pending turn-back
func (m *Memory) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pending != nil {
		m.pending.Stop()
		m.pending = nil
	}
}
