package scheduler

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

// Presence is the simulated "people online" counter shown on the home screen.
// It drifts by a few users per tick and stays within [min, max].
type Presence struct {
	mu       sync.Mutex
	count    int
	min, max int
	rng      *rand.Rand
}

func NewPresence(start, lo, hi int, rng *rand.Rand) *Presence {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	p := &Presence{min: lo, max: hi, rng: rng}
	p.count = p.clamp(start)
	return p
}

// Count returns the current value
func (p *Presence) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}

// Tick is a Task that moves the counter by -2..+2
func (p *Presence) Tick(ctx context.Context, now time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.count = p.clamp(p.count + p.rng.IntN(5) - 2)
	return nil
}

func (p *Presence) clamp(n int) int {
	return max(p.min, min(p.max, n))
}
