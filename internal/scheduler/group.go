// Package scheduler runs the application's repeating timers (alarm checks,
// presence updates) and the pure timing helpers behind the calming tools.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrStopped is returned when registering a task on a stopped group
var ErrStopped = errors.New("scheduler stopped")

// Task runs once per tick. A returned error is logged and the task keeps running.
type Task func(ctx context.Context, now time.Time) error

// Group owns a set of named repeating tasks. Stop cancels and waits for all of them.
type Group struct {
	ctx    context.Context
	cancel context.CancelFunc
	eg     *errgroup.Group

	mu      sync.Mutex
	names   map[string]bool
	stopped bool
}

// NewGroup creates a group whose tasks also stop when parent is cancelled
func NewGroup(parent context.Context) *Group {
	ctx, cancel := context.WithCancel(parent)
	eg, ctx := errgroup.WithContext(ctx)
	return &Group{
		ctx:    ctx,
		cancel: cancel,
		eg:     eg,
		names:  make(map[string]bool),
	}
}

// Every runs task every interval until the group stops
func (g *Group) Every(name string, interval time.Duration, task Task) error {
	if interval <= 0 {
		return fmt.Errorf("task %s: interval must be positive", name)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.stopped {
		return ErrStopped
	}
	if g.names[name] {
		return fmt.Errorf("task %s already registered", name)
	}
	g.names[name] = true

	g.eg.Go(func() error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-g.ctx.Done():
				return nil
			case now := <-ticker.C:
				runTask(g.ctx, name, task, now)
			}
		}
	})
	return nil
}

func runTask(ctx context.Context, name string, task Task, now time.Time) {
	defer func() {
		if p := recover(); p != nil {
			log.Printf("Error: task %s panicked: %v", name, p)
		}
	}()

	if err := task(ctx, now); err != nil {
		log.Printf("Error running task %s: %v", name, err)
	}
}

// Stop cancels every task and waits for them to return. It is safe to call more than once.
func (g *Group) Stop() {
	g.mu.Lock()
	g.stopped = true
	g.mu.Unlock()

	g.cancel()
	g.eg.Wait()
}
