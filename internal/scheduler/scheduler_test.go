package scheduler

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"calmcompanion/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestGroupRunsAndStops(t *testing.T) {
	g := NewGroup(context.Background())

	var ticks atomic.Int32
	err := g.Every("clock", 5*time.Millisecond, func(ctx context.Context, now time.Time) error {
		ticks.Add(1)
		return nil
	})
	if err != nil {
		t.Fatalf("Every() error = %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for ticks.Load() < 3 {
		if time.Now().After(deadline) {
			t.Fatal("task did not tick")
		}
		time.Sleep(time.Millisecond)
	}

	g.Stop()
	g.Stop()

	if err := g.Every("late", time.Millisecond, func(context.Context, time.Time) error { return nil }); !errors.Is(err, ErrStopped) {
		t.Errorf("Every() after Stop error = %v, want ErrStopped", err)
	}
}

func TestGroupSurvivesFailingTasks(t *testing.T) {
	g := NewGroup(context.Background())
	defer g.Stop()

	var healthy atomic.Int32
	_ = g.Every("fails", 2*time.Millisecond, func(context.Context, time.Time) error {
		return errors.New("boom")
	})
	_ = g.Every("panics", 2*time.Millisecond, func(context.Context, time.Time) error {
		panic("kaboom")
	})
	_ = g.Every("healthy", 2*time.Millisecond, func(context.Context, time.Time) error {
		healthy.Add(1)
		return nil
	})

	deadline := time.Now().Add(2 * time.Second)
	for healthy.Load() < 5 {
		if time.Now().After(deadline) {
			t.Fatal("healthy task stopped running")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestGroupRejectsDuplicatesAndBadIntervals(t *testing.T) {
	g := NewGroup(context.Background())
	defer g.Stop()

	noop := func(context.Context, time.Time) error { return nil }
	if err := g.Every("a", time.Second, noop); err != nil {
		t.Fatalf("Every() error = %v", err)
	}
	if err := g.Every("a", time.Second, noop); err == nil {
		t.Error("duplicate name should fail")
	}
	if err := g.Every("b", 0, noop); err == nil {
		t.Error("zero interval should fail")
	}
}

func TestGroupStopsWithParent(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	g := NewGroup(parent)
	_ = g.Every("a", time.Millisecond, func(context.Context, time.Time) error { return nil })

	cancel()
	g.Stop()
}

type staticAlarms models.AlarmList

func (s staticAlarms) GetAlarms(context.Context) models.AlarmList {
	return models.AlarmList(s)
}

func TestAlarmChecker(t *testing.T) {
	alarms := staticAlarms{
		{ID: "meds", Time: "08:00", Label: "Medicine", Enabled: true},
		{ID: "off", Time: "08:00", Label: "Disabled", Enabled: false},
		{ID: "lunch", Time: "12:30", Label: "Lunch", Enabled: true},
	}

	var fired []string
	checker := NewAlarmChecker(alarms, func(a models.Alarm) { fired = append(fired, a.ID) })
	ctx := context.Background()

	at := func(hh, mm, ss int) time.Time {
		return time.Date(2026, 3, 10, hh, mm, ss, 0, time.Local)
	}

	_ = checker.Check(ctx, at(7, 59, 50))
	_ = checker.Check(ctx, at(8, 0, 5))
	_ = checker.Check(ctx, at(8, 0, 35))
	_ = checker.Check(ctx, at(12, 30, 0))

	if len(fired) != 2 || fired[0] != "meds" || fired[1] != "lunch" {
		t.Errorf("fired = %v, want [meds lunch]", fired)
	}

	_ = checker.Check(ctx, at(8, 0, 0).AddDate(0, 0, 1))
	if len(fired) != 3 {
		t.Errorf("alarm should fire again the next day, fired = %v", fired)
	}
}

func TestBreathingPacer(t *testing.T) {
	p := DefaultBreathingPacer()

	tests := []struct {
		elapsed   time.Duration
		phase     BreathingPhase
		remaining time.Duration
		cycle     int
	}{
		{elapsed: 0, phase: PhaseInhale, remaining: 4 * time.Second},
		{elapsed: 3 * time.Second, phase: PhaseInhale, remaining: time.Second},
		{elapsed: 4 * time.Second, phase: PhaseHold, remaining: 4 * time.Second},
		{elapsed: 11 * time.Second, phase: PhaseExhale, remaining: time.Second},
		{elapsed: 12 * time.Second, phase: PhaseInhale, remaining: 4 * time.Second, cycle: 1},
		{elapsed: 30 * time.Second, phase: PhaseHold, remaining: 2 * time.Second, cycle: 2},
		{elapsed: -time.Second, phase: PhaseInhale, remaining: 4 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.elapsed.String(), func(t *testing.T) {
			got := p.PhaseAt(tt.elapsed)
			if got.Phase != tt.phase || got.Remaining != tt.remaining || got.Cycle != tt.cycle {
				t.Errorf("PhaseAt(%v) = %+v, want %s %v cycle %d", tt.elapsed, got, tt.phase, tt.remaining, tt.cycle)
			}
		})
	}

	if p.CycleLength() != 12*time.Second {
		t.Errorf("CycleLength() = %v, want 12s", p.CycleLength())
	}
}

func TestPresenceStaysInBounds(t *testing.T) {
	p := NewPresence(500, 10, 20, rand.New(rand.NewPCG(9, 9)))
	if p.Count() != 20 {
		t.Fatalf("start should clamp to 20, got %d", p.Count())
	}

	for i := 0; i < 1000; i++ {
		_ = p.Tick(context.Background(), time.Now())
		if c := p.Count(); c < 10 || c > 20 {
			t.Fatalf("count %d out of bounds", c)
		}
	}
}
