// Package games holds the state machines of the small in-app games.
// They are transport-agnostic; delays run through an injectable Timers so
// handlers and tests control time.
package games

import (
	"errors"
	"time"
)

// ErrInvalidMove is returned when an action is not allowed in the current state
var ErrInvalidMove = errors.New("invalid move")

// Timer is a pending delayed call
type Timer interface {
	Stop() bool
}

// Timers schedules delayed calls
type Timers interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realTimers struct{}

func (realTimers) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealTimers uses time.AfterFunc
var RealTimers Timers = realTimers{}
