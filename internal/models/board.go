package models

import (
	"errors"
	"fmt"
	"time"
)

// Card is a communication board tile
type Card struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Emoji    string `json:"emoji"`
	Category string `json:"category"`
	Color    string `json:"color,omitempty"`
}

func (c Card) Validate() error {
	if c.ID == "" {
		return errors.New("card id is required")
	}
	if c.Label == "" {
		return errors.New("card label is required")
	}
	return nil
}

type CardList []Card

func (l CardList) Validate() error {
	return validateEach(l)
}

// RoutineTask is one step in a visual routine
type RoutineTask struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Emoji     string `json:"emoji"`
	Time      string `json:"time,omitempty"` // HH:MM
	Completed bool   `json:"completed"`
}

func (r RoutineTask) Validate() error {
	if r.ID == "" {
		return errors.New("task id is required")
	}
	if r.Title == "" {
		return errors.New("task title is required")
	}
	if r.Time != "" {
		if _, err := time.Parse(ClockLayout, r.Time); err != nil {
			return fmt.Errorf("task time %q: %w", r.Time, err)
		}
	}
	return nil
}

type RoutineList []RoutineTask

func (l RoutineList) Validate() error {
	return validateEach(l)
}

// ClockLayout is the HH:MM format used by routines and alarms
const ClockLayout = "15:04"

// Alarm is a daily reminder that fires at Time
type Alarm struct {
	ID      string `json:"id"`
	Time    string `json:"time"` // HH:MM
	Label   string `json:"label"`
	Enabled bool   `json:"enabled"`
}

func (a Alarm) Validate() error {
	if a.ID == "" {
		return errors.New("alarm id is required")
	}
	if _, err := time.Parse(ClockLayout, a.Time); err != nil {
		return fmt.Errorf("alarm time %q: %w", a.Time, err)
	}
	return nil
}

type AlarmList []Alarm

func (l AlarmList) Validate() error {
	return validateEach(l)
}
