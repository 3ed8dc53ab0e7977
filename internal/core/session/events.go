package session

import "time"

// Status represents the current session state.
type Status string

const (
	StatusRunning   Status = "running"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
)

// EventType defines the type of session event.
type EventType string

const (
	EventStateChange EventType = "state_change"
	EventProgress    EventType = "progress"
)

// Event represents a session update for observers. Confidence carries the
// most recent presence score so state changes can be traced back to the
// sample that caused them.
type Event struct {
	Type       EventType
	Status     Status
	Remaining  time.Duration
	Progress   float64
	Confidence float64
	At         time.Time
}
