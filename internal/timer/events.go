package timer

import (
	"time"

	"zenstream/internal/model"
)

// EventType defines the kind of update published to subscribers.
type EventType string

const (
	EventStarted   EventType = "started"
	EventTick      EventType = "tick"
	EventAccrued   EventType = "accrued"
	EventBoundary  EventType = "boundary"
	EventStopped   EventType = "stopped"
	EventCompleted EventType = "completed"
)

// RunState is the session together with the config and queue of its run,
// read at one instant. Config and Upcoming are empty while idle.
type RunState struct {
	Session  model.TimerSession       `json:"session"`
	Config   model.SessionConfig      `json:"config"`
	Upcoming []model.UpcomingInterval `json:"upcoming"`
}

// Event is a machine update for observers. Minutes is set on EventAccrued.
type Event struct {
	Type EventType `json:"type"`
	RunState
	Minutes int       `json:"minutes,omitempty"`
	At      time.Time `json:"at"`
}
