package model

import "time"

type Mode string

const (
	ModeIdle  Mode = "IDLE"
	ModeFocus Mode = "FOCUS"
	ModeBreak Mode = "BREAK"
)

const (
	IntervalCompleted = "completed"
	IntervalCancelled = "cancelled"
)

// TimerSession is the transient state of the running clock. It is never persisted.
type TimerSession struct {
	Mode             Mode `json:"mode"`
	RemainingSeconds int  `json:"remainingSeconds"`
	SessionIndex     int  `json:"sessionIndex"`
}

func IdleSession() TimerSession {
	return TimerSession{Mode: ModeIdle}
}

func (s TimerSession) Active() bool {
	return s.Mode != ModeIdle
}

// UpcomingInterval is one entry of the queue still ahead in the current run.
type UpcomingInterval struct {
	Mode            Mode `json:"mode"`
	DurationMinutes int  `json:"durationMinutes"`
	SessionIndex    int  `json:"sessionIndex"`
}

// Interval is a closed focus or break interval kept in the history log.
type Interval struct {
	ID                     string    `json:"id"`
	Mode                   Mode      `json:"mode"`
	SessionIndex           int       `json:"sessionIndex"`
	PlannedDurationSeconds int       `json:"plannedDurationSeconds"`
	ActualDurationSeconds  int       `json:"actualDurationSeconds"`
	Status                 string    `json:"status"`
	StartedAt              time.Time `json:"startedAt"`
	EndedAt                time.Time `json:"endedAt"`
}
