package rental

import "time"

// Status is the lifecycle state of a station timer.
type Status string

const (
	// StatusIdle means no session is in progress.
	StatusIdle Status = "idle"
	// StatusRunning means the countdown is advancing.
	StatusRunning Status = "running"
	// StatusPaused means a session exists but the countdown is stopped.
	StatusPaused Status = "paused"
	// StatusCompleted means the session reached its target duration and
	// awaits operator confirmation before its amount is settled.
	StatusCompleted Status = "completed"
)

// ActiveSession is a rental in progress: it has a start mark but no end,
// and its amount is not yet committed.
type ActiveSession struct {
	ID            string
	Start         time.Time
	Minutes       int
	PlannedAmount float64
}

// ClosedSession is a finished rental. Once Settled is true the record is
// immutable and its Amount counts toward the running total.
type ClosedSession struct {
	ID              string
	Start           time.Time
	End             time.Time
	Minutes         int
	DurationSeconds int
	Amount          float64
	Settled         bool
}
