package events

import "time"

// SessionCompleted fires when a session reaches its target duration and
// starts waiting for operator confirmation. This is the alarm trigger.
type SessionCompleted struct {
	StationID string
	SessionID string
	Minutes   int
	Amount    float64
	At        time.Time
}

// SessionSettled fires when a session's amount is committed to the running
// total, either by stop-early or by finalize.
type SessionSettled struct {
	StationID       string
	SessionID       string
	Operator        string
	Start           time.Time
	End             time.Time
	Minutes         int
	DurationSeconds int
	Amount          float64
}
