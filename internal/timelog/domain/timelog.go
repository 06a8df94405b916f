package timelog

import (
	"context"
	"errors"
	"time"
)

// TimeLog is one settled rental session as recorded for reporting.
// ClientID is supplied by the producer and makes inserts idempotent:
// submitting the same settlement twice records it once.
type TimeLog struct {
	ClientID        string
	StationID       string
	StationNumber   int
	StationName     string
	Username        string
	Start           time.Time
	End             time.Time
	DurationSeconds int
	Amount          float64
	Comment         string
	CreatedAt       time.Time
}

// Validate checks log invariants.
func (l TimeLog) Validate() error {
	if l.ClientID == "" {
		return errors.New("time log: empty client id")
	}
	if l.StationID == "" {
		return errors.New("time log: empty station id")
	}
	if l.Start.IsZero() || l.End.IsZero() {
		return errors.New("time log: zero start or end")
	}
	if l.End.Before(l.Start) {
		return errors.New("time log: end before start")
	}
	if l.DurationSeconds < 0 {
		return errors.New("time log: negative duration")
	}
	if l.Amount < 0 {
		return errors.New("time log: negative amount")
	}
	return nil
}

// Filter narrows a log listing. Zero times mean unbounded.
type Filter struct {
	StationID string
	Username  string
	From      time.Time
	To        time.Time
	Limit     int
}

// Repository stores settled session logs.
type Repository interface {
	// Insert records a log. A log with a client id already present is
	// silently skipped.
	Insert(ctx context.Context, log *TimeLog) error
	List(ctx context.Context, filter Filter) ([]TimeLog, error)
}
