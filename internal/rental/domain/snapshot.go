package rental

import "time"

// SessionSnapshot is the storage-safe shape of one session. End is nil for
// the in-progress session.
type SessionSnapshot struct {
	ID          string  `json:"id,omitempty"`
	Start       int64   `json:"start"`
	End         *int64  `json:"end"`
	Minutes     int     `json:"minutes"`
	Accumulated int     `json:"accumulated"`
	Amount      float64 `json:"amount"`
	Settled     bool    `json:"settled"`
}

// Snapshot is the persisted shape of a station's timer state. Timestamps are
// epoch milliseconds so any JSON-capable store can hold it.
type Snapshot struct {
	Running         bool              `json:"running"`
	StartedAt       *int64            `json:"startedAt"`
	Accumulated     int               `json:"accumulated"`
	Total           int               `json:"total"`
	PlannedAmount   float64           `json:"plannedAmount"`
	SelectedMinutes int               `json:"selectedMinutes"`
	Sessions        []SessionSnapshot `json:"sessions"`
	CurrentSession  *int              `json:"currentSession"`
}

// Snapshot serializes the timer state for persistence.
func (t *TimerState) Snapshot() Snapshot {
	snap := Snapshot{
		Running:         t.running,
		Accumulated:     t.accumulated,
		Total:           t.total,
		PlannedAmount:   t.plannedAmount,
		SelectedMinutes: t.selectedMinutes,
	}
	if t.running && !t.startedAt.IsZero() {
		ms := t.startedAt.UnixMilli()
		snap.StartedAt = &ms
	}
	for _, session := range t.closed {
		end := session.End.UnixMilli()
		snap.Sessions = append(snap.Sessions, SessionSnapshot{
			ID:          session.ID,
			Start:       session.Start.UnixMilli(),
			End:         &end,
			Minutes:     session.Minutes,
			Accumulated: session.DurationSeconds,
			Amount:      session.Amount,
			Settled:     session.Settled,
		})
	}
	if t.active != nil {
		idx := len(snap.Sessions)
		snap.Sessions = append(snap.Sessions, SessionSnapshot{
			ID:          t.active.ID,
			Start:       t.active.Start.UnixMilli(),
			Minutes:     t.active.Minutes,
			Accumulated: t.accumulated,
			Amount:      t.active.PlannedAmount,
		})
		snap.CurrentSession = &idx
	} else if t.status == StatusCompleted && len(snap.Sessions) > 0 {
		idx := len(snap.Sessions) - 1
		snap.CurrentSession = &idx
	}
	return snap
}

// RestoreTimerState rebuilds a timer from a persisted snapshot. Recovery is
// best effort: inconsistent fields degrade toward idle rather than failing,
// and a start mark in the future is clamped to now so elapsed time can
// never go negative after a clock jump.
func RestoreTimerState(stationID string, snap Snapshot, now time.Time) *TimerState {
	t := NewTimerState(stationID)
	t.selectedMinutes = snap.SelectedMinutes
	t.plannedAmount = snap.PlannedAmount
	if snap.Accumulated > 0 {
		t.accumulated = snap.Accumulated
	}
	if snap.Total > 0 {
		t.total = snap.Total
	}

	currentIdx := -1
	if snap.CurrentSession != nil && *snap.CurrentSession >= 0 && *snap.CurrentSession < len(snap.Sessions) {
		currentIdx = *snap.CurrentSession
	}

	for i, session := range snap.Sessions {
		if session.End == nil {
			if i == currentIdx && t.active == nil {
				t.active = &ActiveSession{
					ID:            session.ID,
					Start:         time.UnixMilli(session.Start).UTC(),
					Minutes:       session.Minutes,
					PlannedAmount: session.Amount,
				}
			}
			continue
		}
		t.closed = append(t.closed, ClosedSession{
			ID:              session.ID,
			Start:           time.UnixMilli(session.Start).UTC(),
			End:             time.UnixMilli(*session.End).UTC(),
			Minutes:         session.Minutes,
			DurationSeconds: session.Accumulated,
			Amount:          session.Amount,
			Settled:         session.Settled,
		})
	}

	switch {
	case t.active != nil && snap.Running && snap.StartedAt != nil:
		startedAt := time.UnixMilli(*snap.StartedAt).UTC()
		if startedAt.After(now) {
			startedAt = now
		}
		t.startedAt = startedAt
		t.running = true
		t.status = StatusRunning
	case t.active != nil:
		t.status = StatusPaused
	case currentIdx >= 0 && len(t.closed) > 0 && !t.closed[len(t.closed)-1].Settled:
		t.status = StatusCompleted
	default:
		t.status = StatusIdle
		t.accumulated = 0
		t.total = 0
	}
	return t
}
