package rental

import "time"

// TimerState is the per-station timer and session-accounting aggregate.
// The countdown for the active session is derived from a start mark plus
// seconds banked from earlier run segments, so elapsed time survives
// pause/resume cycles and process restarts.
type TimerState struct {
	stationID string
	status    Status

	running   bool
	startedAt time.Time // zero when paused or idle
	// accumulated holds seconds banked from completed run segments of the
	// current session.
	accumulated int
	total       int // target seconds for the current session, 0 when idle

	// Template for the next session. Survives idle periods; locked while a
	// session exists.
	selectedMinutes int
	plannedAmount   float64

	active *ActiveSession
	closed []ClosedSession
}

// NewTimerState constructs an idle timer for a station.
func NewTimerState(stationID string) *TimerState {
	return &TimerState{stationID: stationID, status: StatusIdle}
}

// StationID returns the owning station id.
func (t *TimerState) StationID() string { return t.stationID }

// Status returns the lifecycle state.
func (t *TimerState) Status() Status { return t.status }

// Running reports whether the countdown is advancing.
func (t *TimerState) Running() bool { return t.running }

// TotalSeconds returns the target duration of the current session.
func (t *TimerState) TotalSeconds() int { return t.total }

// SelectedMinutes returns the duration tier chosen for the next session.
func (t *TimerState) SelectedMinutes() int { return t.selectedMinutes }

// PlannedAmount returns the unsettled price preview for the selected tier.
func (t *TimerState) PlannedAmount() float64 { return t.plannedAmount }

// Active returns a copy of the in-progress session, or nil.
func (t *TimerState) Active() *ActiveSession {
	if t.active == nil {
		return nil
	}
	copy := *t.active
	return &copy
}

// Sessions returns a copy of the closed sessions in order.
func (t *TimerState) Sessions() []ClosedSession {
	if len(t.closed) == 0 {
		return nil
	}
	out := make([]ClosedSession, len(t.closed))
	copy(out, t.closed)
	return out
}

// HasActivity reports whether the station holds any session data, live or
// closed. Used to guard transfer overwrites.
func (t *TimerState) HasActivity() bool {
	return t.active != nil || t.status == StatusCompleted || len(t.closed) > 0
}

// SelectDuration updates the duration tier template for the next session.
// The template is locked while a session exists, live or awaiting settlement.
func (t *TimerState) SelectDuration(minutes int, amount float64) error {
	if minutes <= 0 {
		return ErrNoDuration
	}
	if t.active != nil || t.status == StatusCompleted {
		return ErrSessionActive
	}
	t.selectedMinutes = minutes
	t.plannedAmount = amount
	return nil
}

// Start begins or resumes the countdown. The first start of a session
// creates the session record; resuming after a pause reuses it. sessionID
// is only consumed when a new session is created.
func (t *TimerState) Start(sessionID string, now time.Time) error {
	if t.running {
		return ErrAlreadyRunning
	}
	if t.active == nil {
		if t.selectedMinutes <= 0 {
			return ErrNoDuration
		}
		t.active = &ActiveSession{
			ID:            sessionID,
			Start:         now,
			Minutes:       t.selectedMinutes,
			PlannedAmount: t.plannedAmount,
		}
		t.accumulated = 0
		t.total = t.selectedMinutes * 60
	}
	t.startedAt = now
	t.running = true
	t.status = StatusRunning
	return nil
}

// Pause stops the countdown and banks the elapsed segment.
func (t *TimerState) Pause(now time.Time) error {
	if !t.running {
		return ErrNotRunning
	}
	t.bank(now)
	t.running = false
	t.startedAt = time.Time{}
	t.status = StatusPaused
	return nil
}

// Elapsed returns the seconds elapsed for the current session. Pure query:
// callable at any time without side effects, never negative.
func (t *TimerState) Elapsed(now time.Time) int {
	elapsed := t.accumulated
	if t.running && !t.startedAt.IsZero() {
		if delta := int(now.Sub(t.startedAt) / time.Second); delta > 0 {
			elapsed += delta
		}
	}
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// Remaining returns seconds left until the target duration, never negative.
func (t *TimerState) Remaining(now time.Time) int {
	remaining := t.total - t.Elapsed(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Percent returns session progress in whole percent, capped at 100.
func (t *TimerState) Percent(now time.Time) int {
	if t.total <= 0 {
		return 0
	}
	pct := int(float64(t.Elapsed(now))/float64(t.total)*100 + 0.5)
	if pct > 100 {
		return 100
	}
	return pct
}

// CompleteIfDue closes the active session when the target duration has been
// reached. It returns the closed, still unsettled session when completion
// fired. A call against an idle or already completed station is a no-op, so
// stale ticks are harmless.
func (t *TimerState) CompleteIfDue(now time.Time) (*ClosedSession, bool) {
	if !t.running || t.active == nil || t.total <= 0 {
		return nil, false
	}
	if t.Elapsed(now) < t.total {
		return nil, false
	}
	t.accumulated = t.total
	t.running = false
	t.startedAt = time.Time{}

	session := ClosedSession{
		ID:              t.active.ID,
		Start:           t.active.Start,
		End:             now,
		Minutes:         t.active.Minutes,
		DurationSeconds: t.total,
		Amount:          t.sessionAmount(),
		Settled:         false,
	}
	t.closed = append(t.closed, session)
	t.active = nil
	t.status = StatusCompleted
	return &session, true
}

// StopEarly ends the active session immediately. The full planned amount is
// charged even though the elapsed time may be shorter, and the session is
// settled without further confirmation. The station resets to idle.
func (t *TimerState) StopEarly(now time.Time) (*ClosedSession, error) {
	if t.active == nil {
		return nil, ErrNoActiveSession
	}
	if t.running {
		t.bank(now)
		t.running = false
		t.startedAt = time.Time{}
	}
	session := ClosedSession{
		ID:              t.active.ID,
		Start:           t.active.Start,
		End:             now,
		Minutes:         t.active.Minutes,
		DurationSeconds: t.accumulated,
		Amount:          t.sessionAmount(),
		Settled:         true,
	}
	t.closed = append(t.closed, session)
	t.active = nil
	t.accumulated = 0
	t.total = 0
	t.status = StatusIdle
	return &session, nil
}

// Finalize settles the most recent unsettled closed session, committing its
// amount to the running total. When the station sits in the completed state
// the counters also reset to idle; when the operator already started another
// round only the settlement happens.
func (t *TimerState) Finalize() (*ClosedSession, error) {
	for i := len(t.closed) - 1; i >= 0; i-- {
		if t.closed[i].Settled {
			continue
		}
		t.closed[i].Settled = true
		session := t.closed[i]
		if t.status == StatusCompleted {
			t.accumulated = 0
			t.total = 0
			t.status = StatusIdle
		}
		return &session, nil
	}
	return nil, ErrNothingToSettle
}

// Reset clears leftover counters on an idle station. A station with a live
// or unconfirmed session refuses to reset so a rental cannot be discarded
// by accident.
func (t *TimerState) Reset() error {
	if t.active != nil || t.status == StatusCompleted {
		return ErrSessionActive
	}
	t.accumulated = 0
	t.total = 0
	t.status = StatusIdle
	return nil
}

// TransferTo moves the entire session history and the live timing fields to
// dest atomically, then resets the receiver to idle with no sessions. A
// destination that already holds activity requires confirm; on any error
// neither station mutates.
func (t *TimerState) TransferTo(dest *TimerState, confirm bool) error {
	if dest == nil || dest == t || dest.stationID == t.stationID {
		return ErrSameStation
	}
	if dest.HasActivity() && !confirm {
		return ErrDestinationBusy
	}

	dest.closed = append(dest.closed, t.closed...)
	dest.active = t.active
	dest.running = t.running
	dest.startedAt = t.startedAt
	dest.accumulated = t.accumulated
	dest.total = t.total
	dest.selectedMinutes = t.selectedMinutes
	dest.plannedAmount = t.plannedAmount
	dest.status = t.status

	t.closed = nil
	t.active = nil
	t.running = false
	t.startedAt = time.Time{}
	t.accumulated = 0
	t.total = 0
	t.selectedMinutes = 0
	t.plannedAmount = 0
	t.status = StatusIdle
	return nil
}

// SettledTotal sums the amounts of settled sessions on this station.
func (t *TimerState) SettledTotal() float64 {
	var total float64
	for _, session := range t.closed {
		if session.Settled {
			total += session.Amount
		}
	}
	return total
}

func (t *TimerState) bank(now time.Time) {
	if t.startedAt.IsZero() {
		return
	}
	delta := int(now.Sub(t.startedAt) / time.Second)
	if delta < 0 {
		delta = 0
	}
	t.accumulated += delta
	if t.total > 0 && t.accumulated > t.total {
		t.accumulated = t.total
	}
}

func (t *TimerState) sessionAmount() float64 {
	if t.active != nil && t.active.PlannedAmount > 0 {
		return t.active.PlannedAmount
	}
	return t.plannedAmount
}
