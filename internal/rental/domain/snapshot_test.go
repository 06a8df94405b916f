package rental

import (
	"testing"
	"time"
)

func TestSnapshotRoundTripRunning(t *testing.T) {
	state := startedTimer(t, 30, 50)
	if err := state.Pause(t0.Add(120 * time.Second)); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if err := state.Start("ignored", t0.Add(200*time.Second)); err != nil {
		t.Fatalf("resume: %v", err)
	}

	snap := state.Snapshot()
	if !snap.Running || snap.StartedAt == nil {
		t.Fatalf("snapshot = %+v", snap)
	}
	if snap.Accumulated != 120 || snap.Total != 1800 {
		t.Fatalf("snapshot counters = %d/%d", snap.Accumulated, snap.Total)
	}
	if snap.CurrentSession == nil || *snap.CurrentSession != 0 {
		t.Fatalf("currentSession = %v", snap.CurrentSession)
	}

	// Reload after 60 more seconds of wall clock.
	reloadAt := t0.Add(260 * time.Second)
	restored := RestoreTimerState("station-1", snap, reloadAt)
	if restored.Status() != StatusRunning {
		t.Fatalf("restored status = %s", restored.Status())
	}
	if got := restored.Elapsed(reloadAt); got != 180 {
		t.Fatalf("restored elapsed = %d, want 180", got)
	}
	active := restored.Active()
	if active == nil || active.ID != "session-1" || active.Minutes != 30 {
		t.Fatalf("restored active = %+v", active)
	}
}

func TestSnapshotRestoreCompletesOverdueSession(t *testing.T) {
	state := startedTimer(t, 30, 50)
	snap := state.Snapshot()

	// The process was gone past the whole target duration.
	reloadAt := t0.Add(2000 * time.Second)
	restored := RestoreTimerState("station-1", snap, reloadAt)
	session, ok := restored.CompleteIfDue(reloadAt)
	if !ok {
		t.Fatal("expected immediate completion on restore")
	}
	if session.DurationSeconds != 1800 || session.Settled {
		t.Fatalf("completed session = %+v", session)
	}
	if restored.Status() != StatusCompleted {
		t.Fatalf("status = %s", restored.Status())
	}
}

func TestRestoreClampsFutureStartMark(t *testing.T) {
	future := t0.Add(time.Hour).UnixMilli()
	idx := 0
	snap := Snapshot{
		Running:         true,
		StartedAt:       &future,
		Total:           1800,
		SelectedMinutes: 30,
		PlannedAmount:   50,
		Sessions: []SessionSnapshot{
			{ID: "session-1", Start: t0.UnixMilli(), Minutes: 30, Amount: 50},
		},
		CurrentSession: &idx,
	}

	restored := RestoreTimerState("station-1", snap, t0)
	for _, offset := range []time.Duration{0, time.Second, time.Minute, time.Hour} {
		if got := restored.Elapsed(t0.Add(offset)); got < 0 {
			t.Fatalf("negative elapsed %d at offset %s", got, offset)
		}
	}
	if got := restored.Elapsed(t0); got != 0 {
		t.Fatalf("elapsed at reload = %d, want 0", got)
	}
}

func TestRestoreCompletedAwaitingFinalize(t *testing.T) {
	state := startedTimer(t, 30, 50)
	if _, ok := state.CompleteIfDue(t0.Add(1800 * time.Second)); !ok {
		t.Fatal("expected completion")
	}

	snap := state.Snapshot()
	restored := RestoreTimerState("station-1", snap, t0.Add(2000*time.Second))
	if restored.Status() != StatusCompleted {
		t.Fatalf("status = %s, want completed", restored.Status())
	}
	if got := restored.SettledTotal(); got != 0 {
		t.Fatalf("settled total = %v, want 0", got)
	}
	if _, err := restored.Finalize(); err != nil {
		t.Fatalf("finalize after restore: %v", err)
	}
	if got := restored.SettledTotal(); got != 50 {
		t.Fatalf("settled total = %v, want 50", got)
	}
}

func TestRestoreEmptySnapshotIsIdle(t *testing.T) {
	restored := RestoreTimerState("station-1", Snapshot{}, t0)
	if restored.Status() != StatusIdle || restored.HasActivity() {
		t.Fatalf("restored = %s, want pristine idle", restored.Status())
	}
}
