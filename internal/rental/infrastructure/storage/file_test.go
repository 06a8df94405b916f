package storage

import (
	"os"
	"path/filepath"
	"testing"

	rental "carsplay/internal/rental/domain"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timers.json")
	store, err := NewFileSnapshotStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	startedAt := int64(1750000000000)
	idx := 0
	in := map[string]rental.Snapshot{
		"station-1": {
			Running:         true,
			StartedAt:       &startedAt,
			Accumulated:     120,
			Total:           1800,
			PlannedAmount:   50,
			SelectedMinutes: 30,
			Sessions: []rental.SessionSnapshot{
				{ID: "session-1", Start: startedAt, Minutes: 30, Accumulated: 120, Amount: 50},
			},
			CurrentSession: &idx,
		},
	}
	if err := store.Save(in); err != nil {
		t.Fatalf("save: %v", err)
	}

	out, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	snap, ok := out["station-1"]
	if !ok {
		t.Fatal("station-1 missing after reload")
	}
	if !snap.Running || snap.StartedAt == nil || *snap.StartedAt != startedAt {
		t.Fatalf("snapshot = %+v", snap)
	}
	if len(snap.Sessions) != 1 || snap.Sessions[0].ID != "session-1" {
		t.Fatalf("sessions = %+v", snap.Sessions)
	}
	if snap.CurrentSession == nil || *snap.CurrentSession != 0 {
		t.Fatalf("currentSession = %v", snap.CurrentSession)
	}
}

func TestFileStoreMissingFileIsEmpty(t *testing.T) {
	store, err := NewFileSnapshotStore(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	out, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty snapshots, got %d", len(out))
	}
}

func TestFileStoreCorruptFileReportsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timers.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	store, err := NewFileSnapshotStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if _, err := store.Load(); err == nil {
		t.Fatal("expected error for corrupt snapshot")
	}
}

func TestMemoryStoreIsolation(t *testing.T) {
	store := NewMemorySnapshotStore()
	in := map[string]rental.Snapshot{"station-1": {Total: 900}}
	if err := store.Save(in); err != nil {
		t.Fatalf("save: %v", err)
	}
	in["station-1"] = rental.Snapshot{Total: 1}

	out, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out["station-1"].Total != 900 {
		t.Fatalf("store shares memory with caller: %+v", out["station-1"])
	}
}
