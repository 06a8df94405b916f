package storage

import (
	"sync"

	rental "carsplay/internal/rental/domain"
)

// MemorySnapshotStore keeps timer snapshots in memory. Used by tests and
// by deployments that accept losing timers on restart.
type MemorySnapshotStore struct {
	mu   sync.RWMutex
	data map[string]rental.Snapshot
}

// NewMemorySnapshotStore constructs a store.
func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{}
}

// Load returns the last saved snapshots.
func (s *MemorySnapshotStore) Load() (map[string]rental.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSnapshots(s.data), nil
}

// Save replaces the stored snapshots.
func (s *MemorySnapshotStore) Save(snapshots map[string]rental.Snapshot) error {
	clone := cloneSnapshots(snapshots)
	s.mu.Lock()
	s.data = clone
	s.mu.Unlock()
	return nil
}

func cloneSnapshots(snapshots map[string]rental.Snapshot) map[string]rental.Snapshot {
	if snapshots == nil {
		return nil
	}
	out := make(map[string]rental.Snapshot, len(snapshots))
	for id, snap := range snapshots {
		out[id] = cloneSnapshot(snap)
	}
	return out
}

func cloneSnapshot(snap rental.Snapshot) rental.Snapshot {
	clone := snap
	if snap.StartedAt != nil {
		ms := *snap.StartedAt
		clone.StartedAt = &ms
	}
	if snap.CurrentSession != nil {
		idx := *snap.CurrentSession
		clone.CurrentSession = &idx
	}
	if len(snap.Sessions) > 0 {
		clone.Sessions = make([]rental.SessionSnapshot, len(snap.Sessions))
		for i, session := range snap.Sessions {
			copied := session
			if session.End != nil {
				end := *session.End
				copied.End = &end
			}
			clone.Sessions[i] = copied
		}
	}
	return clone
}
