package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	rental "carsplay/internal/rental/domain"
)

// FileSnapshotStore persists timer snapshots as one JSON document on disk.
// Writes go through a temp file and rename so a crash mid-write leaves the
// previous snapshot intact.
type FileSnapshotStore struct {
	path string
}

// NewFileSnapshotStore constructs a store.
func NewFileSnapshotStore(path string) (*FileSnapshotStore, error) {
	if path == "" {
		return nil, errors.New("snapshot store: empty path")
	}
	return &FileSnapshotStore{path: path}, nil
}

// Load reads the snapshot document. A missing or corrupt file yields an
// empty snapshot set; corruption is reported so the caller can log it.
func (s *FileSnapshotStore) Load() (map[string]rental.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var snapshots map[string]rental.Snapshot
	if err := json.Unmarshal(data, &snapshots); err != nil {
		return nil, err
	}
	return snapshots, nil
}

// Save writes the snapshot document.
func (s *FileSnapshotStore) Save(snapshots map[string]rental.Snapshot) error {
	if snapshots == nil {
		snapshots = map[string]rental.Snapshot{}
	}
	data, err := json.Marshal(snapshots)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
