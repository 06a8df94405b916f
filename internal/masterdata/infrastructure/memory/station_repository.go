package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	masterdata "carsplay/internal/masterdata/domain"
)

// StationRepository is an in-memory station store used by tests and
// single-node deployments without a database.
type StationRepository struct {
	mu       sync.RWMutex
	stations map[string]masterdata.Station
}

// NewStationRepository constructs an empty repository.
func NewStationRepository() *StationRepository {
	return &StationRepository{stations: make(map[string]masterdata.Station)}
}

// List returns stations ordered by number.
func (r *StationRepository) List(ctx context.Context, activeOnly bool) ([]masterdata.Station, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]masterdata.Station, 0, len(r.stations))
	for _, st := range r.stations {
		if activeOnly && !st.Active {
			continue
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

// Get returns one station by id.
func (r *StationRepository) Get(ctx context.Context, id string) (*masterdata.Station, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	st, ok := r.stations[id]
	if !ok {
		return nil, masterdata.ErrStationNotFound
	}
	clone := st
	return &clone, nil
}

// Save upserts a station.
func (r *StationRepository) Save(ctx context.Context, station *masterdata.Station) error {
	if station == nil {
		return errors.New("station repo: nil station")
	}
	if err := station.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.stations[station.ID] = *station
	return nil
}

// Delete removes a station.
func (r *StationRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.stations[id]; !ok {
		return masterdata.ErrStationNotFound
	}
	delete(r.stations, id)
	return nil
}
