package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	timelog "carsplay/internal/timelog/domain"
)

// Repository is an in-memory time log store.
type Repository struct {
	mu   sync.RWMutex
	logs map[string]timelog.TimeLog
}

// NewRepository constructs an empty repository.
func NewRepository() *Repository {
	return &Repository{logs: make(map[string]timelog.TimeLog)}
}

// Insert records a log, skipping client ids already present.
func (r *Repository) Insert(ctx context.Context, log *timelog.TimeLog) error {
	if log == nil {
		return errors.New("timelog repo: nil log")
	}
	if err := log.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.logs[log.ClientID]; ok {
		return nil
	}
	stored := *log
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	r.logs[log.ClientID] = stored
	return nil
}

// List returns logs matching the filter, newest first.
func (r *Repository) List(ctx context.Context, filter timelog.Filter) ([]timelog.TimeLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []timelog.TimeLog
	for _, log := range r.logs {
		if filter.StationID != "" && log.StationID != filter.StationID {
			continue
		}
		if filter.Username != "" && log.Username != filter.Username {
			continue
		}
		if !filter.From.IsZero() && log.Start.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && !log.Start.Before(filter.To) {
			continue
		}
		out = append(out, log)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.After(out[j].Start) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}
