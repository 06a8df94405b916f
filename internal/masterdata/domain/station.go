package masterdata

import (
	"context"
	"errors"
	"time"
)

// ErrStationNotFound is returned when a station id is unknown.
var ErrStationNotFound = errors.New("station: not found")

// Station represents a rentable unit (kart) on the floor.
type Station struct {
	ID        string
	Name      string
	Number    int
	Image     string
	Price     float64
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks station invariants.
func (s Station) Validate() error {
	if s.ID == "" {
		return errors.New("station: empty id")
	}
	if s.Name == "" {
		return errors.New("station: empty name")
	}
	if s.Number < 0 {
		return errors.New("station: negative number")
	}
	if s.Price < 0 {
		return errors.New("station: negative price")
	}
	return nil
}

// StationRepository manages station persistence. Numbers are unique within
// the active set.
type StationRepository interface {
	List(ctx context.Context, activeOnly bool) ([]Station, error)
	Get(ctx context.Context, id string) (*Station, error)
	Save(ctx context.Context, station *Station) error
	Delete(ctx context.Context, id string) error
}
