package application

import (
	"context"
	"errors"

	masterdata "carsplay/internal/masterdata/domain"
)

// StationService provides station and rate tier commands.
type StationService struct {
	stations masterdata.StationRepository
	rates    masterdata.RateRepository
}

// NewStationService constructs a station service.
func NewStationService(stations masterdata.StationRepository, rates masterdata.RateRepository) (*StationService, error) {
	if stations == nil {
		return nil, errors.New("station service: nil station repository")
	}
	if rates == nil {
		return nil, errors.New("station service: nil rate repository")
	}
	return &StationService{stations: stations, rates: rates}, nil
}

// ListStations returns stations, optionally only active ones.
func (s *StationService) ListStations(ctx context.Context, activeOnly bool) ([]masterdata.Station, error) {
	return s.stations.List(ctx, activeOnly)
}

// UpsertStation validates and saves a station.
func (s *StationService) UpsertStation(ctx context.Context, station *masterdata.Station) error {
	if station == nil {
		return errors.New("station service: nil station")
	}
	if err := station.Validate(); err != nil {
		return err
	}
	return s.stations.Save(ctx, station)
}

// DeleteStation removes a station. Timer state for a removed station is
// orphaned; storage pruning is deliberately deferred.
func (s *StationService) DeleteStation(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("station service: empty id")
	}
	return s.stations.Delete(ctx, id)
}

// GetStation returns one station by id.
func (s *StationService) GetStation(ctx context.Context, id string) (*masterdata.Station, error) {
	if id == "" {
		return nil, errors.New("station service: empty id")
	}
	return s.stations.Get(ctx, id)
}

// Exists reports whether a station id is known. Satisfies the rental
// engine's station directory.
func (s *StationService) Exists(ctx context.Context, stationID string) (bool, error) {
	if stationID == "" {
		return false, nil
	}
	station, err := s.stations.Get(ctx, stationID)
	if errors.Is(err, masterdata.ErrStationNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return station != nil, nil
}

// Tiers returns the selectable duration tiers. Satisfies the rental
// engine's rate provider.
func (s *StationService) Tiers(ctx context.Context) ([]masterdata.RateTier, error) {
	return s.rates.List(ctx)
}

// UpsertRate validates and saves a rate tier.
func (s *StationService) UpsertRate(ctx context.Context, tier *masterdata.RateTier) error {
	if tier == nil {
		return errors.New("station service: nil rate tier")
	}
	if err := tier.Validate(); err != nil {
		return err
	}
	existing, err := s.rates.List(ctx)
	if err != nil {
		return err
	}
	for _, other := range existing {
		if other.Minutes == tier.Minutes && other.ID != tier.ID {
			return masterdata.ErrDuplicateMinutes
		}
	}
	return s.rates.Save(ctx, tier)
}

// DeleteRate removes a rate tier.
func (s *StationService) DeleteRate(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("station service: empty id")
	}
	return s.rates.Delete(ctx, id)
}
