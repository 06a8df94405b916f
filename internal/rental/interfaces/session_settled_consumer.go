package interfaces

import (
	"context"
	"errors"
	"log"

	masterdata "carsplay/internal/masterdata/domain"
	"carsplay/internal/observability/metrics"
	"carsplay/internal/rental/application/events"
	timelog "carsplay/internal/timelog/domain"
)

// StationLookup resolves station display data for log records.
type StationLookup interface {
	GetStation(ctx context.Context, id string) (*masterdata.Station, error)
}

// SessionSettledConsumer turns settled sessions into time log records.
// The session id doubles as the log client id, so redelivered events
// insert at most once.
type SessionSettledConsumer struct {
	repo     timelog.Repository
	stations StationLookup
	logger   *log.Logger
}

// NewSessionSettledConsumer constructs a consumer.
func NewSessionSettledConsumer(repo timelog.Repository, stations StationLookup, logger *log.Logger) (*SessionSettledConsumer, error) {
	if repo == nil {
		return nil, errors.New("settled consumer: nil repository")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &SessionSettledConsumer{repo: repo, stations: stations, logger: logger}, nil
}

// Handle records one settled session.
func (c *SessionSettledConsumer) Handle(ctx context.Context, event events.SessionSettled) error {
	record := timelog.TimeLog{
		ClientID:        event.SessionID,
		StationID:       event.StationID,
		Username:        event.Operator,
		Start:           event.Start,
		End:             event.End,
		DurationSeconds: event.DurationSeconds,
		Amount:          event.Amount,
	}
	if c.stations != nil {
		station, err := c.stations.GetStation(ctx, event.StationID)
		if err == nil && station != nil {
			record.StationNumber = station.Number
			record.StationName = station.Name
		}
	}
	if err := c.repo.Insert(ctx, &record); err != nil {
		metrics.TimeLogSubmit(false)
		c.logger.Printf("timelog: insert failed for session %s: %v", event.SessionID, err)
		return err
	}
	metrics.TimeLogSubmit(true)
	return nil
}
