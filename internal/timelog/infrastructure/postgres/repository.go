package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	timelog "carsplay/internal/timelog/domain"
)

const defaultTimeLogsTable = "time_logs"

// DBTX is the subset of database/sql used by the repository.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repository is a Postgres implementation of the time log store.
type Repository struct {
	db    DBTX
	table string
}

// NewRepository constructs a repository.
func NewRepository(db DBTX, opts ...Option) *Repository {
	repo := &Repository{db: db, table: defaultTimeLogsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// Option configures the repository.
type Option func(*Repository)

// WithTable overrides the default table name.
func WithTable(table string) Option {
	return func(repo *Repository) {
		if table != "" {
			repo.table = table
		}
	}
}

// Insert records a settled session. The unique index on client_id plus
// ON CONFLICT DO NOTHING makes retried submissions idempotent.
func (r *Repository) Insert(ctx context.Context, log *timelog.TimeLog) error {
	if r == nil || r.db == nil {
		return errors.New("timelog repo: nil db")
	}
	if log == nil {
		return errors.New("timelog repo: nil log")
	}
	if err := log.Validate(); err != nil {
		return err
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	client_id,
	station_id,
	station_number,
	station_name,
	username,
	start_at,
	end_at,
	duration_seconds,
	amount,
	comment
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
)
ON CONFLICT (client_id) DO NOTHING`, r.table)

	_, err := r.db.ExecContext(ctx, query,
		log.ClientID,
		log.StationID,
		log.StationNumber,
		log.StationName,
		log.Username,
		log.Start.UTC(),
		log.End.UTC(),
		log.DurationSeconds,
		log.Amount,
		log.Comment,
	)
	return err
}

// List returns logs matching the filter, newest first.
func (r *Repository) List(ctx context.Context, filter timelog.Filter) ([]timelog.TimeLog, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("timelog repo: nil db")
	}

	var (
		conds []string
		args  []any
	)
	next := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.StationID != "" {
		conds = append(conds, "station_id = "+next(filter.StationID))
	}
	if filter.Username != "" {
		conds = append(conds, "username = "+next(filter.Username))
	}
	if !filter.From.IsZero() {
		conds = append(conds, "start_at >= "+next(filter.From.UTC()))
	}
	if !filter.To.IsZero() {
		conds = append(conds, "start_at < "+next(filter.To.UTC()))
	}

	query := fmt.Sprintf(`
SELECT client_id, station_id, station_number, station_name, username,
	start_at, end_at, duration_seconds, amount, comment, created_at
FROM %s`, r.table)
	if len(conds) > 0 {
		query += "\nWHERE " + strings.Join(conds, " AND ")
	}
	query += "\nORDER BY start_at DESC"
	if filter.Limit > 0 {
		query += "\nLIMIT " + next(filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []timelog.TimeLog
	for rows.Next() {
		var log timelog.TimeLog
		if err := rows.Scan(
			&log.ClientID,
			&log.StationID,
			&log.StationNumber,
			&log.StationName,
			&log.Username,
			&log.Start,
			&log.End,
			&log.DurationSeconds,
			&log.Amount,
			&log.Comment,
			&log.CreatedAt,
		); err != nil {
			return nil, err
		}
		log.Start = log.Start.UTC()
		log.End = log.End.UTC()
		log.CreatedAt = log.CreatedAt.UTC()
		logs = append(logs, log)
	}
	return logs, rows.Err()
}
