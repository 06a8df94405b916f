package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	masterdata "carsplay/internal/masterdata/domain"
)

const defaultRatesTable = "time_rates"

// RateRepository is a Postgres implementation for rate tiers.
type RateRepository struct {
	db    DBTX
	table string
}

// NewRateRepository constructs a repository.
func NewRateRepository(db DBTX, opts ...RateOption) *RateRepository {
	repo := &RateRepository{db: db, table: defaultRatesTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// RateOption configures the repository.
type RateOption func(*RateRepository)

// WithRateTable overrides the default table name.
func WithRateTable(table string) RateOption {
	return func(repo *RateRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// List returns rate tiers ordered by minutes.
func (r *RateRepository) List(ctx context.Context) ([]masterdata.RateTier, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("rate repo: nil db")
	}

	query := fmt.Sprintf(`
SELECT id, minutes, amount, created_at, updated_at
FROM %s
ORDER BY minutes ASC`, r.table)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tiers []masterdata.RateTier
	for rows.Next() {
		var tier masterdata.RateTier
		if err := rows.Scan(
			&tier.ID,
			&tier.Minutes,
			&tier.Amount,
			&tier.CreatedAt,
			&tier.UpdatedAt,
		); err != nil {
			return nil, err
		}
		tier.CreatedAt = tier.CreatedAt.UTC()
		tier.UpdatedAt = tier.UpdatedAt.UTC()
		tiers = append(tiers, tier)
	}
	return tiers, rows.Err()
}

// Save upserts a rate tier. The unique index on minutes backs the
// uniqueness invariant at the database level.
func (r *RateRepository) Save(ctx context.Context, tier *masterdata.RateTier) error {
	if r == nil || r.db == nil {
		return errors.New("rate repo: nil db")
	}
	if tier == nil {
		return errors.New("rate repo: nil tier")
	}
	if err := tier.Validate(); err != nil {
		return err
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	id,
	minutes,
	amount
) VALUES (
	$1, $2, $3
)
ON CONFLICT (id)
DO UPDATE SET
	minutes = EXCLUDED.minutes,
	amount = EXCLUDED.amount,
	updated_at = NOW()`, r.table)

	if _, err := r.db.ExecContext(ctx, query, tier.ID, tier.Minutes, tier.Amount); err != nil {
		if strings.Contains(err.Error(), "unique") {
			return masterdata.ErrDuplicateMinutes
		}
		return err
	}
	return nil
}

// Delete removes a rate tier.
func (r *RateRepository) Delete(ctx context.Context, id string) error {
	if r == nil || r.db == nil {
		return errors.New("rate repo: nil db")
	}
	if id == "" {
		return errors.New("rate repo: empty id")
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table)
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
