package masterdata

import (
	"context"
	"errors"
	"time"
)

// RateTier is a selectable (duration, price) pair. Tiers are unique by
// minutes.
type RateTier struct {
	ID        string
	Minutes   int
	Amount    float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks rate tier invariants.
func (r RateTier) Validate() error {
	if r.ID == "" {
		return errors.New("rate tier: empty id")
	}
	if r.Minutes <= 0 {
		return errors.New("rate tier: minutes must be positive")
	}
	if r.Amount < 0 {
		return errors.New("rate tier: negative amount")
	}
	return nil
}

// ErrDuplicateMinutes is returned when saving a tier whose minutes collide
// with an existing tier.
var ErrDuplicateMinutes = errors.New("rate tier: duplicate minutes")

// RateRepository manages rate tier persistence.
type RateRepository interface {
	List(ctx context.Context) ([]RateTier, error)
	Save(ctx context.Context, tier *RateTier) error
	Delete(ctx context.Context, id string) error
}
