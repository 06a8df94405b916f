package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	masterdata "carsplay/internal/masterdata/domain"
)

// RateRepository is an in-memory rate tier store.
type RateRepository struct {
	mu    sync.RWMutex
	tiers map[string]masterdata.RateTier
}

// NewRateRepository constructs an empty repository.
func NewRateRepository() *RateRepository {
	return &RateRepository{tiers: make(map[string]masterdata.RateTier)}
}

// List returns tiers ordered by minutes.
func (r *RateRepository) List(ctx context.Context) ([]masterdata.RateTier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]masterdata.RateTier, 0, len(r.tiers))
	for _, tier := range r.tiers {
		out = append(out, tier)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Minutes < out[j].Minutes })
	return out, nil
}

// Save upserts a tier, rejecting a minutes value already held by
// another tier.
func (r *RateRepository) Save(ctx context.Context, tier *masterdata.RateTier) error {
	if tier == nil {
		return errors.New("rate repo: nil tier")
	}
	if err := tier.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for id, existing := range r.tiers {
		if id != tier.ID && existing.Minutes == tier.Minutes {
			return masterdata.ErrDuplicateMinutes
		}
	}
	r.tiers[tier.ID] = *tier
	return nil
}

// Delete removes a tier.
func (r *RateRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tiers[id]; !ok {
		return errors.New("rate repo: not found")
	}
	delete(r.tiers, id)
	return nil
}
