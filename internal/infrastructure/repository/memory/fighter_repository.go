package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cagepulse/cagepulse/internal/domain/fighter"
)

type FighterRepository struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]fighter.Profile
}

func NewFighterRepository() *FighterRepository {
	return &FighterRepository{items: make(map[int64]fighter.Profile)}
}

func (r *FighterRepository) GetByExternalID(_ context.Context, source, externalID string) (*fighter.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.Source == source && item.ExternalID == externalID {
			out := item
			return &out, nil
		}
	}
	return nil, nil
}

func (r *FighterRepository) ListBySource(_ context.Context, source string) ([]fighter.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]fighter.Profile, 0, len(r.items))
	for _, item := range r.items {
		if item.Source == source {
			out = append(out, item)
		}
	}
	sortProfiles(out)
	return out, nil
}

func (r *FighterRepository) ListByDivision(_ context.Context, source, weightClass string) ([]fighter.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]fighter.Profile, 0, len(r.items))
	for _, item := range r.items {
		if item.Source == source && item.WeightClass == weightClass {
			out = append(out, item)
		}
	}
	sortProfiles(out)
	return out, nil
}

func (r *FighterRepository) Upsert(_ context.Context, item fighter.Profile) (fighter.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item.UpdatedAt = time.Now()

	for id, existing := range r.items {
		if existing.Source == item.Source && existing.ExternalID == item.ExternalID {
			item.ID = id
			r.items[id] = item
			return item, nil
		}
	}

	r.nextID++
	item.ID = r.nextID
	r.items[item.ID] = item
	return item, nil
}

func (r *FighterRepository) SetRank(_ context.Context, id int64, rank *int, interim bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return nil
	}
	if rank != nil {
		value := *rank
		item.Rank = &value
	} else {
		item.Rank = nil
	}
	item.Interim = interim
	item.UpdatedAt = time.Now()
	r.items[id] = item
	return nil
}

func sortProfiles(items []fighter.Profile) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].LastName != items[j].LastName {
			return items[i].LastName < items[j].LastName
		}
		if items[i].FirstName != items[j].FirstName {
			return items[i].FirstName < items[j].FirstName
		}
		return items[i].ID < items[j].ID
	})
}
