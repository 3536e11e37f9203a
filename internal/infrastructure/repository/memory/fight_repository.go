package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cagepulse/cagepulse/internal/domain/fight"
)

type FightRepository struct {
	mu      sync.RWMutex
	nextID  int64
	items   map[int64]fight.Fight
	results map[int64]fight.Result
}

func NewFightRepository() *FightRepository {
	return &FightRepository{
		items:   make(map[int64]fight.Fight),
		results: make(map[int64]fight.Result),
	}
}

func (r *FightRepository) ListByEvent(_ context.Context, eventID int64) ([]fight.Fight, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]fight.Fight, 0, len(r.items))
	for _, item := range r.items {
		if item.EventID == eventID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CardOrder != out[j].CardOrder {
			return out[i].CardOrder < out[j].CardOrder
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *FightRepository) GetByExternalID(_ context.Context, source, externalID string) (*fight.Fight, error) {
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

func (r *FightRepository) Upsert(_ context.Context, item fight.Fight) (fight.Fight, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item.Status = fight.NormalizeStatus(item.Status)
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

func (r *FightRepository) UpdateStatus(_ context.Context, id int64, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return nil
	}
	item.Status = fight.NormalizeStatus(status)
	item.UpdatedAt = time.Now()
	r.items[id] = item
	return nil
}

func (r *FightRepository) GetResult(_ context.Context, fightID int64) (*fight.Result, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result, ok := r.results[fightID]
	if !ok {
		return nil, nil
	}
	out := result
	return &out, nil
}

func (r *FightRepository) UpsertResult(_ context.Context, item fight.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item.Winner = fight.NormalizeWinner(item.Winner)
	if existing, ok := r.results[item.FightID]; ok {
		item.RecordedAt = existing.RecordedAt
	} else {
		item.RecordedAt = time.Now()
	}
	r.results[item.FightID] = item
	return nil
}
