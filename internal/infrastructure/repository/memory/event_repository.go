package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cagepulse/cagepulse/internal/domain/event"
)

type EventRepository struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]event.Event
}

func NewEventRepository() *EventRepository {
	return &EventRepository{items: make(map[int64]event.Event)}
}

func (r *EventRepository) GetByExternalID(_ context.Context, source, externalID string) (*event.Event, error) {
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

func (r *EventRepository) ListBySource(_ context.Context, source string) ([]event.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]event.Event, 0, len(r.items))
	for _, item := range r.items {
		if item.Source == source {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *EventRepository) Upsert(_ context.Context, item event.Event) (event.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item.Status = event.NormalizeStatus(item.Status)
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

func (r *EventRepository) UpdateStatus(_ context.Context, id int64, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return nil
	}
	item.Status = event.NormalizeStatus(status)
	item.UpdatedAt = time.Now()
	r.items[id] = item
	return nil
}
