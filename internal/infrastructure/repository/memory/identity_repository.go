package memory

import (
	"context"
	"sync"
	"time"

	"github.com/cagepulse/cagepulse/internal/domain/identity"
)

type IdentityRepository struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]identity.Mapping
}

func NewIdentityRepository() *IdentityRepository {
	return &IdentityRepository{items: make(map[int64]identity.Mapping)}
}

func (r *IdentityRepository) GetBySourceA(_ context.Context, sourceA, fighterAExternalID string) (*identity.Mapping, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.SourceA == sourceA && item.FighterAExternalID == fighterAExternalID {
			out := item
			return &out, nil
		}
	}
	return nil, nil
}

func (r *IdentityRepository) Upsert(_ context.Context, item identity.Mapping) (identity.Mapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, existing := range r.items {
		if existing.SourceA == item.SourceA && existing.FighterAExternalID == item.FighterAExternalID {
			item.ID = id
			item.CreatedAt = existing.CreatedAt
			r.items[id] = item
			return item, nil
		}
	}

	r.nextID++
	item.ID = r.nextID
	item.CreatedAt = time.Now()
	r.items[item.ID] = item
	return item, nil
}
