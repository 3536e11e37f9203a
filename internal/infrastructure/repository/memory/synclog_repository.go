package memory

import (
	"context"
	"sync"
	"time"

	"github.com/cagepulse/cagepulse/internal/domain/synclog"
)

type SyncLogRepository struct {
	mu    sync.RWMutex
	items map[string]synclog.Record

	now func() time.Time
}

func NewSyncLogRepository() *SyncLogRepository {
	return &SyncLogRepository{
		items: make(map[string]synclog.Record),
		now:   time.Now,
	}
}

func (r *SyncLogRepository) Due(_ context.Context, source, kind string, window time.Duration) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.items[source+"/"+kind]
	if !ok {
		return true, nil
	}
	return r.now().Sub(record.SyncedAt) >= window, nil
}

func (r *SyncLogRepository) Touch(_ context.Context, source, kind string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[source+"/"+kind] = synclog.Record{
		Source:   source,
		Kind:     kind,
		SyncedAt: r.now(),
	}
	return nil
}
