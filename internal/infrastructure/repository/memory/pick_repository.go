package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cagepulse/cagepulse/internal/domain/fight"
	"github.com/cagepulse/cagepulse/internal/domain/pick"
)

const correctPickScore = 10

type PickRepository struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]pick.Pick
}

func NewPickRepository() *PickRepository {
	return &PickRepository{items: make(map[int64]pick.Pick)}
}

// Add seeds a pick; tests and dev tooling use it, the sync engine never does.
func (r *PickRepository) Add(item pick.Pick) pick.Pick {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	item.ID = r.nextID
	if item.Status == "" {
		item.Status = pick.StatusActive
	}
	item.UpdatedAt = time.Now()
	r.items[item.ID] = item
	return item
}

func (r *PickRepository) ListActiveByFight(_ context.Context, fightID int64) ([]pick.Pick, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pick.Pick, 0, 4)
	for _, item := range r.items {
		if item.FightID == fightID && item.Status == pick.StatusActive {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *PickRepository) VoidByFight(_ context.Context, fightID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	voided := 0
	for id, item := range r.items {
		if item.FightID != fightID || item.Status != pick.StatusActive {
			continue
		}
		item.Status = pick.StatusVoided
		item.Score = nil
		item.UpdatedAt = time.Now()
		r.items[id] = item
		voided++
	}
	return voided, nil
}

// GradeByFight mirrors the stored procedure's behavior: every active
// pick on the fight is graded in one shot. Draws and no contests score
// zero for everyone.
func (r *PickRepository) GradeByFight(_ context.Context, fightID int64, winner string) (pick.GradeOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	winner = fight.NormalizeWinner(winner)
	out := pick.GradeOutcome{}
	for id, item := range r.items {
		if item.FightID != fightID || item.Status != pick.StatusActive {
			continue
		}

		score := 0
		if item.Corner == winner {
			score = correctPickScore
		}
		item.Status = pick.StatusGraded
		item.Score = &score
		item.UpdatedAt = time.Now()
		r.items[id] = item

		out.GradedCount++
		out.UserIDs = append(out.UserIDs, item.UserID)
	}
	sort.Strings(out.UserIDs)
	return out, nil
}

// Get returns a pick by id for test assertions.
func (r *PickRepository) Get(id int64) (pick.Pick, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	return item, ok
}
