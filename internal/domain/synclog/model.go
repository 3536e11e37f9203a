package synclog

import "time"

// Sync kinds, one timestamp row per kind per source.
const (
	KindEvents   = "events"
	KindCards    = "cards"
	KindResults  = "results"
	KindFighters = "fighters"
)

// Record tracks when a sync kind last ran, powering the cache gate.
type Record struct {
	Source   string
	Kind     string
	SyncedAt time.Time
}
