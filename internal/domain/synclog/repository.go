package synclog

import (
	"context"
	"time"
)

// Repository wraps the sync-timestamp bookkeeping procedure.
type Repository interface {
	// Due reports whether the window has elapsed since the last recorded
	// run of (source, kind). A kind that never ran is always due.
	Due(ctx context.Context, source, kind string, window time.Duration) (bool, error)
	// Touch records that (source, kind) just ran.
	Touch(ctx context.Context, source, kind string) error
}
