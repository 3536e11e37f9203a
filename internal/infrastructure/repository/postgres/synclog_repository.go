package postgres

import (
	"context"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
)

type SyncLogRepository struct {
	db *sqlx.DB
}

func NewSyncLogRepository(db *sqlx.DB) *SyncLogRepository {
	return &SyncLogRepository{db: db}
}

// Due asks the check_sync_due function whether the window has elapsed;
// the comparison runs on the database clock so every instance of the
// service agrees on it.
func (r *SyncLogRepository) Due(ctx context.Context, source, kind string, window time.Duration) (bool, error) {
	var due bool
	err := r.db.GetContext(ctx, &due,
		`SELECT check_sync_due($1, $2, $3)`,
		source, kind, int64(window.Seconds()),
	)
	if err != nil {
		return false, crerr.Wrap(err, "check sync due")
	}
	return due, nil
}

func (r *SyncLogRepository) Touch(ctx context.Context, source, kind string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sync_log (source, kind, synced_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (source, kind) DO UPDATE SET synced_at = NOW()`,
		source, kind,
	)
	if err != nil {
		return crerr.Wrap(err, "touch sync log")
	}
	return nil
}
