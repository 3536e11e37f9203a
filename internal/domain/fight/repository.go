package fight

import "context"

// Repository exposes fight and result access for one backing store.
type Repository interface {
	ListByEvent(ctx context.Context, eventID int64) ([]Fight, error)
	GetByExternalID(ctx context.Context, source, externalID string) (*Fight, error)
	Upsert(ctx context.Context, item Fight) (Fight, error)
	UpdateStatus(ctx context.Context, id int64, status string) error

	GetResult(ctx context.Context, fightID int64) (*Result, error)
	UpsertResult(ctx context.Context, item Result) error
}
