package event

import "context"

// Repository exposes event reads and identity-key writes.
type Repository interface {
	GetByExternalID(ctx context.Context, source, externalID string) (*Event, error)
	ListBySource(ctx context.Context, source string) ([]Event, error)
	Upsert(ctx context.Context, item Event) (Event, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
}
