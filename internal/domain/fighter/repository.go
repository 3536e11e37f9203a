package fighter

import "context"

// Repository exposes fighter profile access for one backing store.
type Repository interface {
	GetByExternalID(ctx context.Context, source, externalID string) (*Profile, error)
	ListBySource(ctx context.Context, source string) ([]Profile, error)
	ListByDivision(ctx context.Context, source, weightClass string) ([]Profile, error)
	Upsert(ctx context.Context, item Profile) (Profile, error)
	SetRank(ctx context.Context, id int64, rank *int, interim bool) error
}
