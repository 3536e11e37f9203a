package identity

import "context"

// Repository persists cross-source identity mappings.
type Repository interface {
	GetBySourceA(ctx context.Context, sourceA, fighterAExternalID string) (*Mapping, error)
	Upsert(ctx context.Context, item Mapping) (Mapping, error)
}
