package postgres

import (
	"context"
	"database/sql"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/cagepulse/cagepulse/internal/domain/identity"
)

type mappingTableModel struct {
	ID                 int64     `db:"id"`
	SourceA            string    `db:"source_a"`
	FighterAExternalID string    `db:"fighter_a_external_id"`
	SourceB            string    `db:"source_b"`
	FighterBExternalID string    `db:"fighter_b_external_id"`
	Method             string    `db:"method"`
	Confidence         float64   `db:"confidence"`
	Verified           bool      `db:"verified"`
	CreatedAt          time.Time `db:"created_at"`
}

func (m mappingTableModel) toDomain() identity.Mapping {
	return identity.Mapping{
		ID:                 m.ID,
		SourceA:            m.SourceA,
		FighterAExternalID: m.FighterAExternalID,
		SourceB:            m.SourceB,
		FighterBExternalID: m.FighterBExternalID,
		Method:             m.Method,
		Confidence:         m.Confidence,
		Verified:           m.Verified,
		CreatedAt:          m.CreatedAt,
	}
}

type IdentityRepository struct {
	db *sqlx.DB
}

func NewIdentityRepository(db *sqlx.DB) *IdentityRepository {
	return &IdentityRepository{db: db}
}

func (r *IdentityRepository) GetBySourceA(ctx context.Context, sourceA, fighterAExternalID string) (*identity.Mapping, error) {
	var row mappingTableModel
	err := r.db.GetContext(ctx, &row,
		`SELECT id, source_a, fighter_a_external_id, source_b, fighter_b_external_id,
		   method, confidence, verified, created_at
		 FROM fighter_mappings WHERE source_a = $1 AND fighter_a_external_id = $2`,
		sourceA, fighterAExternalID,
	)
	if err != nil {
		if crerr.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, crerr.Wrap(err, "select fighter mapping")
	}
	out := row.toDomain()
	return &out, nil
}

func (r *IdentityRepository) Upsert(ctx context.Context, item identity.Mapping) (identity.Mapping, error) {
	var row mappingTableModel
	err := r.db.GetContext(ctx, &row,
		`INSERT INTO fighter_mappings (source_a, fighter_a_external_id, source_b, fighter_b_external_id,
		   method, confidence, verified, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		 ON CONFLICT (source_a, fighter_a_external_id) DO UPDATE SET
		   source_b = EXCLUDED.source_b,
		   fighter_b_external_id = EXCLUDED.fighter_b_external_id,
		   method = EXCLUDED.method,
		   confidence = EXCLUDED.confidence,
		   verified = EXCLUDED.verified
		 RETURNING id, source_a, fighter_a_external_id, source_b, fighter_b_external_id,
		   method, confidence, verified, created_at`,
		item.SourceA, item.FighterAExternalID, item.SourceB, item.FighterBExternalID,
		item.Method, item.Confidence, item.Verified,
	)
	if err != nil {
		return identity.Mapping{}, crerr.Wrap(err, "upsert fighter mapping")
	}
	return row.toDomain(), nil
}
