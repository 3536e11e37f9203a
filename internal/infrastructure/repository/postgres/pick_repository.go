package postgres

import (
	"context"
	"database/sql"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/cagepulse/cagepulse/internal/domain/pick"
)

type pickTableModel struct {
	ID        int64         `db:"id"`
	UserID    string        `db:"user_id"`
	FightID   int64         `db:"fight_id"`
	Corner    string        `db:"corner"`
	Status    string        `db:"status"`
	Score     sql.NullInt64 `db:"score"`
	UpdatedAt time.Time     `db:"updated_at"`
}

func (m pickTableModel) toDomain() pick.Pick {
	out := pick.Pick{
		ID:        m.ID,
		UserID:    m.UserID,
		FightID:   m.FightID,
		Corner:    m.Corner,
		Status:    m.Status,
		UpdatedAt: m.UpdatedAt,
	}
	if m.Score.Valid {
		score := int(m.Score.Int64)
		out.Score = &score
	}
	return out
}

type PickRepository struct {
	db *sqlx.DB
}

func NewPickRepository(db *sqlx.DB) *PickRepository {
	return &PickRepository{db: db}
}

func (r *PickRepository) ListActiveByFight(ctx context.Context, fightID int64) ([]pick.Pick, error) {
	var rows []pickTableModel
	err := r.db.SelectContext(ctx, &rows,
		`SELECT id, user_id, fight_id, corner, status, score, updated_at
		 FROM picks WHERE fight_id = $1 AND status = $2 ORDER BY id`,
		fightID, pick.StatusActive,
	)
	if err != nil {
		return nil, crerr.Wrap(err, "select active picks")
	}

	out := make([]pick.Pick, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *PickRepository) VoidByFight(ctx context.Context, fightID int64) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE picks SET status = $2, score = NULL, updated_at = NOW()
		 WHERE fight_id = $1 AND status = $3`,
		fightID, pick.StatusVoided, pick.StatusActive,
	)
	if err != nil {
		return 0, crerr.Wrap(err, "void picks")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, crerr.Wrap(err, "count voided picks")
	}
	return int(affected), nil
}

// GradeByFight delegates to the grade_fight_picks stored procedure so
// the score writes and status flips commit or roll back as one unit.
func (r *PickRepository) GradeByFight(ctx context.Context, fightID int64, winner string) (pick.GradeOutcome, error) {
	var rows []struct {
		UserID string `db:"user_id"`
	}
	err := r.db.SelectContext(ctx, &rows,
		`SELECT user_id FROM grade_fight_picks($1, $2)`,
		fightID, winner,
	)
	if err != nil {
		return pick.GradeOutcome{}, crerr.Wrap(err, "grade picks")
	}

	out := pick.GradeOutcome{GradedCount: len(rows)}
	for _, row := range rows {
		out.UserIDs = append(out.UserIDs, row.UserID)
	}
	return out, nil
}
