package postgres

import (
	"context"
	"database/sql"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/cagepulse/cagepulse/internal/domain/fighter"
)

type fighterTableModel struct {
	ID          int64         `db:"id"`
	Source      string        `db:"source"`
	ExternalID  string        `db:"external_id"`
	FirstName   string        `db:"first_name"`
	LastName    string        `db:"last_name"`
	Nickname    string        `db:"nickname"`
	WeightClass string        `db:"weight_class"`
	HeightCm    float64       `db:"height_cm"`
	ReachCm     float64       `db:"reach_cm"`
	Wins        int           `db:"wins"`
	Losses      int           `db:"losses"`
	Draws       int           `db:"draws"`
	NoContests  int           `db:"no_contests"`
	StrikesLPM  float64       `db:"strikes_lpm"`
	StrikeAcc   float64       `db:"strike_acc"`
	TakedownAvg float64       `db:"takedown_avg"`
	SubAvg      float64       `db:"sub_avg"`
	Rank        sql.NullInt64 `db:"rank"`
	Interim     bool          `db:"interim"`
	UpdatedAt   time.Time     `db:"updated_at"`
}

func (m fighterTableModel) toDomain() fighter.Profile {
	out := fighter.Profile{
		ID:          m.ID,
		Source:      m.Source,
		ExternalID:  m.ExternalID,
		FirstName:   m.FirstName,
		LastName:    m.LastName,
		Nickname:    m.Nickname,
		WeightClass: m.WeightClass,
		HeightCm:    m.HeightCm,
		ReachCm:     m.ReachCm,
		Wins:        m.Wins,
		Losses:      m.Losses,
		Draws:       m.Draws,
		NoContests:  m.NoContests,
		StrikesLPM:  m.StrikesLPM,
		StrikeAcc:   m.StrikeAcc,
		TakedownAvg: m.TakedownAvg,
		SubAvg:      m.SubAvg,
		Interim:     m.Interim,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.Rank.Valid {
		rank := int(m.Rank.Int64)
		out.Rank = &rank
	}
	return out
}

const fighterColumns = `id, source, external_id, first_name, last_name, nickname,
	weight_class, height_cm, reach_cm, wins, losses, draws, no_contests,
	strikes_lpm, strike_acc, takedown_avg, sub_avg, rank, interim, updated_at`

type FighterRepository struct {
	db *sqlx.DB
}

func NewFighterRepository(db *sqlx.DB) *FighterRepository {
	return &FighterRepository{db: db}
}

func (r *FighterRepository) GetByExternalID(ctx context.Context, source, externalID string) (*fighter.Profile, error) {
	var row fighterTableModel
	err := r.db.GetContext(ctx, &row,
		`SELECT `+fighterColumns+` FROM fighters WHERE source = $1 AND external_id = $2`,
		source, externalID,
	)
	if err != nil {
		if crerr.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, crerr.Wrap(err, "select fighter by external id")
	}
	out := row.toDomain()
	return &out, nil
}

func (r *FighterRepository) ListBySource(ctx context.Context, source string) ([]fighter.Profile, error) {
	var rows []fighterTableModel
	err := r.db.SelectContext(ctx, &rows,
		`SELECT `+fighterColumns+` FROM fighters WHERE source = $1 ORDER BY last_name, first_name, id`,
		source,
	)
	if err != nil {
		return nil, crerr.Wrap(err, "select fighters by source")
	}

	out := make([]fighter.Profile, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *FighterRepository) ListByDivision(ctx context.Context, source, weightClass string) ([]fighter.Profile, error) {
	var rows []fighterTableModel
	err := r.db.SelectContext(ctx, &rows,
		`SELECT `+fighterColumns+` FROM fighters
		 WHERE source = $1 AND weight_class = $2
		 ORDER BY rank NULLS LAST, last_name, id`,
		source, weightClass,
	)
	if err != nil {
		return nil, crerr.Wrap(err, "select fighters by division")
	}

	out := make([]fighter.Profile, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *FighterRepository) Upsert(ctx context.Context, item fighter.Profile) (fighter.Profile, error) {
	var rank sql.NullInt64
	if item.Rank != nil {
		rank = sql.NullInt64{Int64: int64(*item.Rank), Valid: true}
	}

	var row fighterTableModel
	err := r.db.GetContext(ctx, &row,
		`INSERT INTO fighters (source, external_id, first_name, last_name, nickname,
		   weight_class, height_cm, reach_cm, wins, losses, draws, no_contests,
		   strikes_lpm, strike_acc, takedown_avg, sub_avg, rank, interim, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, NOW())
		 ON CONFLICT (source, external_id) DO UPDATE SET
		   first_name = EXCLUDED.first_name,
		   last_name = EXCLUDED.last_name,
		   nickname = EXCLUDED.nickname,
		   weight_class = EXCLUDED.weight_class,
		   height_cm = EXCLUDED.height_cm,
		   reach_cm = EXCLUDED.reach_cm,
		   wins = EXCLUDED.wins,
		   losses = EXCLUDED.losses,
		   draws = EXCLUDED.draws,
		   no_contests = EXCLUDED.no_contests,
		   strikes_lpm = EXCLUDED.strikes_lpm,
		   strike_acc = EXCLUDED.strike_acc,
		   takedown_avg = EXCLUDED.takedown_avg,
		   sub_avg = EXCLUDED.sub_avg,
		   rank = EXCLUDED.rank,
		   interim = EXCLUDED.interim,
		   updated_at = NOW()
		 RETURNING `+fighterColumns,
		item.Source, item.ExternalID, item.FirstName, item.LastName, item.Nickname,
		item.WeightClass, item.HeightCm, item.ReachCm, item.Wins, item.Losses, item.Draws, item.NoContests,
		item.StrikesLPM, item.StrikeAcc, item.TakedownAvg, item.SubAvg, rank, item.Interim,
	)
	if err != nil {
		return fighter.Profile{}, crerr.Wrap(err, "upsert fighter")
	}
	return row.toDomain(), nil
}

func (r *FighterRepository) SetRank(ctx context.Context, id int64, rank *int, interim bool) error {
	var value sql.NullInt64
	if rank != nil {
		value = sql.NullInt64{Int64: int64(*rank), Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`UPDATE fighters SET rank = $2, interim = $3, updated_at = NOW() WHERE id = $1`,
		id, value, interim,
	)
	if err != nil {
		return crerr.Wrap(err, "update fighter rank")
	}
	return nil
}
