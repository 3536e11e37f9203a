package postgres

import (
	"context"
	"database/sql"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/cagepulse/cagepulse/internal/domain/fight"
)

type fightTableModel struct {
	ID             int64     `db:"id"`
	Source         string    `db:"source"`
	ExternalID     string    `db:"external_id"`
	EventID        int64     `db:"event_id"`
	CardOrder      int       `db:"card_order"`
	RedExternalID  string    `db:"red_external_id"`
	RedName        string    `db:"red_name"`
	BlueExternalID string    `db:"blue_external_id"`
	BlueName       string    `db:"blue_name"`
	WeightClass    string    `db:"weight_class"`
	Rounds         int       `db:"rounds"`
	TitleBout      bool      `db:"title_bout"`
	Status         string    `db:"status"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func (m fightTableModel) toDomain() fight.Fight {
	return fight.Fight{
		ID:          m.ID,
		Source:      m.Source,
		ExternalID:  m.ExternalID,
		EventID:     m.EventID,
		CardOrder:   m.CardOrder,
		Red:         fight.Corner{FighterExternalID: m.RedExternalID, Name: m.RedName},
		Blue:        fight.Corner{FighterExternalID: m.BlueExternalID, Name: m.BlueName},
		WeightClass: m.WeightClass,
		Rounds:      m.Rounds,
		TitleBout:   m.TitleBout,
		Status:      m.Status,
		UpdatedAt:   m.UpdatedAt,
	}
}

type resultTableModel struct {
	FightID    int64     `db:"fight_id"`
	Winner     string    `db:"winner"`
	Method     string    `db:"method"`
	EndRound   int       `db:"end_round"`
	EndTime    string    `db:"end_time"`
	RecordedAt time.Time `db:"recorded_at"`
}

const fightColumns = `id, source, external_id, event_id, card_order,
	red_external_id, red_name, blue_external_id, blue_name,
	weight_class, rounds, title_bout, status, updated_at`

type FightRepository struct {
	db *sqlx.DB
}

func NewFightRepository(db *sqlx.DB) *FightRepository {
	return &FightRepository{db: db}
}

func (r *FightRepository) ListByEvent(ctx context.Context, eventID int64) ([]fight.Fight, error) {
	var rows []fightTableModel
	err := r.db.SelectContext(ctx, &rows,
		`SELECT `+fightColumns+` FROM fights WHERE event_id = $1 ORDER BY card_order, id`,
		eventID,
	)
	if err != nil {
		return nil, crerr.Wrap(err, "select fights by event")
	}

	out := make([]fight.Fight, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *FightRepository) GetByExternalID(ctx context.Context, source, externalID string) (*fight.Fight, error) {
	var row fightTableModel
	err := r.db.GetContext(ctx, &row,
		`SELECT `+fightColumns+` FROM fights WHERE source = $1 AND external_id = $2`,
		source, externalID,
	)
	if err != nil {
		if crerr.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, crerr.Wrap(err, "select fight by external id")
	}
	out := row.toDomain()
	return &out, nil
}

func (r *FightRepository) Upsert(ctx context.Context, item fight.Fight) (fight.Fight, error) {
	var row fightTableModel
	err := r.db.GetContext(ctx, &row,
		`INSERT INTO fights (source, external_id, event_id, card_order,
		   red_external_id, red_name, blue_external_id, blue_name,
		   weight_class, rounds, title_bout, status, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
		 ON CONFLICT (source, external_id) DO UPDATE SET
		   event_id = EXCLUDED.event_id,
		   card_order = EXCLUDED.card_order,
		   red_external_id = EXCLUDED.red_external_id,
		   red_name = EXCLUDED.red_name,
		   blue_external_id = EXCLUDED.blue_external_id,
		   blue_name = EXCLUDED.blue_name,
		   weight_class = EXCLUDED.weight_class,
		   rounds = EXCLUDED.rounds,
		   title_bout = EXCLUDED.title_bout,
		   status = EXCLUDED.status,
		   updated_at = NOW()
		 RETURNING `+fightColumns,
		item.Source, item.ExternalID, item.EventID, item.CardOrder,
		item.Red.FighterExternalID, item.Red.Name, item.Blue.FighterExternalID, item.Blue.Name,
		item.WeightClass, item.Rounds, item.TitleBout, fight.NormalizeStatus(item.Status),
	)
	if err != nil {
		return fight.Fight{}, crerr.Wrap(err, "upsert fight")
	}
	return row.toDomain(), nil
}

func (r *FightRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE fights SET status = $2, updated_at = NOW() WHERE id = $1`,
		id, fight.NormalizeStatus(status),
	)
	if err != nil {
		return crerr.Wrap(err, "update fight status")
	}
	return nil
}

func (r *FightRepository) GetResult(ctx context.Context, fightID int64) (*fight.Result, error) {
	var row resultTableModel
	err := r.db.GetContext(ctx, &row,
		`SELECT fight_id, winner, method, end_round, end_time, recorded_at
		 FROM fight_results WHERE fight_id = $1`,
		fightID,
	)
	if err != nil {
		if crerr.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, crerr.Wrap(err, "select fight result")
	}
	return &fight.Result{
		FightID:    row.FightID,
		Winner:     row.Winner,
		Method:     row.Method,
		EndRound:   row.EndRound,
		EndTime:    row.EndTime,
		RecordedAt: row.RecordedAt,
	}, nil
}

func (r *FightRepository) UpsertResult(ctx context.Context, item fight.Result) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO fight_results (fight_id, winner, method, end_round, end_time, recorded_at)
		 VALUES ($1, $2, $3, $4, $5, NOW())
		 ON CONFLICT (fight_id) DO UPDATE SET
		   winner = EXCLUDED.winner,
		   method = EXCLUDED.method,
		   end_round = EXCLUDED.end_round,
		   end_time = EXCLUDED.end_time`,
		item.FightID, fight.NormalizeWinner(item.Winner), item.Method, item.EndRound, item.EndTime,
	)
	if err != nil {
		return crerr.Wrap(err, "upsert fight result")
	}
	return nil
}
