package postgres

import (
	"context"
	"database/sql"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/cagepulse/cagepulse/internal/domain/event"
)

type eventTableModel struct {
	ID         int64      `db:"id"`
	Source     string     `db:"source"`
	ExternalID string     `db:"external_id"`
	Name       string     `db:"name"`
	Date       *time.Time `db:"event_date"`
	Location   string     `db:"location"`
	Status     string     `db:"status"`
	UpdatedAt  time.Time  `db:"updated_at"`
}

func (m eventTableModel) toDomain() event.Event {
	return event.Event{
		ID:         m.ID,
		Source:     m.Source,
		ExternalID: m.ExternalID,
		Name:       m.Name,
		Date:       m.Date,
		Location:   m.Location,
		Status:     m.Status,
		UpdatedAt:  m.UpdatedAt,
	}
}

type EventRepository struct {
	db *sqlx.DB
}

func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) GetByExternalID(ctx context.Context, source, externalID string) (*event.Event, error) {
	var row eventTableModel
	err := r.db.GetContext(ctx, &row,
		`SELECT id, source, external_id, name, event_date, location, status, updated_at
		 FROM events WHERE source = $1 AND external_id = $2`,
		source, externalID,
	)
	if err != nil {
		if crerr.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, crerr.Wrap(err, "select event by external id")
	}
	out := row.toDomain()
	return &out, nil
}

func (r *EventRepository) ListBySource(ctx context.Context, source string) ([]event.Event, error) {
	var rows []eventTableModel
	err := r.db.SelectContext(ctx, &rows,
		`SELECT id, source, external_id, name, event_date, location, status, updated_at
		 FROM events WHERE source = $1 ORDER BY event_date NULLS LAST, id`,
		source,
	)
	if err != nil {
		return nil, crerr.Wrap(err, "select events by source")
	}

	out := make([]event.Event, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *EventRepository) Upsert(ctx context.Context, item event.Event) (event.Event, error) {
	var row eventTableModel
	err := r.db.GetContext(ctx, &row,
		`INSERT INTO events (source, external_id, name, event_date, location, status, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW())
		 ON CONFLICT (source, external_id) DO UPDATE SET
		   name = EXCLUDED.name,
		   event_date = EXCLUDED.event_date,
		   location = EXCLUDED.location,
		   status = EXCLUDED.status,
		   updated_at = NOW()
		 RETURNING id, source, external_id, name, event_date, location, status, updated_at`,
		item.Source, item.ExternalID, item.Name, item.Date, item.Location, event.NormalizeStatus(item.Status),
	)
	if err != nil {
		return event.Event{}, crerr.Wrap(err, "upsert event")
	}
	return row.toDomain(), nil
}

func (r *EventRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE events SET status = $2, updated_at = NOW() WHERE id = $1`,
		id, event.NormalizeStatus(status),
	)
	if err != nil {
		return crerr.Wrap(err, "update event status")
	}
	return nil
}
