// Package postgres implements the domain repositories on PostgreSQL via
// database/sql and lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"convoke/internal/domain"
)

const eventColumns = `id, name, start_at, end_at, capacity, description, owner_id, privacy, status, city, image_url, category, lat, lng, address, created_at, updated_at`

type eventRepository struct {
	DB *sql.DB
}

// NewEventRepository returns an EventRepository backed by the given database.
func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{DB: db}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (name, start_at, end_at, capacity, description, owner_id, privacy, status, city, image_url, category, lat, lng, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.Name, e.StartAt, e.EndAt, e.Capacity, e.Description, e.OwnerID,
		e.Privacy, e.Status, e.City, e.ImageURL, e.Category, e.Lat, e.Lng,
		e.Address, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, id))
}

func (r *eventRepository) GetByName(ctx context.Context, name string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE lower(name) = lower($1)`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, name))
}

func (r *eventRepository) ListPublicUpcoming(ctx context.Context, now time.Time) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE privacy = 'public' AND start_at > $1
		ORDER BY start_at ASC
	`
	return r.list(ctx, query, now)
}

func (r *eventRepository) ListByOwnerSince(ctx context.Context, ownerID string, cutoff time.Time) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE owner_id = $1 AND start_at > $2
		ORDER BY start_at ASC
	`
	return r.list(ctx, query, ownerID, cutoff)
}

func (r *eventRepository) CountByOwnerSince(ctx context.Context, ownerID string, cutoff time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM events WHERE owner_id = $1 AND start_at > $2`
	var count int
	if err := r.DB.QueryRowContext(ctx, query, ownerID, cutoff).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *eventRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.Event, error) {
	if len(ids) == 0 {
		return []*domain.Event{}, nil
	}
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE id = ANY($1)
		ORDER BY start_at ASC
	`
	return r.list(ctx, query, pq.Array(ids))
}

func (r *eventRepository) ListNonTerminal(ctx context.Context) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE status NOT IN ('finished', 'cancelled')
		ORDER BY start_at ASC
	`
	return r.list(ctx, query)
}

func (r *eventRepository) UpdateStatus(ctx context.Context, id string, status domain.EventStatus, updatedAt time.Time) error {
	query := `UPDATE events SET status = $2, updated_at = $3 WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, id, status, updatedAt)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.NewError(domain.KindNotFound, "Event not found")
	}
	return nil
}

func (r *eventRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Event, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *eventRepository) scanOne(row rowScanner) (*domain.Event, error) {
	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewError(domain.KindNotFound, "Event not found")
		}
		return nil, err
	}
	return e, nil
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var descNull, imageNull, categoryNull, addressNull sql.NullString
	var latNull, lngNull sql.NullFloat64
	err := row.Scan(
		&e.ID, &e.Name, &e.StartAt, &e.EndAt, &e.Capacity, &descNull,
		&e.OwnerID, &e.Privacy, &e.Status, &e.City, &imageNull, &categoryNull,
		&latNull, &lngNull, &addressNull, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if descNull.Valid {
		e.Description = &descNull.String
	}
	if imageNull.Valid {
		e.ImageURL = &imageNull.String
	}
	if categoryNull.Valid {
		e.Category = &categoryNull.String
	}
	if latNull.Valid {
		e.Lat = &latNull.Float64
	}
	if lngNull.Valid {
		e.Lng = &lngNull.Float64
	}
	if addressNull.Valid {
		e.Address = &addressNull.String
	}
	return e, nil
}
