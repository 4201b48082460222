package postgres

import (
	"context"
	"database/sql"
	"errors"

	"convoke/internal/domain"
)

type resourceRepository struct {
	DB *sql.DB
}

// NewResourceRepository returns a ResourceRepository backed by the given database.
func NewResourceRepository(db *sql.DB) domain.ResourceRepository {
	return &resourceRepository{DB: db}
}

func (r *resourceRepository) Create(ctx context.Context, res *domain.EventResource) error {
	query := `
		INSERT INTO event_resources (event_id, name, url, type, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, res.EventID, res.Name, res.URL, res.Type, res.CreatedAt).Scan(&res.ID)
}

func (r *resourceRepository) GetByID(ctx context.Context, id string) (*domain.EventResource, error) {
	query := `SELECT id, event_id, name, url, type, created_at FROM event_resources WHERE id = $1`
	res := &domain.EventResource{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&res.ID, &res.EventID, &res.Name, &res.URL, &res.Type, &res.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewError(domain.KindNotFound, "Resource not found")
		}
		return nil, err
	}
	return res, nil
}

func (r *resourceRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.EventResource, error) {
	query := `
		SELECT id, event_id, name, url, type, created_at
		FROM event_resources
		WHERE event_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	resources := make([]*domain.EventResource, 0)
	for rows.Next() {
		res := &domain.EventResource{}
		if err := rows.Scan(&res.ID, &res.EventID, &res.Name, &res.URL, &res.Type, &res.CreatedAt); err != nil {
			return nil, err
		}
		resources = append(resources, res)
	}
	return resources, rows.Err()
}

func (r *resourceRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM event_resources WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.NewError(domain.KindNotFound, "Resource not found")
	}
	return nil
}
