package postgres

import (
	"context"
	"database/sql"
	"errors"

	"convoke/internal/domain"
)

const invitationColumns = `id, event_id, email, status, expires_at, created_at`

type invitationRepository struct {
	DB *sql.DB
}

// NewInvitationRepository returns an InvitationRepository backed by the given database.
func NewInvitationRepository(db *sql.DB) domain.InvitationRepository {
	return &invitationRepository{DB: db}
}

func (r *invitationRepository) Create(ctx context.Context, inv *domain.Invitation) error {
	query := `
		INSERT INTO invitations (event_id, email, status, expires_at, created_at)
		VALUES ($1, lower($2), $3, $4, $5)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, inv.EventID, inv.Email, inv.Status, inv.ExpiresAt, inv.CreatedAt).Scan(&inv.ID)
}

func (r *invitationRepository) GetByID(ctx context.Context, id string) (*domain.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE id = $1`
	inv, err := scanInvitation(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewError(domain.KindNotFound, "Invitation not found")
		}
		return nil, err
	}
	return inv, nil
}

func (r *invitationRepository) GetActiveByEventAndEmail(ctx context.Context, eventID, email string) (*domain.Invitation, error) {
	query := `
		SELECT ` + invitationColumns + `
		FROM invitations
		WHERE event_id = $1 AND email = lower($2) AND status IN ('pending', 'accepted')
		LIMIT 1
	`
	inv, err := scanInvitation(r.DB.QueryRowContext(ctx, query, eventID, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewError(domain.KindNotFound, "Invitation not found")
		}
		return nil, err
	}
	return inv, nil
}

func (r *invitationRepository) CountActiveByEventID(ctx context.Context, eventID string) (int, error) {
	query := `SELECT COUNT(*) FROM invitations WHERE event_id = $1 AND status IN ('pending', 'accepted')`
	var count int
	if err := r.DB.QueryRowContext(ctx, query, eventID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *invitationRepository) ListByEmail(ctx context.Context, email string) ([]*domain.Invitation, error) {
	query := `
		SELECT ` + invitationColumns + `
		FROM invitations
		WHERE email = lower($1)
		ORDER BY created_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	invs := make([]*domain.Invitation, 0)
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		invs = append(invs, inv)
	}
	return invs, rows.Err()
}

func (r *invitationRepository) ListByEventID(ctx context.Context, eventID string, search string, params domain.PaginationParams) ([]*domain.Invitation, int, error) {
	countQuery := `
		SELECT COUNT(*)
		FROM invitations
		WHERE event_id = $1 AND ($2 = '' OR email LIKE '%' || lower($2) || '%')
	`
	var total int
	if err := r.DB.QueryRowContext(ctx, countQuery, eventID, search).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + invitationColumns + `
		FROM invitations
		WHERE event_id = $1 AND ($2 = '' OR email LIKE '%' || lower($2) || '%')
		ORDER BY created_at ASC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID, search, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	invs := make([]*domain.Invitation, 0)
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, 0, err
		}
		invs = append(invs, inv)
	}
	return invs, total, rows.Err()
}

func (r *invitationRepository) UpdateStatus(ctx context.Context, id string, status domain.InvitationStatus) error {
	query := `UPDATE invitations SET status = $2 WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, id, status)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.NewError(domain.KindNotFound, "Invitation not found")
	}
	return nil
}

func scanInvitation(row rowScanner) (*domain.Invitation, error) {
	inv := &domain.Invitation{}
	var expiresNull sql.NullTime
	err := row.Scan(&inv.ID, &inv.EventID, &inv.Email, &inv.Status, &expiresNull, &inv.CreatedAt)
	if err != nil {
		return nil, err
	}
	if expiresNull.Valid {
		inv.ExpiresAt = &expiresNull.Time
	}
	return inv, nil
}
