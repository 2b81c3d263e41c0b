package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/clientmax/agency-crm/internal/core/domain"
	"github.com/clientmax/agency-crm/internal/core/ports"
)

// ClientRepository implements ports.ClientRepository over Postgres.
type ClientRepository struct {
	db *sql.DB
}

func NewClientRepository(db *sql.DB) ports.ClientRepository {
	return &ClientRepository{db: db}
}

// FindByAuthUserID returns the client row linked to the auth identity, or
// (nil, nil) when no row is linked.
func (r *ClientRepository) FindByAuthUserID(ctx context.Context, authUserID string) (*domain.Client, error) {
	const q = `SELECT id, company_name, contact_name, email, client_type,
	                  COALESCE(health_score, 0), COALESCE(health_status, 'good')
	           FROM clients WHERE auth_user_id = $1`

	var c domain.Client
	err := r.db.QueryRowContext(ctx, q, authUserID).
		Scan(&c.ID, &c.CompanyName, &c.ContactName, &c.Email, &c.ClientType,
			&c.HealthScore, &c.HealthStatus)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("client lookup: %w", err)
	}
	return &c, nil
}

// UnlinkAuthUser clears the auth reference ahead of account deletion.
func (r *ClientRepository) UnlinkAuthUser(ctx context.Context, clientID string) error {
	const q = `UPDATE clients SET auth_user_id = NULL WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, q, clientID); err != nil {
		return fmt.Errorf("unlink client: %w", err)
	}
	return nil
}
