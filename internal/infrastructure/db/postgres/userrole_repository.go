package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/clientmax/agency-crm/internal/core/ports"
)

// UserRoleRepository implements ports.UserRoleRepository over Postgres.
type UserRoleRepository struct {
	db *sql.DB
}

func NewUserRoleRepository(db *sql.DB) ports.UserRoleRepository {
	return &UserRoleRepository{db: db}
}

// DeleteByUserID removes every role grant for the auth user. Deleting zero
// rows is not an error.
func (r *UserRoleRepository) DeleteByUserID(ctx context.Context, userID string) error {
	const q = `DELETE FROM user_roles WHERE user_id = $1`
	if _, err := r.db.ExecContext(ctx, q, userID); err != nil {
		return fmt.Errorf("delete role grants: %w", err)
	}
	return nil
}
