package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/clientmax/agency-crm/internal/core/domain"
	"github.com/clientmax/agency-crm/internal/core/ports"
)

// EmployeeRepository implements ports.EmployeeRepository over Postgres.
type EmployeeRepository struct {
	db *sql.DB
}

func NewEmployeeRepository(db *sql.DB) ports.EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// FindByAuthUserID returns the employee row linked to the auth identity, or
// (nil, nil) when no row is linked.
func (r *EmployeeRepository) FindByAuthUserID(ctx context.Context, authUserID string) (*domain.Employee, error) {
	const q = `SELECT id, name, email, role, COALESCE(team_lead_id::text, '')
	           FROM employees WHERE auth_user_id = $1`
	return r.scanOne(ctx, q, authUserID)
}

// FindByEmail is the fallback lookup used to link pre-provisioned employee
// rows to a freshly created auth identity.
func (r *EmployeeRepository) FindByEmail(ctx context.Context, email string) (*domain.Employee, error) {
	const q = `SELECT id, name, email, role, COALESCE(team_lead_id::text, '')
	           FROM employees WHERE lower(email) = lower($1)`
	return r.scanOne(ctx, q, email)
}

func (r *EmployeeRepository) scanOne(ctx context.Context, query, arg string) (*domain.Employee, error) {
	var (
		e    domain.Employee
		role string
	)
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&e.ID, &e.Name, &e.Email, &role, &e.TeamLeadID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("employee lookup: %w", err)
	}

	parsed, err := domain.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("employee %s: %w", e.ID, err)
	}
	e.Role = parsed
	return &e, nil
}

// LinkAuthUser stamps the auth identity onto the employee row.
func (r *EmployeeRepository) LinkAuthUser(ctx context.Context, employeeID, authUserID string) error {
	const q = `UPDATE employees SET auth_user_id = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, employeeID, authUserID)
	if err != nil {
		return fmt.Errorf("link employee: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

// UnlinkAuthUser clears the auth reference ahead of account deletion.
func (r *EmployeeRepository) UnlinkAuthUser(ctx context.Context, employeeID string) error {
	const q = `UPDATE employees SET auth_user_id = NULL WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, q, employeeID); err != nil {
		return fmt.Errorf("unlink employee: %w", err)
	}
	return nil
}
