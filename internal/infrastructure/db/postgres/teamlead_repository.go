package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/clientmax/agency-crm/internal/core/domain"
	"github.com/clientmax/agency-crm/internal/core/ports"
)

// TeamLeadRepository implements ports.TeamLeadRepository over Postgres.
type TeamLeadRepository struct {
	db *sql.DB
}

func NewTeamLeadRepository(db *sql.DB) ports.TeamLeadRepository {
	return &TeamLeadRepository{db: db}
}

// UtilizationBelow lists team leads whose reported utilization sits under the
// threshold, lowest first so the worst offenders alert first.
func (r *TeamLeadRepository) UtilizationBelow(ctx context.Context, threshold float64) ([]domain.TeamLead, error) {
	const q = `SELECT id, name, department, email, COALESCE(team_size, 0),
	                  utilization, COALESCE(last_updated, now())
	           FROM team_leads
	           WHERE utilization < $1
	           ORDER BY utilization ASC`

	rows, err := r.db.QueryContext(ctx, q, threshold)
	if err != nil {
		return nil, fmt.Errorf("utilization query: %w", err)
	}
	defer rows.Close()

	var out []domain.TeamLead
	for rows.Next() {
		var tl domain.TeamLead
		if err := rows.Scan(&tl.ID, &tl.Name, &tl.Department, &tl.Email,
			&tl.TeamSize, &tl.Utilization, &tl.LastUpdated); err != nil {
			return nil, fmt.Errorf("utilization scan: %w", err)
		}
		out = append(out, tl)
	}
	return out, rows.Err()
}
