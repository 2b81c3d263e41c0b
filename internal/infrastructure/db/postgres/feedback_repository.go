package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/clientmax/agency-crm/internal/core/domain"
	"github.com/clientmax/agency-crm/internal/core/ports"
)

// FeedbackRepository implements ports.FeedbackRepository over Postgres.
type FeedbackRepository struct {
	db *sql.DB
}

func NewFeedbackRepository(db *sql.DB) ports.FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// ScoresBelow lists each client's most recent feedback entry when its score
// sits under the threshold. Only the latest score per client counts: an old
// low score superseded by a good one must not alert.
func (r *FeedbackRepository) ScoresBelow(ctx context.Context, threshold float64) ([]domain.ClientFeedback, error) {
	const q = `SELECT DISTINCT ON (f.client_id)
	                  f.id, f.client_id, c.company_name, f.score,
	                  COALESCE(f.comment, ''), f.submitted_at
	           FROM client_feedback f
	           JOIN clients c ON c.id = f.client_id
	           ORDER BY f.client_id, f.submitted_at DESC`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("feedback query: %w", err)
	}
	defer rows.Close()

	var out []domain.ClientFeedback
	for rows.Next() {
		var fb domain.ClientFeedback
		if err := rows.Scan(&fb.ID, &fb.ClientID, &fb.ClientName, &fb.Score,
			&fb.Comment, &fb.SubmittedAt); err != nil {
			return nil, fmt.Errorf("feedback scan: %w", err)
		}
		if fb.Score < threshold {
			out = append(out, fb)
		}
	}
	return out, rows.Err()
}
