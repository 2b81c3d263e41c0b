package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/clientmax/agency-crm/internal/core/domain"
	"github.com/clientmax/agency-crm/internal/core/ports"
)

// EmailLogRepository implements ports.EmailLogRepository over Postgres.
type EmailLogRepository struct {
	db *sql.DB
}

func NewEmailLogRepository(db *sql.DB) ports.EmailLogRepository {
	return &EmailLogRepository{db: db}
}

// Insert appends one row to the threshold-email audit trail.
func (r *EmailLogRepository) Insert(ctx context.Context, entry domain.EmailLogEntry) error {
	const q = `INSERT INTO email_notification_log
	           (notification_type, recipient_email, threshold_type,
	            threshold_value, actual_value, status, sent_at)
	           VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, q,
		string(entry.NotificationType),
		entry.RecipientEmail,
		entry.ThresholdType,
		entry.ThresholdValue,
		entry.ActualValue,
		entry.Status,
		entry.SentAt,
	)
	if err != nil {
		return fmt.Errorf("insert email log: %w", err)
	}
	return nil
}
