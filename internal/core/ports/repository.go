package ports

import (
	"context"

	"github.com/clientmax/agency-crm/internal/core/domain"
)

// EmployeeRepository looks up and links employee profiles. Find methods
// return (nil, nil) when no row matches — absence is a state, not an error.
type EmployeeRepository interface {
	FindByAuthUserID(ctx context.Context, authUserID string) (*domain.Employee, error)
	FindByEmail(ctx context.Context, email string) (*domain.Employee, error)
	// LinkAuthUser stamps the auth identity onto the employee row so later
	// lookups hit the foreign key directly.
	LinkAuthUser(ctx context.Context, employeeID, authUserID string) error
	UnlinkAuthUser(ctx context.Context, employeeID string) error
}

// ClientRepository looks up and unlinks client profiles.
type ClientRepository interface {
	FindByAuthUserID(ctx context.Context, authUserID string) (*domain.Client, error)
	UnlinkAuthUser(ctx context.Context, clientID string) error
}

// TeamLeadRepository reads team utilization for threshold scans.
type TeamLeadRepository interface {
	UtilizationBelow(ctx context.Context, threshold float64) ([]domain.TeamLead, error)
}

// FeedbackRepository reads client feedback scores for threshold scans.
type FeedbackRepository interface {
	ScoresBelow(ctx context.Context, threshold float64) ([]domain.ClientFeedback, error)
}

// UserRoleRepository manages role grants keyed by auth user id.
type UserRoleRepository interface {
	DeleteByUserID(ctx context.Context, userID string) error
}

// EmailLogRepository appends to the threshold-email audit trail.
type EmailLogRepository interface {
	Insert(ctx context.Context, entry domain.EmailLogEntry) error
}

// NotificationRepository persists the notification center's entries.
type NotificationRepository interface {
	Insert(ctx context.Context, n domain.Notification) error
	List(ctx context.Context) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}
