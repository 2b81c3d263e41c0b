package ports

import (
	"context"

	"github.com/clientmax/agency-crm/internal/core/domain"
)

// AuthEventType classifies a pushed auth-state change.
type AuthEventType string

const (
	AuthSignedIn       AuthEventType = "signed_in"
	AuthSignedOut      AuthEventType = "signed_out"
	AuthTokenRefreshed AuthEventType = "token_refreshed"
)

// AuthEvent is one auth-state change pushed by the provider.
// Session is nil for AuthSignedOut.
type AuthEvent struct {
	Type    AuthEventType
	Session *domain.Session
}

// AuthProvider wraps the external authentication service. Implementations
// must never invoke subscriber callbacks while holding internal locks that
// provider methods also take: subscribers may not call back into the
// provider synchronously, so they only hand the event off.
type AuthProvider interface {
	SignIn(ctx context.Context, email, password string) (*domain.Session, error)
	SignUp(ctx context.Context, email, password, name string) (*domain.Session, error)
	SignOut(ctx context.Context) error
	// CurrentSession returns the active session, or nil when there is none.
	CurrentSession(ctx context.Context) (*domain.Session, error)
	// Subscribe registers fn for auth-state changes and returns an
	// unsubscribe handle.
	Subscribe(fn func(AuthEvent)) (unsubscribe func())
}

// AdminAuthAPI is the provider's privileged management surface.
type AdminAuthAPI interface {
	UpdatePassword(ctx context.Context, userID, newPassword string) error
	DeleteUser(ctx context.Context, userID string) error
}
