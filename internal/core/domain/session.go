package domain

import "time"

// IdentityKind distinguishes the two independent authentication contexts.
// A single login never legitimately carries both, but both are always checked.
type IdentityKind string

const (
	IdentityEmployee IdentityKind = "employee"
	IdentityClient   IdentityKind = "client"
)

// Session is the auth-provider session handle held by a session store.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session token is past its expiry.
// Zero ExpiresAt means the provider did not report one.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
