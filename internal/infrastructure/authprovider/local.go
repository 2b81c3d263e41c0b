package authprovider

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/clientmax/agency-crm/internal/core/domain"
	"github.com/clientmax/agency-crm/internal/core/ports"
)

// Local is the self-hosted auth provider: identities live in the auth_users
// table, passwords are bcrypt hashes, and sessions are HS256 JWTs.
type Local struct {
	db        *sql.DB
	jwtSecret string
	tokenTTL  time.Duration
	log       zerolog.Logger
	events    *broadcaster

	mu      sync.Mutex
	current *domain.Session
}

// NewLocal creates a Local provider over the given database.
func NewLocal(db *sql.DB, jwtSecret string, tokenTTL time.Duration, log zerolog.Logger) *Local {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &Local{
		db:        db,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		log:       log,
		events:    newBroadcaster(),
	}
}

// SignIn verifies credentials against the auth_users table.
func (l *Local) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	const q = `SELECT id, email, password_hash FROM auth_users WHERE lower(email) = lower($1)`
	var (
		id    string
		mail  string
		hash  string
	)
	err := l.db.QueryRowContext(ctx, q, email).Scan(&id, &mail, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("auth user lookup: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	sess, err := l.issueSession(id, mail)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.current = sess
	l.mu.Unlock()

	l.events.publish(ports.AuthEvent{Type: ports.AuthSignedIn, Session: sess})
	return sess, nil
}

// SignUp creates an auth identity and returns its initial session.
func (l *Local) SignUp(ctx context.Context, email, password, name string) (*domain.Session, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	const q = `INSERT INTO auth_users (email, password_hash, name, created_at)
	           VALUES ($1, $2, $3, $4)
	           ON CONFLICT (email) DO NOTHING
	           RETURNING id`
	var id string
	err = l.db.QueryRowContext(ctx, q, email, string(hash), name, time.Now().UTC()).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserExists
	}
	if err != nil {
		return nil, fmt.Errorf("create auth user: %w", err)
	}

	sess, err := l.issueSession(id, email)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.current = sess
	l.mu.Unlock()

	l.events.publish(ports.AuthEvent{Type: ports.AuthSignedIn, Session: sess})
	return sess, nil
}

// SignOut drops the cached session. Local tokens are stateless, so there is
// nothing to revoke upstream.
func (l *Local) SignOut(_ context.Context) error {
	l.mu.Lock()
	l.current = nil
	l.mu.Unlock()

	l.events.publish(ports.AuthEvent{Type: ports.AuthSignedOut})
	return nil
}

// CurrentSession returns the cached session, or nil when there is none or it
// has expired.
func (l *Local) CurrentSession(_ context.Context) (*domain.Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current == nil || l.current.Expired(time.Now().UTC()) {
		return nil, nil
	}
	sess := *l.current
	return &sess, nil
}

// Subscribe registers fn for auth-state changes.
func (l *Local) Subscribe(fn func(ports.AuthEvent)) func() {
	return l.events.subscribe(fn)
}

// UpdatePassword rehashes and stores a new password.
func (l *Local) UpdatePassword(ctx context.Context, userID, newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	const q = `UPDATE auth_users SET password_hash = $2 WHERE id = $1`
	res, err := l.db.ExecContext(ctx, q, userID, string(hash))
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// DeleteUser removes the auth identity row.
func (l *Local) DeleteUser(ctx context.Context, userID string) error {
	const q = `DELETE FROM auth_users WHERE id = $1`
	res, err := l.db.ExecContext(ctx, q, userID)
	if err != nil {
		return fmt.Errorf("delete auth user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (l *Local) issueSession(userID, email string) (*domain.Session, error) {
	expiresAt := time.Now().UTC().Add(l.tokenTTL)
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"exp":   expiresAt.Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(l.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &domain.Session{
		Token:     token,
		UserID:    userID,
		Email:     email,
		ExpiresAt: expiresAt,
	}, nil
}
