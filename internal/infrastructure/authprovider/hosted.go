// Package authprovider implements the auth-provider port twice: Hosted talks
// to the external GoTrue-style auth service, Local issues tokens from the
// domain database for self-hosted deployments.
package authprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/clientmax/agency-crm/internal/core/domain"
	"github.com/clientmax/agency-crm/internal/core/ports"
)

// Hosted is the GoTrue-style REST auth provider. The service holds at most
// one live session per identity store; Hosted caches it in memory and pushes
// changes to subscribers.
type Hosted struct {
	httpClient *http.Client
	baseURL    string
	serviceKey string
	cb         *gobreaker.CircuitBreaker
	log        zerolog.Logger
	events     *broadcaster

	mu      sync.Mutex
	current *domain.Session
}

// NewHosted creates a Hosted provider for the auth service at baseURL.
// serviceKey authorizes the admin surface.
func NewHosted(httpClient *http.Client, baseURL, serviceKey string, log zerolog.Logger) *Hosted {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Hosted{
		httpClient: httpClient,
		baseURL:    baseURL,
		serviceKey: serviceKey,
		cb:         newBreaker("auth-provider", log),
		log:        log,
		events:     newBroadcaster(),
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	User        struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

func (h *Hosted) session(tr tokenResponse) *domain.Session {
	sess := &domain.Session{
		Token:  tr.AccessToken,
		UserID: tr.User.ID,
		Email:  tr.User.Email,
	}
	if tr.ExpiresIn > 0 {
		sess.ExpiresAt = time.Now().UTC().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}
	return sess
}

// SignIn exchanges credentials for a session via the password grant.
func (h *Hosted) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	body, err := h.do(ctx, http.MethodPost, "/token?grant_type=password",
		map[string]string{"email": email, "password": password}, "")
	if err != nil {
		return nil, err
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	sess := h.session(tr)

	h.mu.Lock()
	h.current = sess
	h.mu.Unlock()

	h.events.publish(ports.AuthEvent{Type: ports.AuthSignedIn, Session: sess})
	return sess, nil
}

// SignUp registers a new auth identity and returns its initial session.
func (h *Hosted) SignUp(ctx context.Context, email, password, name string) (*domain.Session, error) {
	payload := map[string]any{
		"email":    email,
		"password": password,
		"data":     map[string]string{"name": name},
	}
	body, err := h.do(ctx, http.MethodPost, "/signup", payload, "")
	if err != nil {
		return nil, err
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("decode signup response: %w", err)
	}
	sess := h.session(tr)

	h.mu.Lock()
	h.current = sess
	h.mu.Unlock()

	h.events.publish(ports.AuthEvent{Type: ports.AuthSignedIn, Session: sess})
	return sess, nil
}

// SignOut revokes the current session. The local state resets even when the
// upstream call fails: a dead token must never keep a user signed in.
func (h *Hosted) SignOut(ctx context.Context) error {
	h.mu.Lock()
	sess := h.current
	h.current = nil
	h.mu.Unlock()

	h.events.publish(ports.AuthEvent{Type: ports.AuthSignedOut})

	if sess == nil {
		return nil
	}
	if _, err := h.do(ctx, http.MethodPost, "/logout", nil, sess.Token); err != nil {
		h.log.Warn().Err(err).Msg("upstream logout failed")
	}
	return nil
}

// CurrentSession returns the cached session, or nil when there is none or it
// has expired.
func (h *Hosted) CurrentSession(_ context.Context) (*domain.Session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.current == nil || h.current.Expired(time.Now().UTC()) {
		return nil, nil
	}
	sess := *h.current
	return &sess, nil
}

// Subscribe registers fn for auth-state changes.
func (h *Hosted) Subscribe(fn func(ports.AuthEvent)) func() {
	return h.events.subscribe(fn)
}

// UpdatePassword sets a new password through the admin surface.
func (h *Hosted) UpdatePassword(ctx context.Context, userID, newPassword string) error {
	_, err := h.do(ctx, http.MethodPut, "/admin/users/"+userID,
		map[string]string{"password": newPassword}, h.serviceKey)
	return err
}

// DeleteUser removes the auth identity through the admin surface.
func (h *Hosted) DeleteUser(ctx context.Context, userID string) error {
	_, err := h.do(ctx, http.MethodDelete, "/admin/users/"+userID, nil, h.serviceKey)
	return err
}

// do executes one request behind the circuit breaker and maps upstream
// status codes to domain errors.
func (h *Hosted) do(ctx context.Context, method, path string, payload any, bearer string) ([]byte, error) {
	out, err := h.cb.Execute(func() (any, error) {
		var reqBody io.Reader
		if payload != nil {
			raw, err := json.Marshal(payload)
			if err != nil {
				return nil, err
			}
			reqBody = bytes.NewReader(raw)
		}

		req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, reqBody)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		if bearer != "" {
			req.Header.Set("Authorization", "Bearer "+bearer)
		}

		resp, err := h.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return body, nil
		case resp.StatusCode == http.StatusBadRequest, resp.StatusCode == http.StatusUnauthorized:
			return nil, domain.ErrInvalidCredentials
		case resp.StatusCode == http.StatusNotFound:
			return nil, domain.ErrUserNotFound
		case resp.StatusCode == http.StatusUnprocessableEntity, resp.StatusCode == http.StatusConflict:
			return nil, domain.ErrUserExists
		default:
			h.log.Warn().
				Int("status", resp.StatusCode).
				Str("path", path).
				Str("body", string(body)).
				Msg("auth provider non-2xx response")
			return nil, fmt.Errorf("%w: auth provider status %d", domain.ErrUpstream, resp.StatusCode)
		}
	})
	if err != nil {
		return nil, err
	}
	body, _ := out.([]byte)
	return body, nil
}
