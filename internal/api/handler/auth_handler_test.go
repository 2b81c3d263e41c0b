package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clientmax/agency-crm/internal/core/domain"
	"github.com/clientmax/agency-crm/internal/core/ports"
	"github.com/clientmax/agency-crm/internal/core/session"
)

// fakeProvider is an in-memory auth provider shared by the auth and root
// handler tests.
type fakeProvider struct {
	mu      sync.Mutex
	subs    []func(ports.AuthEvent)
	session *domain.Session
	// hold blocks CurrentSession until closed, keeping the store loading.
	hold chan struct{}
}

func (p *fakeProvider) Subscribe(fn func(ports.AuthEvent)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subs = append(p.subs, fn)
	return func() {}
}

func (p *fakeProvider) CurrentSession(ctx context.Context) (*domain.Session, error) {
	if p.hold != nil {
		select {
		case <-p.hold:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session, nil
}

func (p *fakeProvider) SignIn(_ context.Context, email, password string) (*domain.Session, error) {
	if password == "wrong" {
		return nil, domain.ErrInvalidCredentials
	}
	sess := &domain.Session{Token: "tok-" + email, UserID: "u-" + email, Email: email}
	p.emit(ports.AuthEvent{Type: ports.AuthSignedIn, Session: sess})
	return sess, nil
}

func (p *fakeProvider) SignUp(_ context.Context, email, _, _ string) (*domain.Session, error) {
	return &domain.Session{Token: "tok-new", UserID: "u-new", Email: email}, nil
}

func (p *fakeProvider) SignOut(context.Context) error {
	p.emit(ports.AuthEvent{Type: ports.AuthSignedOut})
	return nil
}

func (p *fakeProvider) emit(ev ports.AuthEvent) {
	p.mu.Lock()
	subs := append([]func(ports.AuthEvent){}, p.subs...)
	p.mu.Unlock()
	for _, fn := range subs {
		fn(ev)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not met within deadline")
}

func newEmployeeStore(t *testing.T, p *fakeProvider, profiles map[string]*domain.Employee, link session.Linker) *session.Store[domain.Employee] {
	t.Helper()
	s := session.New(session.Config[domain.Employee]{
		Kind:     domain.IdentityEmployee,
		Provider: p,
		Resolve: func(_ context.Context, id string) (*domain.Employee, error) {
			return profiles[id], nil
		},
		Link: link,
		Log:  zerolog.Nop(),
	})
	t.Cleanup(s.Close)
	return s
}

func newClientStore(t *testing.T, p *fakeProvider, profiles map[string]*domain.Client) *session.Store[domain.Client] {
	t.Helper()
	s := session.New(session.Config[domain.Client]{
		Kind:     domain.IdentityClient,
		Provider: p,
		Resolve: func(_ context.Context, id string) (*domain.Client, error) {
			return profiles[id], nil
		},
		Log: zerolog.Nop(),
	})
	t.Cleanup(s.Close)
	return s
}

func jsonContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_SignIn_Employee(t *testing.T) {
	emp := &fakeProvider{}
	cli := &fakeProvider{}
	profiles := map[string]*domain.Employee{"u-ada@agency.test": {ID: "e1", Role: domain.RoleCEO}}
	employees := newEmployeeStore(t, emp, profiles, nil)
	clients := newClientStore(t, cli, nil)
	h := NewAuthHandler(employees, clients)

	c, rec := jsonContext(t, http.MethodPost, "/auth/login",
		`{"email":"ada@agency.test","password":"pw","user_type":"employee"}`)
	if err := h.SignIn(c); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	waitFor(t, func() bool { return employees.Snapshot().Profile != nil })
	if clients.Snapshot().Authenticated() {
		t.Fatalf("client store must be untouched by an employee sign-in")
	}
}

func TestAuthHandler_SignIn_InvalidCredentials(t *testing.T) {
	employees := newEmployeeStore(t, &fakeProvider{}, nil, nil)
	clients := newClientStore(t, &fakeProvider{}, nil)
	h := NewAuthHandler(employees, clients)

	c, _ := jsonContext(t, http.MethodPost, "/auth/login",
		`{"email":"ada@agency.test","password":"wrong","user_type":"employee"}`)
	err := h.SignIn(c)
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_SignIn_UnknownUserTypeRejected(t *testing.T) {
	employees := newEmployeeStore(t, &fakeProvider{}, nil, nil)
	clients := newClientStore(t, &fakeProvider{}, nil)
	h := NewAuthHandler(employees, clients)

	c, _ := jsonContext(t, http.MethodPost, "/auth/login",
		`{"email":"a@b.test","password":"pw","user_type":"superuser"}`)
	err := h.SignIn(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestAuthHandler_SignUp_ReturnsLinkResult(t *testing.T) {
	link := func(_ context.Context, email, authUserID string) (bool, error) {
		if email != "new@agency.test" || authUserID != "u-new" {
			t.Fatalf("unexpected link args: %s %s", email, authUserID)
		}
		return true, nil
	}
	employees := newEmployeeStore(t, &fakeProvider{}, nil, link)
	clients := newClientStore(t, &fakeProvider{}, nil)
	h := NewAuthHandler(employees, clients)

	c, rec := jsonContext(t, http.MethodPost, "/auth/signup",
		`{"email":"new@agency.test","password":"secret1","name":"New Hire"}`)
	if err := h.SignUp(c); err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["linked"] != true {
		t.Fatalf("expected linked=true, got %+v", resp)
	}
}

func TestAuthHandler_SignUp_ShortPasswordRejected(t *testing.T) {
	employees := newEmployeeStore(t, &fakeProvider{}, nil, nil)
	clients := newClientStore(t, &fakeProvider{}, nil)
	h := NewAuthHandler(employees, clients)

	c, _ := jsonContext(t, http.MethodPost, "/auth/signup",
		`{"email":"new@agency.test","password":"abc","name":"New Hire"}`)
	err := h.SignUp(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestAuthHandler_SignOut_BothIdentities(t *testing.T) {
	emp := &fakeProvider{session: &domain.Session{Token: "t1", UserID: "u1"}}
	cli := &fakeProvider{session: &domain.Session{Token: "t2", UserID: "u2"}}
	employees := newEmployeeStore(t, emp, nil, nil)
	clients := newClientStore(t, cli, nil)
	h := NewAuthHandler(employees, clients)

	waitFor(t, func() bool {
		return employees.Snapshot().Authenticated() && clients.Snapshot().Authenticated()
	})

	c, rec := jsonContext(t, http.MethodPost, "/auth/logout", `{"user_type":"any"}`)
	if err := h.SignOut(c); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	waitFor(t, func() bool {
		return !employees.Snapshot().Authenticated() && !clients.Snapshot().Authenticated()
	})
}

func TestAuthHandler_Session_ReportsBothStores(t *testing.T) {
	emp := &fakeProvider{session: &domain.Session{Token: "t1", UserID: "u1"}}
	profiles := map[string]*domain.Employee{"u1": {ID: "e1", Role: domain.RoleCEO}}
	employees := newEmployeeStore(t, emp, profiles, nil)
	clients := newClientStore(t, &fakeProvider{}, nil)
	h := NewAuthHandler(employees, clients)

	waitFor(t, func() bool {
		return employees.Snapshot().Profile != nil && !clients.Snapshot().Loading
	})

	c, rec := jsonContext(t, http.MethodGet, "/auth/session", "")
	if err := h.Session(c); err != nil {
		t.Fatalf("session: %v", err)
	}

	var resp authStateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !resp.Employee.Authenticated || !resp.Employee.HasProfile {
		t.Fatalf("unexpected employee state: %+v", resp.Employee)
	}
	if resp.Client.Authenticated || resp.Client.Loading {
		t.Fatalf("unexpected client state: %+v", resp.Client)
	}
}
