package authprovider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/clientmax/agency-crm/internal/core/domain"
	"github.com/clientmax/agency-crm/internal/core/ports"
)

func authServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"access_token": "tok-1",
			"expires_in": 3600,
			"user": {"id": "user-1", "email": "ceo@agency.test"}
		}`))
	})
	mux.HandleFunc("POST /signup", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"access_token": "tok-2",
			"expires_in": 3600,
			"user": {"id": "user-2", "email": "new@agency.test"}
		}`))
	})
	mux.HandleFunc("POST /logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("PUT /admin/users/user-1", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer service-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	})
	mux.HandleFunc("DELETE /admin/users/user-1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	})
	return httptest.NewServer(mux)
}

func TestHostedSignInPublishesEvent(t *testing.T) {
	srv := authServer(t)
	defer srv.Close()

	p := NewHosted(srv.Client(), srv.URL, "service-key", zerolog.Nop())

	var events []ports.AuthEvent
	unsub := p.Subscribe(func(ev ports.AuthEvent) { events = append(events, ev) })
	defer unsub()

	sess, err := p.SignIn(context.Background(), "ceo@agency.test", "secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.Token != "tok-1" || sess.UserID != "user-1" {
		t.Errorf("unexpected session %+v", sess)
	}
	if sess.ExpiresAt.IsZero() {
		t.Error("expiry not set from expires_in")
	}

	if len(events) != 1 || events[0].Type != ports.AuthSignedIn {
		t.Fatalf("expected one signed_in event, got %v", events)
	}
	if events[0].Session == nil || events[0].Session.UserID != "user-1" {
		t.Errorf("event session missing: %+v", events[0])
	}

	current, err := p.CurrentSession(context.Background())
	if err != nil || current == nil || current.Token != "tok-1" {
		t.Errorf("current session = %+v, err = %v", current, err)
	}
}

func TestHostedSignOutResetsEvenWhenUpstreamFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/logout" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{
			"access_token": "tok-1", "expires_in": 3600,
			"user": {"id": "user-1", "email": "a@b.c"}
		}`))
	}))
	defer srv.Close()

	p := NewHosted(srv.Client(), srv.URL, "k", zerolog.Nop())
	if _, err := p.SignIn(context.Background(), "a@b.c", "pw"); err != nil {
		t.Fatalf("sign in: %v", err)
	}

	var events []ports.AuthEvent
	unsub := p.Subscribe(func(ev ports.AuthEvent) { events = append(events, ev) })
	defer unsub()

	if err := p.SignOut(context.Background()); err != nil {
		t.Fatalf("sign out must not fail on upstream error, got %v", err)
	}
	if current, _ := p.CurrentSession(context.Background()); current != nil {
		t.Error("session must be cleared after sign out")
	}
	if len(events) != 1 || events[0].Type != ports.AuthSignedOut {
		t.Errorf("expected signed_out event, got %v", events)
	}
}

func TestHostedMapsCredentialErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	p := NewHosted(srv.Client(), srv.URL, "k", zerolog.Nop())
	_, err := p.SignIn(context.Background(), "a@b.c", "wrong")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestHostedAdminSurface(t *testing.T) {
	srv := authServer(t)
	defer srv.Close()

	p := NewHosted(srv.Client(), srv.URL, "service-key", zerolog.Nop())
	if err := p.UpdatePassword(context.Background(), "user-1", "newpassword"); err != nil {
		t.Errorf("update password: %v", err)
	}
	if err := p.DeleteUser(context.Background(), "user-1"); err != nil {
		t.Errorf("delete user: %v", err)
	}
}

func TestBroadcasterUnsubscribe(t *testing.T) {
	b := newBroadcaster()

	var a, c int
	unsubA := b.subscribe(func(ports.AuthEvent) { a++ })
	b.subscribe(func(ports.AuthEvent) { c++ })

	b.publish(ports.AuthEvent{Type: ports.AuthSignedIn})
	unsubA()
	b.publish(ports.AuthEvent{Type: ports.AuthSignedOut})

	if a != 1 {
		t.Errorf("unsubscribed callback ran %d times, want 1", a)
	}
	if c != 2 {
		t.Errorf("remaining callback ran %d times, want 2", c)
	}
}
