package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/clientmax/agency-crm/internal/core/domain"
	"github.com/clientmax/agency-crm/internal/core/ports"
)

func TestEmailSend(t *testing.T) {
	var got emailPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/emails" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("bad payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"msg-1"}`))
	}))
	defer srv.Close()

	c := NewEmailClient(srv.Client(), srv.URL, "key", "alerts@agency-crm.app", zerolog.Nop())
	err := c.Send(context.Background(), ports.EmailMessage{
		To:      "ceo@agency.test",
		ToName:  "The CEO",
		Subject: "subject",
		HTML:    "<p>hi</p>",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.From != "alerts@agency-crm.app" {
		t.Errorf("from = %q", got.From)
	}
	if len(got.To) != 1 || got.To[0] != "The CEO <ceo@agency.test>" {
		t.Errorf("to = %v", got.To)
	}
	if got.Subject != "subject" || got.HTML != "<p>hi</p>" {
		t.Errorf("payload = %+v", got)
	}
}

func TestEmailSendUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewEmailClient(srv.Client(), srv.URL, "key", "alerts@agency-crm.app", zerolog.Nop())
	err := c.Send(context.Background(), ports.EmailMessage{To: "x@y.z", Subject: "s", HTML: "h"})
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}
