package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clientmax/agency-crm/internal/core/domain"
	"github.com/clientmax/agency-crm/internal/core/ports"
	"github.com/clientmax/agency-crm/internal/core/service"
)

type fakeSender struct {
	sent []ports.EmailMessage
	err  error
}

func (s *fakeSender) Send(_ context.Context, msg ports.EmailMessage) error {
	s.sent = append(s.sent, msg)
	return s.err
}

type fakeEmailLog struct {
	entries []domain.EmailLogEntry
}

func (l *fakeEmailLog) Insert(_ context.Context, entry domain.EmailLogEntry) error {
	l.entries = append(l.entries, entry)
	return nil
}

func TestAlertMailHandler_Send(t *testing.T) {
	sender := &fakeSender{}
	audit := &fakeEmailLog{}
	h := NewAlertMailHandler(service.NewAlertMailService(sender, audit, zerolog.Nop()))

	c, rec := jsonContext(t, http.MethodPost, "/alerts/email",
		`{"notification_type":"feedback_alert","recipient_email":"ceo@agency.test","threshold_type":"feedback_score","threshold_value":6,"actual_value":4,"client_name":"Acme Corp"}`)
	if err := h.Send(c); err != nil {
		t.Fatalf("send: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(sender.sent))
	}
	msg := sender.sent[0]
	if msg.Subject != "Low Client Feedback Score Alert - Acme Corp" {
		t.Fatalf("unexpected subject: %q", msg.Subject)
	}
	if !strings.Contains(msg.HTML, "Acme Corp") {
		t.Fatalf("body must mention the client")
	}
	if len(audit.entries) != 1 || audit.entries[0].Status != "sent" {
		t.Fatalf("unexpected audit trail: %+v", audit.entries)
	}
}

func TestAlertMailHandler_UnknownTypeRejected(t *testing.T) {
	sender := &fakeSender{}
	h := NewAlertMailHandler(service.NewAlertMailService(sender, &fakeEmailLog{}, zerolog.Nop()))

	c, _ := jsonContext(t, http.MethodPost, "/alerts/email",
		`{"notification_type":"birthday","recipient_email":"ceo@agency.test","threshold_type":"x"}`)
	err := h.Send(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("nothing may be sent on a rejected request")
	}
}

func TestAlertMailHandler_SendFailurePropagates(t *testing.T) {
	sender := &fakeSender{err: domain.ErrUpstream}
	audit := &fakeEmailLog{}
	h := NewAlertMailHandler(service.NewAlertMailService(sender, audit, zerolog.Nop()))

	c, _ := jsonContext(t, http.MethodPost, "/alerts/email",
		`{"notification_type":"critical_alert","recipient_email":"ceo@agency.test","threshold_type":"inventory"}`)
	if err := h.Send(c); !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if len(audit.entries) != 1 || audit.entries[0].Status != "failed" {
		t.Fatalf("failed send must still be audited: %+v", audit.entries)
	}
}
