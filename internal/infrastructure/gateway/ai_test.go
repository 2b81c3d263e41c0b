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
)

func completionServer(t *testing.T, status int, reply string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing bearer auth, got %q", r.Header.Get("Authorization"))
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Role != "user" {
			t.Errorf("expected system+user message pair, got %+v", req.Messages)
		}

		w.WriteHeader(status)
		if reply != "" {
			_, _ = w.Write([]byte(reply))
		}
	}))
}

func TestCompleteReturnsModelText(t *testing.T) {
	srv := completionServer(t, http.StatusOK,
		`{"choices":[{"message":{"role":"assistant","content":"{\"summary\":\"ok\"}"}}]}`)
	defer srv.Close()

	c := NewAIClient(srv.Client(), srv.URL, "test-key", "test-model", zerolog.Nop())
	got, err := c.Complete(context.Background(), "system prompt", "user prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"summary":"ok"}` {
		t.Errorf("unexpected content %q", got)
	}
}

func TestCompleteMapsRateLimit(t *testing.T) {
	srv := completionServer(t, http.StatusTooManyRequests, "")
	defer srv.Close()

	c := NewAIClient(srv.Client(), srv.URL, "test-key", "test-model", zerolog.Nop())
	_, err := c.Complete(context.Background(), "s", "u")
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestCompleteMapsQuotaExhausted(t *testing.T) {
	srv := completionServer(t, http.StatusPaymentRequired, "")
	defer srv.Close()

	c := NewAIClient(srv.Client(), srv.URL, "test-key", "test-model", zerolog.Nop())
	_, err := c.Complete(context.Background(), "s", "u")
	if !errors.Is(err, domain.ErrQuotaExhausted) {
		t.Fatalf("expected ErrQuotaExhausted, got %v", err)
	}
}

func TestCompleteMapsOtherUpstreamErrors(t *testing.T) {
	srv := completionServer(t, http.StatusBadGateway, "")
	defer srv.Close()

	c := NewAIClient(srv.Client(), srv.URL, "test-key", "test-model", zerolog.Nop())
	_, err := c.Complete(context.Background(), "s", "u")
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestCompleteEmptyChoices(t *testing.T) {
	srv := completionServer(t, http.StatusOK, `{"choices":[]}`)
	defer srv.Close()

	c := NewAIClient(srv.Client(), srv.URL, "test-key", "test-model", zerolog.Nop())
	_, err := c.Complete(context.Background(), "s", "u")
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream for empty choices, got %v", err)
	}
}
