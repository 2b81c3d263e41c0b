package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/clientmax/agency-crm/internal/core/domain"
	"github.com/clientmax/agency-crm/internal/core/ports"
)

// EmailClient sends transactional email through a Resend-style HTTP API.
// Sends are single-shot: the caller audits failures, it never retries.
type EmailClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	from       string
	log        zerolog.Logger
}

// NewEmailClient creates an EmailClient sending from the given address.
func NewEmailClient(httpClient *http.Client, baseURL, apiKey, from string, log zerolog.Logger) *EmailClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &EmailClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		from:       from,
		log:        log,
	}
}

type emailPayload struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Send dispatches one rendered email.
func (c *EmailClient) Send(ctx context.Context, msg ports.EmailMessage) error {
	to := msg.To
	if msg.ToName != "" {
		to = fmt.Sprintf("%s <%s>", msg.ToName, msg.To)
	}

	raw, err := json.Marshal(emailPayload{
		From:    c.from,
		To:      []string{to},
		Subject: msg.Subject,
		HTML:    msg.HTML,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("email send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		c.log.Warn().
			Int("status", resp.StatusCode).
			Str("body", string(body)).
			Msg("email provider non-2xx response")
		return fmt.Errorf("%w: email provider status %d", domain.ErrUpstream, resp.StatusCode)
	}
	return nil
}
