// Package gateway holds the thin HTTP clients for external SaaS surfaces:
// the LLM completion API and the transactional email API.
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
	"github.com/sony/gobreaker"

	"github.com/clientmax/agency-crm/internal/core/domain"
)

// AIClient calls an OpenAI-style chat-completions endpoint.
type AIClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	cb         *gobreaker.CircuitBreaker
	log        zerolog.Logger
}

// NewAIClient creates an AIClient. baseURL is the API root (no trailing
// /chat/completions).
func NewAIClient(httpClient *http.Client, baseURL, apiKey, model string, log zerolog.Logger) *AIClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &AIClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "ai-gateway",
			MaxRequests: 3,
			Interval:    10 * time.Second,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn().
					Str("breaker", name).
					Str("from", from.String()).
					Str("to", to.String()).
					Msg("circuit breaker state change")
			},
		}),
		log: log,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete sends the prompt pair and returns the model's raw text answer.
// Upstream 429 maps to domain.ErrRateLimited and 402 to
// domain.ErrQuotaExhausted so handlers can answer with matching statuses.
func (c *AIClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.7,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	out, err := c.cb.Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.baseURL+"/chat/completions", bytes.NewReader(raw))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		switch resp.StatusCode {
		case http.StatusOK:
			return body, nil
		case http.StatusTooManyRequests:
			return nil, domain.ErrRateLimited
		case http.StatusPaymentRequired:
			return nil, domain.ErrQuotaExhausted
		default:
			c.log.Warn().
				Int("status", resp.StatusCode).
				Str("body", string(body)).
				Msg("ai gateway non-2xx response")
			return nil, fmt.Errorf("%w: ai gateway status %d", domain.ErrUpstream, resp.StatusCode)
		}
	})
	if err != nil {
		return "", err
	}

	var cr chatResponse
	if err := json.Unmarshal(out.([]byte), &cr); err != nil {
		return "", fmt.Errorf("decode completion: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("%w: completion had no choices", domain.ErrUpstream)
	}
	return cr.Choices[0].Message.Content, nil
}
