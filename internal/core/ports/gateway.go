package ports

import "context"

// AIGateway is the LLM completion endpoint behind the assist service.
// Implementations map upstream 429 to domain.ErrRateLimited and 402 to
// domain.ErrQuotaExhausted.
type AIGateway interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// EmailMessage is a single rendered outbound email.
type EmailMessage struct {
	To      string
	ToName  string
	Subject string
	HTML    string
}

// EmailSender dispatches a rendered email through the hosted email provider.
// Sends are single-shot: no retry on failure.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}
