package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/clientmax/agency-crm/internal/core/domain"
	"github.com/clientmax/agency-crm/internal/core/ports"
)

// AssistRequest is one AI text-assist invocation.
type AssistRequest struct {
	Type       domain.AssistType
	Content    string
	ClientType string
	Context    map[string]any
}

// AssistResult carries exactly one non-nil payload, matching Request.Type.
type AssistResult struct {
	Suggestion  *domain.UpdateSuggestion   `json:"suggestion,omitempty"`
	Weekly      *domain.WeeklySummary      `json:"weekly,omitempty"`
	Opportunity *domain.OpportunityAnalysis `json:"opportunity,omitempty"`
}

const suggestUpdatePrompt = `You are an AI assistant for an Amazon agency. Analyze employee work updates and:
1. Suggest if this could be a growth opportunity for the client
2. Provide a refined version of the update that's client-friendly
3. Flag if feedback from the client might be needed

Keep responses concise and actionable. Format as JSON:
{
  "isGrowthOpportunity": boolean,
  "opportunityReason": "string or null",
  "refinedUpdate": "string",
  "feedbackNeeded": boolean,
  "feedbackReason": "string or null"
}`

const generateWeeklyPrompt = `You are an AI assistant creating weekly summaries for Amazon agency clients. Generate a professional, engaging summary that:
1. Highlights key accomplishments
2. Notes any growth opportunities identified
3. Outlines next week's focus areas

Keep the tone professional but friendly. Format as JSON:
{
  "summary": "string",
  "highlights": ["string array of 3-5 key points"],
  "growthOpportunities": ["string array"],
  "nextWeekFocus": ["string array of 2-3 items"]
}`

const analyzeOpportunityPrompt = `You are an AI assistant for an Amazon agency analyzing potential growth opportunities. Provide:
1. Assessment of the opportunity's potential
2. Recommended next steps
3. Estimated impact

Format as JSON:
{
  "assessment": "string",
  "potential": "high" | "medium" | "low",
  "nextSteps": ["string array"],
  "estimatedImpact": "string"
}`

// AssistService builds the per-type prompt, calls the LLM gateway, and
// parses the model's JSON answer into the typed result.
type AssistService struct {
	gateway ports.AIGateway
	log     zerolog.Logger
}

func NewAssistService(gateway ports.AIGateway, log zerolog.Logger) *AssistService {
	return &AssistService{gateway: gateway, log: log}
}

func (s *AssistService) Assist(ctx context.Context, req AssistRequest) (*AssistResult, error) {
	if !req.Type.Valid() {
		return nil, fmt.Errorf("%w: assist type %q", domain.ErrInvalidAction, req.Type)
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("%w: empty content", domain.ErrInvalidAction)
	}

	system, user := s.prompts(req)

	raw, err := s.gateway.Complete(ctx, system, user)
	if err != nil {
		return nil, err
	}
	payload := extractJSON(raw)

	result := &AssistResult{}
	switch req.Type {
	case domain.AssistSuggestUpdate:
		var out domain.UpdateSuggestion
		if err := json.Unmarshal([]byte(payload), &out); err != nil {
			return nil, fmt.Errorf("decode suggestion: %w", err)
		}
		result.Suggestion = &out
	case domain.AssistGenerateWeekly:
		var out domain.WeeklySummary
		if err := json.Unmarshal([]byte(payload), &out); err != nil {
			return nil, fmt.Errorf("decode weekly summary: %w", err)
		}
		result.Weekly = &out
	case domain.AssistAnalyzeOpportunity:
		var out domain.OpportunityAnalysis
		if err := json.Unmarshal([]byte(payload), &out); err != nil {
			return nil, fmt.Errorf("decode opportunity analysis: %w", err)
		}
		result.Opportunity = &out
	}

	s.log.Info().Str("type", string(req.Type)).Msg("assist request completed")
	return result, nil
}

func (s *AssistService) prompts(req AssistRequest) (system, user string) {
	clientType := req.ClientType
	if clientType == "" {
		clientType = "general"
	}

	switch req.Type {
	case domain.AssistSuggestUpdate:
		system = suggestUpdatePrompt
		user = fmt.Sprintf("Client type: %s\nWork update: %s", clientType, req.Content)
		if len(req.Context) > 0 {
			extra, _ := json.Marshal(req.Context)
			user += fmt.Sprintf("\nAdditional context: %s", extra)
		}
	case domain.AssistGenerateWeekly:
		system = generateWeeklyPrompt
		user = fmt.Sprintf("Client type: %s\nDaily updates this week:\n%s", clientType, req.Content)
	case domain.AssistAnalyzeOpportunity:
		system = analyzeOpportunityPrompt
		user = fmt.Sprintf("Client type: %s\nOpportunity: %s", clientType, req.Content)
	}
	return system, user
}

// extractJSON strips markdown code fences some models wrap around JSON.
func extractJSON(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		if i := strings.LastIndex(trimmed, "```"); i >= 0 {
			trimmed = trimmed[:i]
		}
		trimmed = strings.TrimSpace(trimmed)
	}
	return trimmed
}
