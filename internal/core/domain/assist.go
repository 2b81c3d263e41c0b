package domain

// AssistType selects the prompt and response shape of an AI assist request.
type AssistType string

const (
	AssistSuggestUpdate      AssistType = "suggest_update"
	AssistGenerateWeekly     AssistType = "generate_weekly"
	AssistAnalyzeOpportunity AssistType = "analyze_opportunity"
)

// Valid reports whether the assist type is one of the supported variants.
func (t AssistType) Valid() bool {
	switch t {
	case AssistSuggestUpdate, AssistGenerateWeekly, AssistAnalyzeOpportunity:
		return true
	}
	return false
}

// UpdateSuggestion is the model's review of a raw employee work update.
type UpdateSuggestion struct {
	IsGrowthOpportunity bool   `json:"isGrowthOpportunity"`
	OpportunityReason   string `json:"opportunityReason,omitempty"`
	RefinedUpdate       string `json:"refinedUpdate"`
	FeedbackNeeded      bool   `json:"feedbackNeeded"`
	FeedbackReason      string `json:"feedbackReason,omitempty"`
}

// WeeklySummary is the generated client-facing week recap.
type WeeklySummary struct {
	Summary             string   `json:"summary"`
	Highlights          []string `json:"highlights"`
	GrowthOpportunities []string `json:"growthOpportunities"`
	NextWeekFocus       []string `json:"nextWeekFocus"`
}

// OpportunityAnalysis is the model's assessment of a growth opportunity.
type OpportunityAnalysis struct {
	Assessment      string   `json:"assessment"`
	Potential       string   `json:"potential"`
	NextSteps       []string `json:"nextSteps"`
	EstimatedImpact string   `json:"estimatedImpact"`
}
