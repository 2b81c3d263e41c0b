package domain

import "time"

// TeamLead aggregates per-team utilization reported by team leads.
// Utilization is a percentage in [0,100].
type TeamLead struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Department  string    `json:"department"`
	Email       string    `json:"email"`
	TeamSize    int       `json:"team_size"`
	Utilization float64   `json:"utilization"`
	LastUpdated time.Time `json:"last_updated"`
}

// ClientFeedback is a single 1-10 satisfaction score submitted by a client.
type ClientFeedback struct {
	ID          string    `json:"id"`
	ClientID    string    `json:"client_id"`
	ClientName  string    `json:"client_name"`
	Score       float64   `json:"score"`
	Comment     string    `json:"comment,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}
