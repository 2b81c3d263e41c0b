package domain

// HealthStatus is the coarse account health bucket shown on the dashboard.
type HealthStatus string

const (
	HealthExcellent HealthStatus = "excellent"
	HealthGood      HealthStatus = "good"
	HealthWarning   HealthStatus = "warning"
	HealthCritical  HealthStatus = "critical"
)

// Client is the domain profile linked to a client-side auth identity.
type Client struct {
	ID           string       `json:"id"`
	CompanyName  string       `json:"company_name"`
	ContactName  string       `json:"contact_name"`
	Email        string       `json:"email"`
	ClientType   string       `json:"client_type"`
	HealthScore  float64      `json:"health_score"`
	HealthStatus HealthStatus `json:"health_status"`
}
