package domain

import "fmt"

// Role is the employee role. Employee-side pages are gated on the single
// privileged RoleCEO variant; every other role is treated uniformly.
type Role string

const (
	RoleCEO      Role = "CEO"
	RoleManager  Role = "Manager"
	RoleTeamLead Role = "Team Lead"
	RoleEmployee Role = "Employee"
)

// ParseRole validates a role string read from storage or a token claim.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleCEO, RoleManager, RoleTeamLead, RoleEmployee:
		return Role(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// IsPrivileged reports whether the role grants access to employee-side pages.
func (r Role) IsPrivileged() bool {
	return r == RoleCEO
}

// Employee is the domain profile linked to an employee-side auth identity.
type Employee struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       Role   `json:"role"`
	TeamLeadID string `json:"team_lead_id,omitempty"`
}
