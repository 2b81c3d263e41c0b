package routing

import (
	"github.com/clientmax/agency-crm/internal/core/domain"
)

// UserType restricts a guarded route to one identity kind.
type UserType string

const (
	UserTypeEmployee UserType = "employee"
	UserTypeClient   UserType = "client"
	UserTypeAny      UserType = "any"
)

// Valid reports whether the value is one of the three accepted literals.
// The guard fails fast on anything else instead of silently rendering.
func (u UserType) Valid() bool {
	return u == UserTypeEmployee || u == UserTypeClient || u == UserTypeAny
}

// AuthState is the combined view of both session stores at decision time.
type AuthState struct {
	// Loading is true while either store has not reached a terminal
	// resolution yet. No redirect may be issued in this state.
	Loading bool

	EmployeeAuthed bool
	Employee       *domain.Employee

	ClientAuthed bool
	Client       *domain.Client
}

// Authenticated reports whether a session token is present on either identity.
func (s AuthState) Authenticated() bool {
	return s.EmployeeAuthed || s.ClientAuthed
}

// Outcome is the kind of decision a guard evaluation produces.
type Outcome int

const (
	// OutcomeRender lets the requested page through.
	OutcomeRender Outcome = iota
	// OutcomeLoading defers the decision until both identities resolve,
	// avoiding a flash redirect before state is known.
	OutcomeLoading
	// OutcomeRedirect sends the user elsewhere; Target, From and Reason
	// carry the redirect metadata.
	OutcomeRedirect
	// OutcomeError marks a misconfigured guard (unknown user type).
	OutcomeError
)

const (
	// ReasonRestricted flags a redirect caused by the owner-only policy on
	// employee-side pages.
	ReasonRestricted = "CEO only"
)

// Decision is the guard's verdict for one navigation.
type Decision struct {
	Outcome Outcome
	// Target is the redirect destination when Outcome is OutcomeRedirect.
	Target string
	// From carries the originally attempted path so login can return there.
	From string
	// Reason is a human-readable restriction note, e.g. ReasonRestricted.
	Reason string
}

func render() Decision            { return Decision{Outcome: OutcomeRender} }
func loading() Decision           { return Decision{Outcome: OutcomeLoading} }
func redirect(target string) Decision {
	return Decision{Outcome: OutcomeRedirect, Target: target}
}

// Guard decides whether the given path may render for the current auth state.
//
// The checks run in a fixed order: loading defers everything; missing
// authentication bounces to login with the attempted path attached; an
// employee-only page hit without an employee profile bounces to the client
// portal; an employee profile without the privileged role bounces to login
// with a restriction reason; a client-only page without a client profile
// bounces to the application root.
func Guard(path string, requireAuth bool, userType UserType, state AuthState) Decision {
	if !userType.Valid() {
		return Decision{Outcome: OutcomeError, Reason: "unknown user type: " + string(userType)}
	}

	if state.Loading {
		return loading()
	}

	if requireAuth && !state.Authenticated() {
		return Decision{Outcome: OutcomeRedirect, Target: LoginPath, From: path}
	}

	if requireAuth && state.Authenticated() && userType != UserTypeAny {
		switch userType {
		case UserTypeEmployee:
			if state.Employee == nil {
				// An employee-only page reached by a client identity.
				return redirect(PortalRoot)
			}
			if !state.Employee.Role.IsPrivileged() {
				return Decision{
					Outcome: OutcomeRedirect,
					Target:  LoginPath,
					From:    path,
					Reason:  ReasonRestricted,
				}
			}
		case UserTypeClient:
			if state.Client == nil {
				return redirect(RootPath)
			}
		}
	}

	return render()
}

// ValidateReturnPath checks a post-login redirect target against the
// authenticated identity's allowed path space, so a client is never bounced
// back into an employee-only deep link or vice versa. It returns the fallback
// root for that identity when the target is out of bounds.
func ValidateReturnPath(from string, kind domain.IdentityKind) string {
	switch kind {
	case domain.IdentityEmployee:
		if from != "" && IsEmployeeAllowedFromPath(from) {
			return from
		}
		return RootPath
	case domain.IdentityClient:
		if from != "" && IsClientAllowedFromPath(from) {
			return from
		}
		return PortalRoot
	}
	return RootPath
}
