package routing

import "time"

// WakeAdvisoryAfter is how long the root may sit in the loading state before
// the "service waking up" advisory is added to the response. Cold starts on
// the hosting tier can take up to 30 seconds.
const WakeAdvisoryAfter = 5 * time.Second

// RootState is the single outcome the root dispatcher selects.
type RootState int

const (
	// RootLoading: at least one session store has not resolved yet.
	RootLoading RootState = iota
	// RootDashboard: employee profile with the privileged role — render the
	// internal dashboard in place, the one non-redirect success state.
	RootDashboard
	// RootRestricted: employee profile without the privileged role —
	// redirect to login carrying the restriction reason.
	RootRestricted
	// RootClientPortal: client profile resolved — redirect to the portal.
	RootClientPortal
	// RootOrphaned: a token exists on at least one identity but neither
	// profile resolved. Terminal error state, requires admin action.
	RootOrphaned
	// RootLogin: no token on either identity.
	RootLogin
)

func (s RootState) String() string {
	switch s {
	case RootLoading:
		return "loading"
	case RootDashboard:
		return "dashboard"
	case RootRestricted:
		return "restricted"
	case RootClientPortal:
		return "client_portal"
	case RootOrphaned:
		return "orphaned_account"
	case RootLogin:
		return "login"
	}
	return "unknown"
}

// RootDecision is the dispatcher verdict plus redirect metadata.
type RootDecision struct {
	State  RootState
	Target string
	Reason string
}

// DispatchRoot chooses exactly one outcome for the application root.
//
// Employee identity is checked before client identity: the two should never
// co-occur for one user, but when they do the employee side wins and the
// dispatcher must still produce a defined answer.
func DispatchRoot(state AuthState) RootDecision {
	if state.Loading {
		return RootDecision{State: RootLoading}
	}

	if state.Employee != nil {
		if state.Employee.Role.IsPrivileged() {
			return RootDecision{State: RootDashboard}
		}
		return RootDecision{
			State:  RootRestricted,
			Target: LoginPath,
			Reason: ReasonRestricted,
		}
	}

	if state.Client != nil {
		return RootDecision{State: RootClientPortal, Target: PortalRoot}
	}

	if state.Authenticated() {
		// Token present but no linked Employee or Client row: the account
		// was created without a matching domain record.
		return RootDecision{State: RootOrphaned}
	}

	return RootDecision{State: RootLogin, Target: LoginPath}
}

// ShowWakeAdvisory reports whether the loading UI should include the
// cold-start advisory, given how long loading has been in progress.
func ShowWakeAdvisory(loadingFor time.Duration) bool {
	return loadingFor >= WakeAdvisoryAfter
}
