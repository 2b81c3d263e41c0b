package routing

import (
	"testing"
	"time"
)

func TestDispatchRoot_Loading(t *testing.T) {
	d := DispatchRoot(AuthState{Loading: true})
	if d.State != RootLoading {
		t.Fatalf("expected loading, got %s", d.State)
	}
}

func TestDispatchRoot_CEORendersDashboard(t *testing.T) {
	d := DispatchRoot(AuthState{EmployeeAuthed: true, Employee: ceo()})
	if d.State != RootDashboard {
		t.Fatalf("expected dashboard, got %s", d.State)
	}
	if d.Target != "" {
		t.Fatalf("dashboard is rendered in place, got redirect to %q", d.Target)
	}
}

func TestDispatchRoot_NonCEORestricted(t *testing.T) {
	d := DispatchRoot(AuthState{EmployeeAuthed: true, Employee: manager()})
	if d.State != RootRestricted {
		t.Fatalf("expected restricted, got %s", d.State)
	}
	if d.Target != LoginPath || d.Reason != ReasonRestricted {
		t.Fatalf("expected %s with reason %q, got %+v", LoginPath, ReasonRestricted, d)
	}
}

func TestDispatchRoot_ClientRedirectsToPortal(t *testing.T) {
	d := DispatchRoot(AuthState{ClientAuthed: true, Client: clientProfile()})
	if d.State != RootClientPortal || d.Target != PortalRoot {
		t.Fatalf("expected portal redirect, got %+v", d)
	}
}

func TestDispatchRoot_OrphanedAccount(t *testing.T) {
	// Token on one identity but no profile on either side.
	d := DispatchRoot(AuthState{EmployeeAuthed: true})
	if d.State != RootOrphaned {
		t.Fatalf("expected orphaned, got %s", d.State)
	}
	if d.Target != "" {
		t.Fatalf("orphaned is terminal, not a redirect: %+v", d)
	}
}

func TestDispatchRoot_Unauthenticated(t *testing.T) {
	d := DispatchRoot(AuthState{})
	if d.State != RootLogin || d.Target != LoginPath {
		t.Fatalf("expected login redirect, got %+v", d)
	}
}

func TestDispatchRoot_EmployeeWinsTieBreak(t *testing.T) {
	state := AuthState{
		EmployeeAuthed: true,
		Employee:       ceo(),
		ClientAuthed:   true,
		Client:         clientProfile(),
	}
	d := DispatchRoot(state)
	if d.State != RootDashboard {
		t.Fatalf("employee identity should win the tie-break, got %s", d.State)
	}
}

func TestShowWakeAdvisory(t *testing.T) {
	if ShowWakeAdvisory(4 * time.Second) {
		t.Fatalf("advisory should not show before %s", WakeAdvisoryAfter)
	}
	if !ShowWakeAdvisory(5 * time.Second) {
		t.Fatalf("advisory should show at %s", WakeAdvisoryAfter)
	}
}
