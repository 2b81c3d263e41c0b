package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/clientmax/agency-crm/internal/core/domain"
	"github.com/clientmax/agency-crm/internal/core/routing"
)

func ceoState() routing.AuthState {
	return routing.AuthState{
		EmployeeAuthed: true,
		Employee:       &domain.Employee{ID: "e1", Role: domain.RoleCEO},
	}
}

func runGuard(t *testing.T, path string, requireAuth bool, userType routing.UserType, state routing.AuthState) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	mw := Guard(requireAuth, userType, func() routing.AuthState { return state })
	handler := mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, called
}

func TestGuardRendersForPrivilegedEmployee(t *testing.T) {
	rec, called := runGuard(t, "/clients", true, routing.UserTypeEmployee, ceoState())
	if !called {
		t.Fatal("handler not reached")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestGuardLoadingAnswers503(t *testing.T) {
	rec, called := runGuard(t, "/clients", true, routing.UserTypeEmployee, routing.AuthState{Loading: true})
	if called {
		t.Fatal("handler must not run while loading")
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("loading response missing Retry-After")
	}
}

func TestGuardUnauthenticatedRedirectsToLoginWithFrom(t *testing.T) {
	rec, called := runGuard(t, "/clients", true, routing.UserTypeEmployee, routing.AuthState{})
	if called {
		t.Fatal("handler must not run unauthenticated")
	}
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login?from=%2Fclients" {
		t.Errorf("location = %q", loc)
	}
}

func TestGuardNonPrivilegedEmployeeCarriesReason(t *testing.T) {
	state := routing.AuthState{
		EmployeeAuthed: true,
		Employee:       &domain.Employee{ID: "e2", Role: domain.RoleManager},
	}
	rec, called := runGuard(t, "/clients", true, routing.UserTypeEmployee, state)
	if called {
		t.Fatal("handler must not run for non-privileged role")
	}
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if reason := rec.Header().Get("X-Guard-Reason"); reason != routing.ReasonRestricted {
		t.Errorf("reason header = %q", reason)
	}
}

func TestGuardClientOnEmployeePageRedirectsToPortal(t *testing.T) {
	state := routing.AuthState{
		ClientAuthed: true,
		Client:       &domain.Client{ID: "c1", CompanyName: "Acme"},
	}
	rec, _ := runGuard(t, "/clients", true, routing.UserTypeEmployee, state)
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != routing.PortalRoot {
		t.Errorf("location = %q", loc)
	}
}

func TestGuardUnknownUserTypeFailsFast(t *testing.T) {
	rec, called := runGuard(t, "/clients", true, routing.UserType("robot"), ceoState())
	if called {
		t.Fatal("handler must not run for unknown user type")
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
