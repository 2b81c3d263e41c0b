package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clientmax/agency-crm/internal/core/domain"
	"github.com/clientmax/agency-crm/internal/core/routing"
	"github.com/clientmax/agency-crm/internal/core/session"
)

// RootHandler answers the application root: which of the five terminal
// states the UI shell should render, given both identities.
type RootHandler struct {
	employees *session.Store[domain.Employee]
	clients   *session.Store[domain.Client]
	now       func() time.Time
}

func NewRootHandler(employees *session.Store[domain.Employee], clients *session.Store[domain.Client]) *RootHandler {
	return &RootHandler{employees: employees, clients: clients, now: time.Now}
}

// AuthState builds the combined guard view from both stores.
func (h *RootHandler) AuthState() routing.AuthState {
	emp := h.employees.Snapshot()
	cli := h.clients.Snapshot()

	return routing.AuthState{
		Loading:        emp.Loading || cli.Loading,
		EmployeeAuthed: emp.Authenticated(),
		Employee:       emp.Profile,
		ClientAuthed:   cli.Authenticated(),
		Client:         cli.Profile,
	}
}

// Dispatch resolves the root state.
//
// @Summary      Root dispatch
// @Description  Decides what the application root renders: loading, the
// @Description  dashboard, a redirect, the orphaned-account notice or login.
// @Tags         root
// @Produce      json
// @Success      200  {object}  rootResponse
// @Router       / [get]
func (h *RootHandler) Dispatch(c echo.Context) error {
	decision := routing.DispatchRoot(h.AuthState())

	resp := rootResponse{
		State:  decision.State.String(),
		Target: decision.Target,
		Reason: decision.Reason,
	}

	if decision.State == routing.RootLoading {
		resp.WakeAdvisory = routing.ShowWakeAdvisory(h.loadingFor())
	}

	return c.JSON(http.StatusOK, resp)
}

// loadingFor returns how long the longest-running unresolved store has been
// loading.
func (h *RootHandler) loadingFor() time.Duration {
	now := h.now()
	var longest time.Duration

	emp := h.employees.Snapshot()
	if emp.Loading && !emp.LoadingSince.IsZero() {
		longest = now.Sub(emp.LoadingSince)
	}
	cli := h.clients.Snapshot()
	if cli.Loading && !cli.LoadingSince.IsZero() {
		if d := now.Sub(cli.LoadingSince); d > longest {
			longest = d
		}
	}
	return longest
}
