package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clientmax/agency-crm/internal/core/domain"
	"github.com/clientmax/agency-crm/internal/core/session"
)

// AuthHandler serves the dual-identity auth surface. Sign-in targets one of
// the two session stores; sign-up only exists on the employee side, where new
// identities are linked to pre-provisioned employee rows by email.
type AuthHandler struct {
	employees *session.Store[domain.Employee]
	clients   *session.Store[domain.Client]
}

func NewAuthHandler(employees *session.Store[domain.Employee], clients *session.Store[domain.Client]) *AuthHandler {
	return &AuthHandler{employees: employees, clients: clients}
}

// SignIn authenticates against the selected identity's session store.
//
// @Summary      Sign in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signInRequest  true  "Credentials and identity kind"
// @Success      200   {object}  actionResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req signInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	var err error
	switch domain.IdentityKind(req.UserType) {
	case domain.IdentityEmployee:
		err = h.employees.SignIn(ctx, req.Email, req.Password)
	case domain.IdentityClient:
		err = h.clients.SignIn(ctx, req.Email, req.Password)
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, actionResponse{Success: true})
}

// SignUp registers a new employee-side identity.
//
// @Summary      Sign up (employee)
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signUpRequest  true  "New account details"
// @Success      201   {object}  signUpResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /auth/signup [post]
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req signUpRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.employees.SignUp(c.Request().Context(), req.Email, req.Password, req.Name)
	if err != nil {
		return err
	}

	resp := signUpResponse{Linked: result.Linked}
	if result.Session != nil {
		resp.Session = sessionResponse{
			Token:     result.Session.Token,
			UserID:    result.Session.UserID,
			Email:     result.Session.Email,
			ExpiresAt: result.Session.ExpiresAt,
		}
	}
	return c.JSON(http.StatusCreated, resp)
}

// SignOut signs the selected identity out; "any" (or empty) signs out both.
//
// @Summary      Sign out
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signOutRequest  false  "Identity kind to sign out"
// @Success      200   {object}  actionResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) SignOut(c echo.Context) error {
	var req signOutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	ctx := c.Request().Context()
	switch domain.IdentityKind(req.UserType) {
	case domain.IdentityEmployee:
		if err := h.employees.SignOut(ctx); err != nil {
			return err
		}
	case domain.IdentityClient:
		if err := h.clients.SignOut(ctx); err != nil {
			return err
		}
	default:
		if err := h.employees.SignOut(ctx); err != nil {
			return err
		}
		if err := h.clients.SignOut(ctx); err != nil {
			return err
		}
	}

	return c.JSON(http.StatusOK, actionResponse{Success: true})
}

// Session reports both identities' resolution state.
//
// @Summary      Current auth state
// @Tags         auth
// @Produce      json
// @Success      200  {object}  authStateResponse
// @Router       /auth/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	emp := h.employees.Snapshot()
	cli := h.clients.Snapshot()

	return c.JSON(http.StatusOK, authStateResponse{
		Employee: identityStateResponse{
			Authenticated: emp.Authenticated(),
			Loading:       emp.Loading,
			HasProfile:    emp.Profile != nil,
		},
		Client: identityStateResponse{
			Authenticated: cli.Authenticated(),
			Loading:       cli.Loading,
			HasProfile:    cli.Profile != nil,
		},
	})
}
