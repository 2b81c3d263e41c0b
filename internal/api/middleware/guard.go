package middleware

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/clientmax/agency-crm/internal/core/routing"
)

// AuthStateFunc supplies the combined session-store view at request time.
type AuthStateFunc func() routing.AuthState

// guardResponse is the body returned for non-redirect guard outcomes.
type guardResponse struct {
	State  string `json:"state"`
	Reason string `json:"reason,omitempty"`
}

// Guard translates route-guard decisions into HTTP responses: render passes
// through to the handler, loading answers 503 with Retry-After so the UI
// polls instead of flashing a redirect, and redirects answer 302 with the
// attempted path attached for post-login return.
func Guard(requireAuth bool, userType routing.UserType, state AuthStateFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			decision := routing.Guard(c.Request().URL.Path, requireAuth, userType, state())

			switch decision.Outcome {
			case routing.OutcomeRender:
				return next(c)

			case routing.OutcomeLoading:
				c.Response().Header().Set("Retry-After", "1")
				return c.JSON(http.StatusServiceUnavailable, guardResponse{State: "loading"})

			case routing.OutcomeRedirect:
				target := decision.Target
				if decision.From != "" {
					target += "?from=" + url.QueryEscape(decision.From)
				}
				if decision.Reason != "" {
					c.Response().Header().Set("X-Guard-Reason", decision.Reason)
				}
				return c.Redirect(http.StatusFound, target)

			default:
				return echo.NewHTTPError(http.StatusInternalServerError, decision.Reason)
			}
		}
	}
}
