package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clientmax/agency-crm/internal/core/domain"
	"github.com/clientmax/agency-crm/internal/core/service"
)

// AccountHandler serves the privileged account-management actions.
// The router guards these routes so only the privileged employee reaches them.
type AccountHandler struct {
	accounts *service.AccountService
}

func NewAccountHandler(accounts *service.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// ResetPassword sets a new password for a user.
//
// @Summary      Reset a user's password
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        body  body      resetPasswordRequest  true  "Target user and new password"
// @Success      200   {object}  actionResponse
// @Failure      400   {object}  errorResponse
// @Router       /account/reset-password [post]
func (h *AccountHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.accounts.ResetPassword(c.Request().Context(), req.UserID, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, actionResponse{Success: true, Message: "password updated"})
}

// DeleteUser removes a user account end to end.
//
// @Summary      Delete a user account
// @Description  Unlinks the domain record, drops role grants, then deletes
// @Description  the auth identity.
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        body  body      deleteUserRequest  true  "Target user"
// @Success      200   {object}  actionResponse
// @Failure      400   {object}  errorResponse
// @Router       /account/delete [post]
func (h *AccountHandler) DeleteUser(c echo.Context) error {
	var req deleteUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	err := h.accounts.DeleteUser(c.Request().Context(),
		req.UserID, domain.IdentityKind(req.UserType), req.RecordID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, actionResponse{Success: true, Message: "account deleted"})
}
