package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clientmax/agency-crm/internal/core/domain"
	"github.com/clientmax/agency-crm/internal/core/service"
)

// AlertMailHandler serves the threshold-email endpoint.
type AlertMailHandler struct {
	mail *service.AlertMailService
}

func NewAlertMailHandler(mail *service.AlertMailService) *AlertMailHandler {
	return &AlertMailHandler{mail: mail}
}

// Send renders and dispatches a threshold alert email.
//
// @Summary      Send a threshold alert email
// @Tags         alerts
// @Accept       json
// @Produce      json
// @Param        body  body      alertEmailRequest  true  "Alert details"
// @Success      200   {object}  actionResponse
// @Failure      400   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /alerts/email [post]
func (h *AlertMailHandler) Send(c echo.Context) error {
	var req alertEmailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	err := h.mail.Send(c.Request().Context(), service.AlertEmailRequest{
		NotificationType:  domain.NotificationType(req.NotificationType),
		RecipientEmail:    req.RecipientEmail,
		RecipientName:     req.RecipientName,
		ThresholdType:     req.ThresholdType,
		ThresholdValue:    req.ThresholdValue,
		ActualValue:       req.ActualValue,
		ClientName:        req.ClientName,
		TeamLeadName:      req.TeamLeadName,
		Department:        req.Department,
		AdditionalDetails: req.AdditionalDetails,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, actionResponse{Success: true, Message: "alert email sent"})
}
