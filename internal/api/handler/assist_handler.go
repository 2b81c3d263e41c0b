package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clientmax/agency-crm/internal/api/metrics"
	"github.com/clientmax/agency-crm/internal/core/domain"
	"github.com/clientmax/agency-crm/internal/core/service"
)

// AssistHandler serves the AI text-assist endpoint.
type AssistHandler struct {
	assist *service.AssistService
}

func NewAssistHandler(assist *service.AssistService) *AssistHandler {
	return &AssistHandler{assist: assist}
}

// Assist runs one AI assist request.
//
// @Summary      AI text assist
// @Description  Routes the request to one of three prompt templates and
// @Description  returns the model's structured answer.
// @Tags         assist
// @Accept       json
// @Produce      json
// @Param        body  body      assistRequest  true  "Assist request"
// @Success      200   {object}  service.AssistResult
// @Failure      400   {object}  errorResponse
// @Failure      402   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /assist [post]
func (h *AssistHandler) Assist(c echo.Context) error {
	var req assistRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	start := time.Now()
	result, err := h.assist.Assist(c.Request().Context(), service.AssistRequest{
		Type:       domain.AssistType(req.Type),
		Content:    req.Content,
		ClientType: req.ClientType,
		Context:    req.Context,
	})
	metrics.AssistDuration.WithLabelValues(req.Type).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.AssistRequestsTotal.WithLabelValues(req.Type, assistResultLabel(err)).Inc()
		return err
	}

	metrics.AssistRequestsTotal.WithLabelValues(req.Type, "ok").Inc()
	return c.JSON(http.StatusOK, result)
}

func assistResultLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, domain.ErrQuotaExhausted):
		return "quota_exhausted"
	default:
		return "error"
	}
}
