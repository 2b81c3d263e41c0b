package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clientmax/agency-crm/internal/core/domain"
	"github.com/clientmax/agency-crm/internal/core/service"
)

// NotificationHandler serves the notification center: the list, read state,
// settings, and the live delivery stream.
type NotificationHandler struct {
	notifications *service.NotificationService
	hub           *service.Hub
}

func NewNotificationHandler(notifications *service.NotificationService, hub *service.Hub) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, hub: hub}
}

func toNotificationResponse(n domain.Notification) notificationResponse {
	return notificationResponse{
		ID:         n.ID,
		Type:       string(n.Type),
		Title:      n.Title,
		Message:    n.Message,
		Timestamp:  n.Timestamp,
		Read:       n.Read,
		Priority:   string(n.Priority),
		ClientID:   n.ClientID,
		ClientName: n.ClientName,
		ActionURL:  n.ActionURL,
	}
}

// List returns all notifications, newest first.
//
// @Summary      List notifications
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  listNotificationsResponse
// @Router       /notifications [get]
func (h *NotificationHandler) List(c echo.Context) error {
	items := h.notifications.List()
	data := make([]notificationResponse, 0, len(items))
	for _, n := range items {
		data = append(data, toNotificationResponse(n))
	}

	return c.JSON(http.StatusOK, listNotificationsResponse{
		Data:            data,
		UnreadCount:     h.notifications.UnreadCount(),
		HasUnreadUrgent: h.notifications.HasUnreadHighPriority(),
	})
}

// Add creates a notification.
//
// @Summary      Add a notification
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Param        body  body      addNotificationRequest  true  "Notification"
// @Success      201   {object}  notificationResponse
// @Failure      400   {object}  errorResponse
// @Router       /notifications [post]
func (h *NotificationHandler) Add(c echo.Context) error {
	var req addNotificationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	n := h.notifications.Add(c.Request().Context(), service.NotificationInput{
		Type:       domain.NotificationType(req.Type),
		Title:      req.Title,
		Message:    req.Message,
		Priority:   domain.Priority(req.Priority),
		ClientID:   req.ClientID,
		ClientName: req.ClientName,
		ActionURL:  req.ActionURL,
	})
	return c.JSON(http.StatusCreated, toNotificationResponse(n))
}

// MarkRead flags one notification as read.
//
// @Summary      Mark one notification read
// @Tags         notifications
// @Param        id  path  string  true  "Notification id"
// @Success      204
// @Router       /notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	h.notifications.MarkAsRead(c.Request().Context(), c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}

// MarkAllRead flags every notification as read.
//
// @Summary      Mark all notifications read
// @Tags         notifications
// @Success      204
// @Router       /notifications/read-all [post]
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	h.notifications.MarkAllAsRead(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}

// Clear removes one notification.
//
// @Summary      Delete one notification
// @Tags         notifications
// @Param        id  path  string  true  "Notification id"
// @Success      204
// @Router       /notifications/{id} [delete]
func (h *NotificationHandler) Clear(c echo.Context) error {
	h.notifications.Clear(c.Request().Context(), c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}

// ClearAll removes every notification.
//
// @Summary      Delete all notifications
// @Tags         notifications
// @Success      204
// @Router       /notifications [delete]
func (h *NotificationHandler) ClearAll(c echo.Context) error {
	h.notifications.ClearAll(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}

// Settings returns the current notification settings.
//
// @Summary      Get notification settings
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  settingsResponse
// @Router       /notifications/settings [get]
func (h *NotificationHandler) Settings(c echo.Context) error {
	return c.JSON(http.StatusOK, toSettingsResponse(h.notifications.Settings()))
}

// UpdateSettings merges a partial settings update.
//
// @Summary      Update notification settings
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Param        body  body      service.SettingsPatch  true  "Partial settings"
// @Success      200   {object}  settingsResponse
// @Failure      400   {object}  errorResponse
// @Router       /notifications/settings [put]
func (h *NotificationHandler) UpdateSettings(c echo.Context) error {
	var patch service.SettingsPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	updated := h.notifications.UpdateSettings(c.Request().Context(), patch)
	return c.JSON(http.StatusOK, toSettingsResponse(updated))
}

func toSettingsResponse(s domain.NotificationSettings) settingsResponse {
	return settingsResponse{
		SoundEnabled:         s.SoundEnabled,
		DesktopEnabled:       s.DesktopEnabled,
		CriticalOnly:         s.CriticalOnly,
		FeedbackThreshold:    s.FeedbackThreshold,
		UtilizationThreshold: s.UtilizationThreshold,
	}
}

// Stream pushes delivery events to the client as server-sent events until
// the connection closes.
//
// @Summary      Notification delivery stream
// @Description  Server-sent events; each event is one delivery fan-out.
// @Tags         notifications
// @Produce      text/event-stream
// @Success      200
// @Router       /notifications/stream [get]
func (h *NotificationHandler) Stream(c echo.Context) error {
	events, unsubscribe := h.hub.Subscribe()
	defer unsubscribe()

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)
	resp.Flush()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			raw, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(resp, "event: %s\ndata: %s\n\n", ev.Channel, raw); err != nil {
				return nil
			}
			resp.Flush()
		}
	}
}
