package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clientmax/agency-crm/internal/core/domain"
	"github.com/clientmax/agency-crm/internal/core/service"
)

type memKV struct {
	data map[string][]byte
}

func (m *memKV) LoadJSON(_ context.Context, key string, dst any) (bool, error) {
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (m *memKV) SaveJSON(_ context.Context, key string, v any) error {
	if m.data == nil {
		m.data = map[string][]byte{}
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.data[key] = raw
	return nil
}

type nopNotificationRepo struct{}

func (nopNotificationRepo) Insert(context.Context, domain.Notification) error { return nil }
func (nopNotificationRepo) List(context.Context) ([]domain.Notification, error) {
	return nil, nil
}
func (nopNotificationRepo) MarkRead(context.Context, string) error    { return nil }
func (nopNotificationRepo) MarkAllRead(context.Context) error         { return nil }
func (nopNotificationRepo) Delete(context.Context, string) error      { return nil }
func (nopNotificationRepo) DeleteAll(context.Context) error           { return nil }

func newNotificationFixture(t *testing.T) (*NotificationHandler, *service.NotificationService, *service.Hub) {
	t.Helper()
	hub := service.NewHub()
	svc := service.NewNotificationService(&memKV{}, nopNotificationRepo{}, zerolog.Nop(),
		service.NewHubDeliverer(service.ChannelToast, hub))
	return NewNotificationHandler(svc, hub), svc, hub
}

func TestNotificationHandler_AddThenList(t *testing.T) {
	h, _, _ := newNotificationFixture(t)

	c, rec := jsonContext(t, http.MethodPost, "/notifications",
		`{"type":"update","title":"Weekly report","message":"ready for review","priority":"low"}`)
	if err := h.Add(c); err != nil {
		t.Fatalf("add: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	c, rec = jsonContext(t, http.MethodGet, "/notifications", "")
	if err := h.List(c); err != nil {
		t.Fatalf("list: %v", err)
	}

	var resp listNotificationsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Data) != 1 || resp.UnreadCount != 1 {
		t.Fatalf("unexpected list: %+v", resp)
	}
	if resp.Data[0].Title != "Weekly report" || resp.Data[0].Read {
		t.Fatalf("unexpected entry: %+v", resp.Data[0])
	}
	if resp.HasUnreadUrgent {
		t.Fatalf("low priority must not flag urgent")
	}
}

func TestNotificationHandler_AddRejectsUnknownType(t *testing.T) {
	h, _, _ := newNotificationFixture(t)

	c, _ := jsonContext(t, http.MethodPost, "/notifications",
		`{"type":"gossip","title":"x","message":"y","priority":"low"}`)
	err := h.Add(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestNotificationHandler_MarkReadAndClear(t *testing.T) {
	h, svc, _ := newNotificationFixture(t)
	n := svc.Add(context.Background(), service.NotificationInput{
		Type: domain.NotificationUpdate, Title: "t", Message: "m", Priority: domain.PriorityHigh,
	})

	c, rec := jsonContext(t, http.MethodPost, "/notifications/"+n.ID+"/read", "")
	c.SetParamNames("id")
	c.SetParamValues(n.ID)
	if err := h.MarkRead(c); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if svc.UnreadCount() != 0 {
		t.Fatalf("expected zero unread")
	}

	c, rec = jsonContext(t, http.MethodDelete, "/notifications/"+n.ID, "")
	c.SetParamNames("id")
	c.SetParamValues(n.ID)
	if err := h.Clear(c); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if len(svc.List()) != 0 {
		t.Fatalf("expected empty list")
	}
}

func TestNotificationHandler_SettingsRoundTrip(t *testing.T) {
	h, _, _ := newNotificationFixture(t)

	c, rec := jsonContext(t, http.MethodGet, "/notifications/settings", "")
	if err := h.Settings(c); err != nil {
		t.Fatalf("settings: %v", err)
	}
	var got settingsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !got.SoundEnabled || got.FeedbackThreshold != 6 {
		t.Fatalf("unexpected defaults: %+v", got)
	}

	c, rec = jsonContext(t, http.MethodPut, "/notifications/settings",
		`{"critical_only":true,"utilization_threshold":80}`)
	if err := h.UpdateSettings(c); err != nil {
		t.Fatalf("update settings: %v", err)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !got.CriticalOnly || got.UtilizationThreshold != 80 {
		t.Fatalf("patch not applied: %+v", got)
	}
	if !got.SoundEnabled {
		t.Fatalf("untouched fields must keep their values")
	}
}
