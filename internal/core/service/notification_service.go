package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/clientmax/agency-crm/internal/api/metrics"
	"github.com/clientmax/agency-crm/internal/core/domain"
	"github.com/clientmax/agency-crm/internal/core/ports"
)

// SettingsKey is the fixed key notification settings persist under.
// Writes are last-write-wins; there is no schema versioning.
const SettingsKey = "notification_settings"

// KVStore abstracts the persisted key-value mirror (Redis).
type KVStore interface {
	// LoadJSON unmarshals the stored value into dst and reports whether the
	// key existed. dst keeps its prior field values for keys missing from
	// the payload, which is how defaults survive partial stored settings.
	LoadJSON(ctx context.Context, key string, dst any) (bool, error)
	SaveJSON(ctx context.Context, key string, v any) error
}

// Deliverer is one delivery side-effect channel (sound, desktop, toast).
type Deliverer interface {
	Channel() string
	Deliver(n domain.Notification)
}

const (
	ChannelSound   = "sound"
	ChannelDesktop = "desktop"
	ChannelToast   = "toast"
)

// NotificationInput is the caller-supplied part of a notification; id,
// timestamp and the unread flag are stamped by the service.
type NotificationInput struct {
	Type       domain.NotificationType
	Title      string
	Message    string
	Priority   domain.Priority
	ClientID   string
	ClientName string
	ActionURL  string
}

// SettingsPatch is a partial settings update; nil fields are left unchanged.
type SettingsPatch struct {
	SoundEnabled         *bool    `json:"sound_enabled,omitempty"`
	DesktopEnabled       *bool    `json:"desktop_enabled,omitempty"`
	CriticalOnly         *bool    `json:"critical_only,omitempty"`
	FeedbackThreshold    *float64 `json:"feedback_threshold,omitempty"`
	UtilizationThreshold *float64 `json:"utilization_threshold,omitempty"`
}

// NotificationService owns the notification center: the ordered list
// (newest first), per-user settings, and the delivery side effects fired
// when an entry is added. The list is mirrored to the repository so it
// survives restarts; repository failures degrade to in-memory behaviour.
type NotificationService struct {
	mu       sync.Mutex
	items    []domain.Notification
	settings domain.NotificationSettings
	seq      uint64

	kv         KVStore
	repo       ports.NotificationRepository
	deliverers []Deliverer
	log        zerolog.Logger
	now        func() time.Time
}

func NewNotificationService(kv KVStore, repo ports.NotificationRepository, log zerolog.Logger, deliverers ...Deliverer) *NotificationService {
	return &NotificationService{
		settings:   domain.DefaultNotificationSettings(),
		kv:         kv,
		repo:       repo,
		deliverers: deliverers,
		log:        log,
		now:        time.Now,
	}
}

// WithClock overrides the time source. Intended for tests.
func (s *NotificationService) WithClock(now func() time.Time) *NotificationService {
	s.now = now
	return s
}

// Restore loads persisted settings (merged over defaults — missing keys keep
// their default values) and the stored notification list.
func (s *NotificationService) Restore(ctx context.Context) {
	settings := domain.DefaultNotificationSettings()
	if s.kv != nil {
		if _, err := s.kv.LoadJSON(ctx, SettingsKey, &settings); err != nil {
			s.log.Warn().Err(err).Msg("could not load notification settings, using defaults")
			settings = domain.DefaultNotificationSettings()
		}
	}

	var items []domain.Notification
	if s.repo != nil {
		stored, err := s.repo.List(ctx)
		if err != nil {
			s.log.Warn().Err(err).Msg("could not restore notifications")
		} else {
			items = stored
		}
	}

	s.mu.Lock()
	s.settings = settings
	s.items = items
	s.mu.Unlock()
}

// Add stamps and prepends a notification, persists it, and fires delivery
// side effects unless critical-only mode suppresses them.
func (s *NotificationService) Add(ctx context.Context, in NotificationInput) domain.Notification {
	now := s.now().UTC()

	s.mu.Lock()
	s.seq++
	n := domain.Notification{
		ID:         fmt.Sprintf("n%d-%d", now.UnixMilli(), s.seq),
		Type:       in.Type,
		Title:      in.Title,
		Message:    in.Message,
		Timestamp:  now,
		Read:       false,
		Priority:   in.Priority,
		ClientID:   in.ClientID,
		ClientName: in.ClientName,
		ActionURL:  in.ActionURL,
	}
	s.items = append([]domain.Notification{n}, s.items...)
	settings := s.settings
	s.mu.Unlock()

	metrics.NotificationsCreatedTotal.
		WithLabelValues(string(n.Type), string(n.Priority)).Inc()

	if s.repo != nil {
		if err := s.repo.Insert(ctx, n); err != nil {
			s.log.Warn().Err(err).Str("id", n.ID).Msg("failed to persist notification")
		}
	}

	// Critical-only mode stores the entry but stays silent below high.
	if settings.CriticalOnly && n.Priority != domain.PriorityHigh {
		return n
	}

	for _, d := range s.deliverers {
		switch d.Channel() {
		case ChannelSound:
			if settings.SoundEnabled && n.Priority == domain.PriorityHigh {
				d.Deliver(n)
			}
		case ChannelDesktop:
			if settings.DesktopEnabled {
				d.Deliver(n)
			}
		case ChannelToast:
			d.Deliver(n)
		}
	}
	return n
}

// AddThresholdAlert adds a synthesized alert unless an alert of the same
// type for the same subject already exists on the same calendar day. It
// reports whether a new notification was created.
func (s *NotificationService) AddThresholdAlert(ctx context.Context, subject string, in NotificationInput) (domain.Notification, bool) {
	today := s.now().UTC()

	s.mu.Lock()
	for _, n := range s.items {
		if n.Type != in.Type {
			continue
		}
		if !sameDay(n.Timestamp, today) {
			continue
		}
		if (n.ClientID != "" && n.ClientID == subject) || strings.Contains(n.Message, subject) {
			s.mu.Unlock()
			return domain.Notification{}, false
		}
	}
	s.mu.Unlock()

	return s.Add(ctx, in), true
}

// List returns a copy of the notification list, newest first.
func (s *NotificationService) List() []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Notification, len(s.items))
	copy(out, s.items)
	return out
}

// UnreadCount returns the number of unread notifications.
func (s *NotificationService) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, n := range s.items {
		if !n.Read {
			count++
		}
	}
	return count
}

// HasUnreadHighPriority reports whether any unread entry is high priority.
func (s *NotificationService) HasUnreadHighPriority() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.items {
		if !n.Read && n.Priority == domain.PriorityHigh {
			return true
		}
	}
	return false
}

// MarkAsRead flags one notification as read.
func (s *NotificationService) MarkAsRead(ctx context.Context, id string) {
	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Read = true
		}
	}
	s.mu.Unlock()

	if s.repo != nil {
		if err := s.repo.MarkRead(ctx, id); err != nil {
			s.log.Warn().Err(err).Str("id", id).Msg("failed to persist read flag")
		}
	}
}

// MarkAllAsRead flags every notification as read. Idempotent.
func (s *NotificationService) MarkAllAsRead(ctx context.Context) {
	s.mu.Lock()
	for i := range s.items {
		s.items[i].Read = true
	}
	s.mu.Unlock()

	if s.repo != nil {
		if err := s.repo.MarkAllRead(ctx); err != nil {
			s.log.Warn().Err(err).Msg("failed to persist read flags")
		}
	}
}

// Clear removes one notification.
func (s *NotificationService) Clear(ctx context.Context, id string) {
	s.mu.Lock()
	kept := s.items[:0]
	for _, n := range s.items {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	s.items = kept
	s.mu.Unlock()

	if s.repo != nil {
		if err := s.repo.Delete(ctx, id); err != nil {
			s.log.Warn().Err(err).Str("id", id).Msg("failed to delete stored notification")
		}
	}
}

// ClearAll removes every notification.
func (s *NotificationService) ClearAll(ctx context.Context) {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()

	if s.repo != nil {
		if err := s.repo.DeleteAll(ctx); err != nil {
			s.log.Warn().Err(err).Msg("failed to clear stored notifications")
		}
	}
}

// Settings returns the current settings.
func (s *NotificationService) Settings() domain.NotificationSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// UpdateSettings merges the patch into the current settings and persists
// the result under the fixed key.
func (s *NotificationService) UpdateSettings(ctx context.Context, patch SettingsPatch) domain.NotificationSettings {
	s.mu.Lock()
	if patch.SoundEnabled != nil {
		s.settings.SoundEnabled = *patch.SoundEnabled
	}
	if patch.DesktopEnabled != nil {
		s.settings.DesktopEnabled = *patch.DesktopEnabled
	}
	if patch.CriticalOnly != nil {
		s.settings.CriticalOnly = *patch.CriticalOnly
	}
	if patch.FeedbackThreshold != nil {
		s.settings.FeedbackThreshold = *patch.FeedbackThreshold
	}
	if patch.UtilizationThreshold != nil {
		s.settings.UtilizationThreshold = *patch.UtilizationThreshold
	}
	updated := s.settings
	s.mu.Unlock()

	if s.kv != nil {
		if err := s.kv.SaveJSON(ctx, SettingsKey, updated); err != nil {
			s.log.Warn().Err(err).Msg("failed to persist notification settings")
		}
	}
	return updated
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
