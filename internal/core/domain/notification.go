package domain

import "time"

// NotificationType classifies a notification for filtering and delivery.
type NotificationType string

const (
	NotificationFeedbackAlert    NotificationType = "feedback_alert"
	NotificationUtilizationAlert NotificationType = "utilization_alert"
	NotificationCriticalAlert    NotificationType = "critical_alert"
	NotificationUpdate           NotificationType = "update"
	NotificationSystem           NotificationType = "system"
	NotificationSuccess          NotificationType = "success"
)

// Priority orders notifications for delivery side effects: only high priority
// triggers the audible cue, and critical-only mode drops everything below high.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Notification is a single entry in the notification center, newest first.
type Notification struct {
	ID         string           `json:"id"`
	Type       NotificationType `json:"type"`
	Title      string           `json:"title"`
	Message    string           `json:"message"`
	Timestamp  time.Time        `json:"timestamp"`
	Read       bool             `json:"read"`
	Priority   Priority         `json:"priority"`
	ClientID   string           `json:"client_id,omitempty"`
	ClientName string           `json:"client_name,omitempty"`
	ActionURL  string           `json:"action_url,omitempty"`
}

// NotificationSettings are per-user preferences persisted across restarts.
type NotificationSettings struct {
	SoundEnabled         bool    `json:"sound_enabled"`
	DesktopEnabled       bool    `json:"desktop_enabled"`
	CriticalOnly         bool    `json:"critical_only"`
	FeedbackThreshold    float64 `json:"feedback_threshold"`
	UtilizationThreshold float64 `json:"utilization_threshold"`
}

// DefaultNotificationSettings returns the settings applied when nothing has
// been persisted yet. Stored settings are merged over these on load so that
// keys missing from older payloads keep their defaults.
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		SoundEnabled:         true,
		DesktopEnabled:       false,
		CriticalOnly:         false,
		FeedbackThreshold:    6,
		UtilizationThreshold: 70,
	}
}
