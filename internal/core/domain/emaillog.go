package domain

import "time"

// EmailLogEntry is one row of the threshold-email audit trail.
type EmailLogEntry struct {
	ID               string           `json:"id,omitempty"`
	NotificationType NotificationType `json:"notification_type"`
	RecipientEmail   string           `json:"recipient_email"`
	ThresholdType    string           `json:"threshold_type"`
	ThresholdValue   float64          `json:"threshold_value"`
	ActualValue      float64          `json:"actual_value"`
	Status           string           `json:"status"`
	SentAt           time.Time        `json:"sent_at"`
}
