package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Auth ---

type signInRequest struct {
	Email    string `json:"email"     validate:"required,email"`
	Password string `json:"password"  validate:"required"`
	UserType string `json:"user_type" validate:"required,oneof=employee client"`
}

type signUpRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name"     validate:"required"`
}

type signOutRequest struct {
	UserType string `json:"user_type" validate:"omitempty,oneof=employee client any"`
}

type sessionResponse struct {
	Token     string    `json:"token,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	Email     string    `json:"email,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

type signUpResponse struct {
	Session sessionResponse `json:"session"`
	// Linked reports whether a pre-provisioned employee row was attached to
	// the new identity by email match.
	Linked bool `json:"linked"`
}

type identityStateResponse struct {
	Authenticated bool `json:"authenticated"`
	Loading       bool `json:"loading"`
	HasProfile    bool `json:"has_profile"`
}

type authStateResponse struct {
	Employee identityStateResponse `json:"employee"`
	Client   identityStateResponse `json:"client"`
}

// --- Root dispatcher ---

type rootResponse struct {
	State        string `json:"state"`
	Target       string `json:"target,omitempty"`
	Reason       string `json:"reason,omitempty"`
	WakeAdvisory bool   `json:"wake_advisory,omitempty"`
}

// --- Notifications ---

type addNotificationRequest struct {
	Type       string `json:"type"        validate:"required,oneof=feedback_alert utilization_alert critical_alert update system success"`
	Title      string `json:"title"       validate:"required"`
	Message    string `json:"message"     validate:"required"`
	Priority   string `json:"priority"    validate:"required,oneof=high medium low"`
	ClientID   string `json:"client_id"`
	ClientName string `json:"client_name"`
	ActionURL  string `json:"action_url"`
}

type listNotificationsResponse struct {
	Data            []notificationResponse `json:"data"`
	UnreadCount     int                    `json:"unread_count"`
	HasUnreadUrgent bool                   `json:"has_unread_urgent"`
}

type notificationResponse struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
	Read       bool      `json:"read"`
	Priority   string    `json:"priority"`
	ClientID   string    `json:"client_id,omitempty"`
	ClientName string    `json:"client_name,omitempty"`
	ActionURL  string    `json:"action_url,omitempty"`
}

type settingsResponse struct {
	SoundEnabled         bool    `json:"sound_enabled"`
	DesktopEnabled       bool    `json:"desktop_enabled"`
	CriticalOnly         bool    `json:"critical_only"`
	FeedbackThreshold    float64 `json:"feedback_threshold"`
	UtilizationThreshold float64 `json:"utilization_threshold"`
}

// --- AI assist ---

type assistRequest struct {
	Type       string         `json:"type"       validate:"required,oneof=suggest_update generate_weekly analyze_opportunity"`
	Content    string         `json:"content"    validate:"required"`
	ClientType string         `json:"clientType"`
	Context    map[string]any `json:"context"`
}

// --- Account management ---

type resetPasswordRequest struct {
	UserID      string `json:"user_id"      validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

type deleteUserRequest struct {
	UserID   string `json:"user_id"   validate:"required"`
	UserType string `json:"user_type" validate:"required,oneof=employee client"`
	RecordID string `json:"record_id" validate:"required"`
}

type actionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// --- Threshold email ---

type alertEmailRequest struct {
	NotificationType  string  `json:"notification_type" validate:"required,oneof=feedback_alert utilization_alert critical_alert"`
	RecipientEmail    string  `json:"recipient_email"   validate:"required,email"`
	RecipientName     string  `json:"recipient_name"`
	ThresholdType     string  `json:"threshold_type"    validate:"required"`
	ThresholdValue    float64 `json:"threshold_value"`
	ActualValue       float64 `json:"actual_value"`
	ClientName        string  `json:"client_name"`
	TeamLeadName      string  `json:"team_lead_name"`
	Department        string  `json:"department"`
	AdditionalDetails string  `json:"additional_details"`
}
