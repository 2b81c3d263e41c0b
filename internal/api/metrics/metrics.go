// Package metrics defines and registers all custom Prometheus metrics for the
// agency CRM backend. It is the single source of truth for metric names,
// labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "crm"

// NotificationsCreatedTotal counts notifications added to the center.
// Labels:
//   - type: the notification type (e.g. "feedback_alert")
//   - priority: "high", "medium" or "low"
var NotificationsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_created_total",
		Help:      "Total number of notifications added to the notification center.",
	},
	[]string{"type", "priority"},
)

// ThresholdAlertsTotal counts threshold-scan outcomes.
// Labels:
//   - type: "feedback_alert" or "utilization_alert"
//   - result: "created" (new alert) or "dedup" (suppressed as a same-day duplicate)
var ThresholdAlertsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "threshold_alerts_total",
		Help:      "Total number of threshold scan alert decisions, by result.",
	},
	[]string{"type", "result"},
)

// AssistRequestsTotal counts AI assist invocations.
// Labels:
//   - type: "suggest_update", "generate_weekly" or "analyze_opportunity"
//   - result: "ok", "rate_limited", "quota_exhausted" or "error"
var AssistRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "assist_requests_total",
		Help:      "Total number of AI assist requests, by type and result.",
	},
	[]string{"type", "result"},
)

// AssistDuration measures end-to-end AI assist latency including the upstream
// completion call.
var AssistDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "assist_duration_seconds",
		Help:      "Duration of AI assist requests from receipt to response.",
		Buckets:   []float64{.25, .5, 1, 2.5, 5, 10, 30, 60},
	},
	[]string{"type"},
)

// AlertEmailsTotal counts threshold alert emails by outcome.
// Label:
//   - status: "sent" or "failed"
var AlertEmailsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "alert_emails_total",
		Help:      "Total number of threshold alert emails, by send status.",
	},
	[]string{"status"},
)

// SessionResolutionsTotal counts session-store profile resolutions.
// Labels:
//   - identity: "employee" or "client"
//   - result: "found", "absent" or "error"
var SessionResolutionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_resolutions_total",
		Help:      "Total number of session profile resolutions, by identity and result.",
	},
	[]string{"identity", "result"},
)
