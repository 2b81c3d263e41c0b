package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/clientmax/agency-crm/internal/api/metrics"
	"github.com/clientmax/agency-crm/internal/core/domain"
	"github.com/clientmax/agency-crm/internal/core/ports"
)

const (
	defaultFeedbackScanInterval    = 60 * time.Second
	defaultUtilizationScanInterval = 30 * time.Second

	// Floors below which a threshold alert escalates to high priority.
	feedbackHighFloor    = 5.0
	utilizationHighFloor = 60.0
)

// AlertDedup abstracts the durable same-day marker (Redis) that keeps
// threshold alerts from repeating across restarts within one calendar day.
type AlertDedup interface {
	SeenToday(ctx context.Context, kind domain.NotificationType, subject string, day time.Time) (bool, error)
	MarkToday(ctx context.Context, kind domain.NotificationType, subject string, day time.Time) error
}

// ThresholdScanner periodically compares live metrics against the configured
// floors and synthesizes alerts through the notification service.
type ThresholdScanner struct {
	notifications *NotificationService
	feedback      ports.FeedbackRepository
	teamLeads     ports.TeamLeadRepository
	dedup         AlertDedup
	log           zerolog.Logger
	now           func() time.Time

	feedbackInterval    time.Duration
	utilizationInterval time.Duration
}

func NewThresholdScanner(
	notifications *NotificationService,
	feedback ports.FeedbackRepository,
	teamLeads ports.TeamLeadRepository,
	dedup AlertDedup,
	log zerolog.Logger,
) *ThresholdScanner {
	return &ThresholdScanner{
		notifications:       notifications,
		feedback:            feedback,
		teamLeads:           teamLeads,
		dedup:               dedup,
		log:                 log,
		now:                 time.Now,
		feedbackInterval:    defaultFeedbackScanInterval,
		utilizationInterval: defaultUtilizationScanInterval,
	}
}

// WithIntervals overrides the scan cadence. Non-positive values keep the
// defaults.
func (s *ThresholdScanner) WithIntervals(feedback, utilization time.Duration) *ThresholdScanner {
	if feedback > 0 {
		s.feedbackInterval = feedback
	}
	if utilization > 0 {
		s.utilizationInterval = utilization
	}
	return s
}

// WithClock overrides the time source. Intended for tests.
func (s *ThresholdScanner) WithClock(now func() time.Time) *ThresholdScanner {
	s.now = now
	return s
}

// Start runs both scan loops until ctx is cancelled. Each loop performs an
// immediate initial scan and then ticks on its interval.
func (s *ThresholdScanner) Start(ctx context.Context) {
	go s.loop(ctx, s.feedbackInterval, s.ScanFeedback)
	go s.loop(ctx, s.utilizationInterval, s.ScanUtilization)
}

func (s *ThresholdScanner) loop(ctx context.Context, interval time.Duration, scan func(context.Context)) {
	scan(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			scan(ctx)
		}
	}
}

// ScanFeedback raises an alert for every feedback score below the
// configured floor, at most once per client per calendar day.
func (s *ThresholdScanner) ScanFeedback(ctx context.Context) {
	threshold := s.notifications.Settings().FeedbackThreshold

	low, err := s.feedback.ScoresBelow(ctx, threshold)
	if err != nil {
		s.log.Error().Err(err).Msg("feedback scan failed")
		return
	}

	for _, fb := range low {
		if s.seenToday(ctx, domain.NotificationFeedbackAlert, fb.ClientID) {
			continue
		}

		priority := domain.PriorityMedium
		if fb.Score < feedbackHighFloor {
			priority = domain.PriorityHigh
		}

		_, created := s.notifications.AddThresholdAlert(ctx, fb.ClientID, NotificationInput{
			Type:       domain.NotificationFeedbackAlert,
			Title:      "Low Feedback Score Alert",
			Message:    fmt.Sprintf("%s rated %g/10 - below threshold of %g", fb.ClientName, fb.Score, threshold),
			Priority:   priority,
			ClientID:   fb.ClientID,
			ClientName: fb.ClientName,
			ActionURL:  "/feedback-analytics",
		})
		if created {
			s.markToday(ctx, domain.NotificationFeedbackAlert, fb.ClientID)
			metrics.ThresholdAlertsTotal.WithLabelValues(string(domain.NotificationFeedbackAlert), "created").Inc()
		} else {
			metrics.ThresholdAlertsTotal.WithLabelValues(string(domain.NotificationFeedbackAlert), "dedup").Inc()
		}
	}
}

// ScanUtilization raises an alert for every team lead whose utilization is
// below the configured floor, at most once per lead per calendar day.
func (s *ThresholdScanner) ScanUtilization(ctx context.Context) {
	threshold := s.notifications.Settings().UtilizationThreshold

	low, err := s.teamLeads.UtilizationBelow(ctx, threshold)
	if err != nil {
		s.log.Error().Err(err).Msg("utilization scan failed")
		return
	}

	for _, lead := range low {
		if s.seenToday(ctx, domain.NotificationUtilizationAlert, lead.Name) {
			continue
		}

		priority := domain.PriorityMedium
		if lead.Utilization < utilizationHighFloor {
			priority = domain.PriorityHigh
		}

		_, created := s.notifications.AddThresholdAlert(ctx, lead.Name, NotificationInput{
			Type:      domain.NotificationUtilizationAlert,
			Title:     "Low Utilization Alert",
			Message:   fmt.Sprintf("%s's team (%s) at %g%% - below target of %g%%", lead.Name, lead.Department, lead.Utilization, threshold),
			Priority:  priority,
			ActionURL: "/",
		})
		if created {
			s.markToday(ctx, domain.NotificationUtilizationAlert, lead.Name)
			metrics.ThresholdAlertsTotal.WithLabelValues(string(domain.NotificationUtilizationAlert), "created").Inc()
		} else {
			metrics.ThresholdAlertsTotal.WithLabelValues(string(domain.NotificationUtilizationAlert), "dedup").Inc()
		}
	}
}

func (s *ThresholdScanner) seenToday(ctx context.Context, kind domain.NotificationType, subject string) bool {
	if s.dedup == nil {
		return false
	}
	seen, err := s.dedup.SeenToday(ctx, kind, subject, s.now().UTC())
	if err != nil {
		// The in-memory same-day check still applies, so scan anyway.
		s.log.Warn().Err(err).Str("subject", subject).Msg("alert dedup check failed")
		return false
	}
	return seen
}

func (s *ThresholdScanner) markToday(ctx context.Context, kind domain.NotificationType, subject string) {
	if s.dedup == nil {
		return
	}
	if err := s.dedup.MarkToday(ctx, kind, subject, s.now().UTC()); err != nil {
		s.log.Warn().Err(err).Str("subject", subject).Msg("failed to set alert dedup marker")
	}
}
