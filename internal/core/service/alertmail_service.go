package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/rs/zerolog"

	"github.com/clientmax/agency-crm/internal/api/metrics"
	"github.com/clientmax/agency-crm/internal/core/domain"
	"github.com/clientmax/agency-crm/internal/core/ports"
)

// AlertEmailRequest is one threshold-email dispatch.
type AlertEmailRequest struct {
	NotificationType  domain.NotificationType
	RecipientEmail    string
	RecipientName     string
	ThresholdType     string
	ThresholdValue    float64
	ActualValue       float64
	ClientName        string
	TeamLeadName      string
	Department        string
	AdditionalDetails string
}

var feedbackAlertTmpl = template.Must(template.New("feedback_alert").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <div style="background: #dc2626; padding: 20px; text-align: center;">
    <h1 style="color: white; margin: 0;">Feedback Alert</h1>
  </div>
  <div style="padding: 30px; background: #f9fafb;">
    <h2 style="color: #1f2937;">Low Client Feedback Score Detected</h2>
    <div style="background: white; padding: 20px; border-left: 4px solid #ef4444;">
      <p><strong>Client:</strong> {{if .ClientName}}{{.ClientName}}{{else}}Unknown{{end}}</p>
      <p><strong>Feedback Score:</strong> {{.ActualValue}}/10</p>
      <p><strong>Threshold:</strong> Below {{.ThresholdValue}}/10</p>
      {{if .AdditionalDetails}}<p><strong>Details:</strong> {{.AdditionalDetails}}</p>{{end}}
    </div>
    <p style="color: #92400e;"><strong>Recommended Action:</strong> Schedule a call with the client to understand their concerns.</p>
  </div>
</div>`))

var utilizationAlertTmpl = template.Must(template.New("utilization_alert").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <div style="background: #d97706; padding: 20px; text-align: center;">
    <h1 style="color: white; margin: 0;">Utilization Alert</h1>
  </div>
  <div style="padding: 30px; background: #f9fafb;">
    <h2 style="color: #1f2937;">Team Utilization Below Threshold</h2>
    <div style="background: white; padding: 20px; border-left: 4px solid #f59e0b;">
      <p><strong>Team Lead:</strong> {{if .TeamLeadName}}{{.TeamLeadName}}{{else}}Unknown{{end}}</p>
      <p><strong>Department:</strong> {{if .Department}}{{.Department}}{{else}}Unknown{{end}}</p>
      <p><strong>Current Utilization:</strong> {{.ActualValue}}%</p>
      <p><strong>Threshold:</strong> Below {{.ThresholdValue}}%</p>
    </div>
    <p style="color: #92400e;"><strong>Recommended Action:</strong> Review team capacity and consider reallocating resources.</p>
  </div>
</div>`))

var criticalAlertTmpl = template.Must(template.New("critical_alert").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <div style="background: #991b1b; padding: 20px; text-align: center;">
    <h1 style="color: white; margin: 0;">Critical Alert</h1>
  </div>
  <div style="padding: 30px; background: #f9fafb;">
    <h2 style="color: #1f2937;">Immediate Attention Required</h2>
    <div style="background: white; padding: 20px; border-left: 4px solid #dc2626;">
      <p><strong>Alert Type:</strong> {{.ThresholdType}}</p>
      <p><strong>Current Value:</strong> {{.ActualValue}}</p>
      <p><strong>Expected Threshold:</strong> {{.ThresholdValue}}</p>
      {{if .ClientName}}<p><strong>Client:</strong> {{.ClientName}}</p>{{end}}
      {{if .AdditionalDetails}}<p><strong>Details:</strong> {{.AdditionalDetails}}</p>{{end}}
    </div>
    <p style="color: #991b1b;"><strong>Action Required:</strong> This alert requires immediate attention.</p>
  </div>
</div>`))

// AlertMailService renders a threshold email from one of three templates,
// dispatches it through the email provider (single-shot, no retry) and
// records the send in the audit table.
type AlertMailService struct {
	sender ports.EmailSender
	audit  ports.EmailLogRepository
	log    zerolog.Logger
	now    func() time.Time
}

func NewAlertMailService(sender ports.EmailSender, audit ports.EmailLogRepository, log zerolog.Logger) *AlertMailService {
	return &AlertMailService{sender: sender, audit: audit, log: log, now: time.Now}
}

// Send renders and dispatches the email. The audit insert is non-fatal: a
// failed log line never undoes a sent email.
func (s *AlertMailService) Send(ctx context.Context, req AlertEmailRequest) error {
	subject, html, err := render(req)
	if err != nil {
		return err
	}

	status := "sent"
	sendErr := s.sender.Send(ctx, ports.EmailMessage{
		To:      req.RecipientEmail,
		ToName:  req.RecipientName,
		Subject: subject,
		HTML:    html,
	})
	if sendErr != nil {
		status = "failed"
	}
	metrics.AlertEmailsTotal.WithLabelValues(status).Inc()

	if s.audit != nil {
		entry := domain.EmailLogEntry{
			NotificationType: req.NotificationType,
			RecipientEmail:   req.RecipientEmail,
			ThresholdType:    req.ThresholdType,
			ThresholdValue:   req.ThresholdValue,
			ActualValue:      req.ActualValue,
			Status:           status,
			SentAt:           s.now().UTC(),
		}
		if err := s.audit.Insert(ctx, entry); err != nil {
			s.log.Warn().Err(err).Str("recipient", req.RecipientEmail).Msg("failed to record email audit entry")
		}
	}

	if sendErr != nil {
		return fmt.Errorf("send threshold email: %w", sendErr)
	}
	s.log.Info().
		Str("type", string(req.NotificationType)).
		Str("recipient", req.RecipientEmail).
		Msg("threshold email sent")
	return nil
}

func render(req AlertEmailRequest) (subject, html string, err error) {
	var tmpl *template.Template
	switch req.NotificationType {
	case domain.NotificationFeedbackAlert:
		client := req.ClientName
		if client == "" {
			client = "Client"
		}
		subject = fmt.Sprintf("Low Client Feedback Score Alert - %s", client)
		tmpl = feedbackAlertTmpl
	case domain.NotificationUtilizationAlert:
		dept := req.Department
		if dept == "" {
			dept = "Department"
		}
		subject = fmt.Sprintf("Team Utilization Alert - %s", dept)
		tmpl = utilizationAlertTmpl
	case domain.NotificationCriticalAlert:
		subject = "Critical Alert - Immediate Attention Required"
		tmpl = criticalAlertTmpl
	default:
		return "", "", fmt.Errorf("%w: notification type %q", domain.ErrInvalidAction, req.NotificationType)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, req); err != nil {
		return "", "", fmt.Errorf("render %s template: %w", req.NotificationType, err)
	}
	return subject, buf.String(), nil
}
