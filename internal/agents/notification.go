package agents

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sentinelstack/sentinel-agents/internal/models"
)

// WebhookPoster posts a text message to the chat webhook.
type WebhookPoster interface {
	Configured() bool
	Post(ctx context.Context, message string) error
}

// Notification sends human-readable escalations to the chat webhook.
// One attempt per call; the boolean result reports whether the post
// succeeded.
type Notification struct {
	webhook WebhookPoster
	logger  *slog.Logger
}

func NewNotification(webhook WebhookPoster, logger *slog.Logger) *Notification {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notification{webhook: webhook, logger: logger}
}

// Notify escalates an incident with a reason.
func (n *Notification) Notify(ctx context.Context, incident models.Context, reason string) bool {
	message := fmt.Sprintf(
		":rotating_light: *SRE Escalation* :rotating_light:\nIncident ID: %s\nSeverity: %s\nReason: %s\nEnvironment: %s",
		incident.IncidentID, incident.Severity, reason, incident.Environment,
	)
	return n.post(ctx, incident, reason, message)
}

// NotifyWithSolution escalates a proposal that policy declined to
// auto-execute, asking a human to review it.
func (n *Notification) NotifyWithSolution(ctx context.Context, incident models.Context, proposal models.ActionProposal, verdict models.PolicyVerdict) bool {
	message := fmt.Sprintf(
		":rotating_light: Incident: %s\n:mag: Classification: %s\n:robot_face: Proposed Solution:\n  %s\n:x: Action NOT auto-executed (policy: %s)\n:bust_in_silhouette: Please review and approve or escalate.",
		incident.IncidentID, proposal.Action, proposal.Reason, verdict.Reason,
	)
	return n.post(ctx, incident, proposal.Reason, message)
}

func (n *Notification) post(ctx context.Context, incident models.Context, reason, message string) bool {
	if n.webhook == nil || !n.webhook.Configured() {
		n.logNotification(incident, reason, false, "webhook not configured")
		return false
	}

	if err := n.webhook.Post(ctx, message); err != nil {
		n.logNotification(incident, reason, false, err.Error())
		return false
	}
	n.logNotification(incident, reason, true, "")
	return true
}

func (n *Notification) logNotification(incident models.Context, reason string, success bool, details string) {
	level := slog.LevelInfo
	if !success {
		level = slog.LevelError
	}
	n.logger.Log(context.Background(), level, "notification_sent",
		"incident_id", incident.IncidentID,
		"severity", incident.Severity,
		"reason", reason,
		"success", success,
		"details", details,
	)
}
