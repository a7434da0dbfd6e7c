package agents

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sentinelstack/sentinel-agents/internal/models"
)

func TestNotifySuccess(t *testing.T) {
	webhook := &stubWebhook{configured: true}
	n := NewNotification(webhook, nil)

	if !n.Notify(context.Background(), testContext(), "manual review required") {
		t.Fatalf("expected success")
	}
	if len(webhook.messages) != 1 {
		t.Fatalf("expected one message, got %d", len(webhook.messages))
	}
	msg := webhook.messages[0]
	for _, want := range []string{"INC-1", "critical", "manual review required"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestNotifyPostFailure(t *testing.T) {
	webhook := &stubWebhook{configured: true, err: errors.New("invalid_token")}
	n := NewNotification(webhook, nil)

	if n.Notify(context.Background(), testContext(), "reason") {
		t.Fatalf("expected failure")
	}
}

func TestNotifyUnconfigured(t *testing.T) {
	n := NewNotification(&stubWebhook{configured: false}, nil)
	if n.Notify(context.Background(), testContext(), "reason") {
		t.Fatalf("expected failure when webhook is not configured")
	}
}

func TestNotifyWithSolution(t *testing.T) {
	webhook := &stubWebhook{configured: true}
	n := NewNotification(webhook, nil)

	proposal := models.ActionProposal{Action: "scale", Reason: "add two replicas", Confidence: 85}
	verdict := models.DenyVerdict("outside change window")
	if !n.NotifyWithSolution(context.Background(), testContext(), proposal, verdict) {
		t.Fatalf("expected success")
	}
	msg := webhook.messages[0]
	for _, want := range []string{"scale", "add two replicas", "outside change window", "NOT auto-executed"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing %q:\n%s", want, msg)
		}
	}
}
