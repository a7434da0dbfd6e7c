package models

import (
	"errors"
	"testing"
)

func TestNewActionProposalBounds(t *testing.T) {
	for _, confidence := range []int{-1, 101, 1000, -50} {
		_, err := NewActionProposal("scale", "cpu saturated", confidence, nil)
		if err == nil {
			t.Fatalf("expected error for confidence %d", confidence)
		}
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %T", err)
		}
	}

	for _, confidence := range []int{0, 100, 55} {
		p, err := NewActionProposal("restart", "pod crash", confidence, nil)
		if err != nil {
			t.Fatalf("unexpected error for confidence %d: %v", confidence, err)
		}
		if p.Confidence != confidence {
			t.Fatalf("confidence mismatch: got %d", p.Confidence)
		}
	}
}

func TestSignalValidate(t *testing.T) {
	s := Signal{Source: "monitor", Type: "cpu", Message: "CPU usage high", Timestamp: "2024-01-01T00:00:00Z"}
	if err := s.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s.Message = ""
	if err := s.Validate(); err == nil {
		t.Fatalf("expected error for missing message")
	}
}

func TestContextValidate(t *testing.T) {
	c := Context{IncidentID: "INC-1", Severity: "critical", Environment: "prod", DetectedAt: "2024-01-01T00:00:00Z"}
	if err := c.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c.IncidentID = ""
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for missing incident_id")
	}
}

func TestEnvelopeHelpers(t *testing.T) {
	env := Envelope{
		EnvelopeID: "env-1",
		Payload: map[string]any{
			"signal":      map[string]any{"message": "CPU usage high"},
			"query_class": "scale",
		},
	}
	if env.Signed() {
		t.Fatalf("expected unsigned envelope")
	}
	if env.QueryClass() != "scale" {
		t.Fatalf("query class mismatch: %q", env.QueryClass())
	}
	if env.PayloadSignal() == nil {
		t.Fatalf("expected signal section")
	}
	if env.PayloadContext() != nil {
		t.Fatalf("expected nil context section")
	}
}
