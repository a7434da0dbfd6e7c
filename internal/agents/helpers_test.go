package agents

import (
	"context"

	"github.com/sentinelstack/sentinel-agents/internal/llm"
	"github.com/sentinelstack/sentinel-agents/internal/models"
)

type stubRunner struct {
	output string
	err    error
	calls  int
}

func (s *stubRunner) Run(_ context.Context, _ string) (llm.Result, error) {
	s.calls++
	if s.err != nil {
		return llm.Result{ExitCode: 1, Stderr: s.err.Error()}, s.err
	}
	return llm.Result{Output: s.output}, nil
}

type stubChecker struct {
	verdict models.PolicyVerdict
	err     error
}

func (s *stubChecker) Check(context.Context, models.ActionProposal) (models.PolicyVerdict, error) {
	return s.verdict, s.err
}

type stubStore struct {
	saved []models.Envelope
	err   error
}

func (s *stubStore) Save(_ context.Context, env models.Envelope) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, env)
	return nil
}

func (s *stubStore) List(context.Context, int) ([]models.Envelope, error) {
	return s.saved, nil
}

func (s *stubStore) Close() error { return nil }

type stubWebhook struct {
	configured bool
	err        error
	messages   []string
}

func (s *stubWebhook) Configured() bool { return s.configured }

func (s *stubWebhook) Post(_ context.Context, message string) error {
	if s.err != nil {
		return s.err
	}
	s.messages = append(s.messages, message)
	return nil
}

func testSignal() models.Signal {
	return models.Signal{
		Source:    "monitor",
		Type:      "cpu",
		Message:   "CPU usage high",
		Timestamp: "2024-01-01T00:00:00Z",
	}
}

func testContext() models.Context {
	return models.Context{
		IncidentID:  "INC-1",
		Severity:    "critical",
		Environment: "prod",
		DetectedAt:  "2024-01-01T00:00:00Z",
	}
}
