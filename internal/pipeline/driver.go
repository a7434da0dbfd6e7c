// Package pipeline sequences the agents into the end-to-end incident
// flow and records every stage outcome for audit and offline judging.
package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sentinelstack/sentinel-agents/internal/agents"
	"github.com/sentinelstack/sentinel-agents/internal/models"
)

// Driver owns one pass of the pipeline. Each stage keeps its own
// containment policy; the driver adds an overall flow timeout and the
// admit/deny routing between execution and human escalation.
type Driver struct {
	classifier      *agents.Classifier
	grounding       *agents.Grounding
	personalization *agents.Personalization
	orchestrator    *agents.Orchestrator
	reasoning       *agents.Reasoning
	policy          *agents.Policy
	executor        *agents.Executor
	validator       *agents.Validator
	notification    *agents.Notification

	flowTimeout time.Duration
	logger      *slog.Logger
	now         func() time.Time
}

// Config wires the driver's stages.
type Config struct {
	Classifier      *agents.Classifier
	Grounding       *agents.Grounding
	Personalization *agents.Personalization
	Orchestrator    *agents.Orchestrator
	Reasoning       *agents.Reasoning
	Policy          *agents.Policy
	Executor        *agents.Executor
	Validator       *agents.Validator
	Notification    *agents.Notification
	FlowTimeout     time.Duration
	Logger          *slog.Logger
}

func NewDriver(cfg Config) *Driver {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.FlowTimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Driver{
		classifier:      cfg.Classifier,
		grounding:       cfg.Grounding,
		personalization: cfg.Personalization,
		orchestrator:    cfg.Orchestrator,
		reasoning:       cfg.Reasoning,
		policy:          cfg.Policy,
		executor:        cfg.Executor,
		validator:       cfg.Validator,
		notification:    cfg.Notification,
		flowTimeout:     timeout,
		logger:          logger,
		now:             time.Now,
	}
}

// Run takes a normalised signal/context pair through every stage.
// Admitted proposals are executed and validated; denied ones are
// escalated with the proposed solution. The returned error covers only
// the deliberate fail-fast points (validation, envelope signing).
func (d *Driver) Run(ctx context.Context, signal models.Signal, incident models.Context) (models.FlowRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, d.flowTimeout)
	defer cancel()

	flow := models.FlowRecord{
		FlowID:    "flow-" + uuid.NewString(),
		Signal:    signal,
		Context:   incident,
		StartedAt: d.now().UTC(),
	}

	class, method, err := d.classifier.Classify(ctx, signal, incident)
	if err != nil {
		return flow, err
	}
	flow.QueryClass = class
	flow.ClassMethod = method

	flow.Snippets = d.grounding.Ground(ctx, signal, class)
	flow.Examples = d.personalization.Personalize(ctx, incident, flow.Snippets)

	env, err := d.orchestrator.Orchestrate(ctx, models.Envelope{
		Payload: map[string]any{
			"signal":      toMap(signal),
			"context":     toMap(incident),
			"query_class": class,
			"snippets":    flow.Snippets,
			"examples":    flow.Examples,
		},
	})
	if err != nil {
		return flow, err
	}
	flow.Envelope = env

	flow.Proposal = d.reasoning.Reason(ctx, env, flow.Snippets, flow.Examples)
	flow.Verdict = d.policy.Check(ctx, flow.Proposal)

	if flow.Verdict.Admit {
		flow.Execution = d.executor.Execute(ctx, models.Action{
			Type:   flow.Proposal.Action,
			Params: map[string]any{"incident_id": incident.IncidentID, "resource": signal.Resource},
		})
		flow.Validation = d.validator.Validate(ctx, incident)
	} else {
		flow.Notified = d.notification.NotifyWithSolution(ctx, incident, flow.Proposal, flow.Verdict)
	}

	flow.CompletedAt = d.now().UTC()
	d.logger.Info("flow_completed",
		"flow_id", flow.FlowID,
		"incident_id", incident.IncidentID,
		"query_class", flow.QueryClass,
		"action", flow.Proposal.Action,
		"admit", flow.Verdict.Admit,
		"executed", flow.Execution.Success,
		"notified", flow.Notified,
		"duration", flow.CompletedAt.Sub(flow.StartedAt),
	)
	return flow, nil
}

// toMap round-trips a typed value through JSON into the loosely typed
// payload shape envelopes carry.
func toMap(v any) map[string]any {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}
