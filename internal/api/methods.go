package api

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/sentinelstack/sentinel-agents/internal/agents"
	"github.com/sentinelstack/sentinel-agents/internal/models"
)

// Method handles one JSON-RPC method. Validation failures map to
// invalid-params errors; contained agent failures surface inside the
// result, per the containment policy.
type Method func(ctx context.Context, params json.RawMessage) (any, *RPCError)

func decodeParams(params json.RawMessage, into any) *RPCError {
	if len(params) == 0 {
		return NewError(CodeInvalidParams, "params are required")
	}
	if err := json.Unmarshal(params, into); err != nil {
		return NewError(CodeInvalidParams, "malformed params: "+err.Error())
	}
	return nil
}

func agentError(err error) *RPCError {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return NewError(CodeInvalidParams, verr.Error())
	}
	return NewError(CodeInternalError, err.Error())
}

// ClassifyMethod exposes Classifier.Classify.
func ClassifyMethod(c *agents.Classifier) Method {
	return func(ctx context.Context, params json.RawMessage) (any, *RPCError) {
		var p struct {
			Signal  models.Signal  `json:"signal"`
			Context models.Context `json:"context"`
		}
		if rpcErr := decodeParams(params, &p); rpcErr != nil {
			return nil, rpcErr
		}
		class, method, err := c.Classify(ctx, p.Signal, p.Context)
		if err != nil {
			return nil, agentError(err)
		}
		return map[string]any{"query_class": class, "method": method}, nil
	}
}

// GroundMethod exposes Grounding.Ground.
func GroundMethod(g *agents.Grounding) Method {
	return func(ctx context.Context, params json.RawMessage) (any, *RPCError) {
		var p struct {
			Signal     models.Signal `json:"signal"`
			QueryClass string        `json:"query_class"`
		}
		if rpcErr := decodeParams(params, &p); rpcErr != nil {
			return nil, rpcErr
		}
		snippets := g.Ground(ctx, p.Signal, p.QueryClass)
		return map[string]any{"snippets": snippets}, nil
	}
}

// PersonalizeMethod exposes Personalization.Personalize.
func PersonalizeMethod(p *agents.Personalization) Method {
	return func(ctx context.Context, params json.RawMessage) (any, *RPCError) {
		var in struct {
			Context  models.Context   `json:"context"`
			Snippets []models.Snippet `json:"snippets"`
		}
		if rpcErr := decodeParams(params, &in); rpcErr != nil {
			return nil, rpcErr
		}
		examples := p.Personalize(ctx, in.Context, in.Snippets)
		return map[string]any{"examples": examples}, nil
	}
}

// OrchestrateMethod exposes Orchestrator.Orchestrate.
func OrchestrateMethod(o *agents.Orchestrator) Method {
	return func(ctx context.Context, params json.RawMessage) (any, *RPCError) {
		var p struct {
			Envelope models.Envelope `json:"envelope"`
		}
		if rpcErr := decodeParams(params, &p); rpcErr != nil {
			return nil, rpcErr
		}
		env, err := o.Orchestrate(ctx, p.Envelope)
		if err != nil {
			return nil, agentError(err)
		}
		return env, nil
	}
}

// ReasonMethod exposes Reasoning.Reason.
func ReasonMethod(r *agents.Reasoning) Method {
	return func(ctx context.Context, params json.RawMessage) (any, *RPCError) {
		var p struct {
			Envelope models.Envelope  `json:"envelope"`
			Snippets []models.Snippet `json:"snippets"`
			Examples []models.Example `json:"examples"`
		}
		if rpcErr := decodeParams(params, &p); rpcErr != nil {
			return nil, rpcErr
		}
		return r.Reason(ctx, p.Envelope, p.Snippets, p.Examples), nil
	}
}

// PolicyCheckMethod exposes Policy.Check.
func PolicyCheckMethod(p *agents.Policy) Method {
	return func(ctx context.Context, params json.RawMessage) (any, *RPCError) {
		var in struct {
			Proposal models.ActionProposal `json:"proposal"`
		}
		if rpcErr := decodeParams(params, &in); rpcErr != nil {
			return nil, rpcErr
		}
		if err := in.Proposal.Validate(); err != nil {
			return nil, agentError(err)
		}
		return p.Check(ctx, in.Proposal), nil
	}
}

// ExecuteMethod exposes Executor.Execute.
func ExecuteMethod(e *agents.Executor) Method {
	return func(ctx context.Context, params json.RawMessage) (any, *RPCError) {
		var p struct {
			Action models.Action `json:"action"`
		}
		if rpcErr := decodeParams(params, &p); rpcErr != nil {
			return nil, rpcErr
		}
		return e.Execute(ctx, p.Action), nil
	}
}

// ValidateMethod exposes Validator.Validate.
func ValidateMethod(v *agents.Validator) Method {
	return func(ctx context.Context, params json.RawMessage) (any, *RPCError) {
		var p struct {
			Incident models.Context `json:"incident"`
		}
		if rpcErr := decodeParams(params, &p); rpcErr != nil {
			return nil, rpcErr
		}
		return v.Validate(ctx, p.Incident), nil
	}
}

// NotifyMethod exposes Notification.Notify.
func NotifyMethod(n *agents.Notification) Method {
	return func(ctx context.Context, params json.RawMessage) (any, *RPCError) {
		var p struct {
			Incident models.Context `json:"incident"`
			Reason   string         `json:"reason"`
		}
		if rpcErr := decodeParams(params, &p); rpcErr != nil {
			return nil, rpcErr
		}
		ok := n.Notify(ctx, p.Incident, p.Reason)
		return map[string]any{"success": ok}, nil
	}
}

// NotifyWithSolutionMethod exposes Notification.NotifyWithSolution.
func NotifyWithSolutionMethod(n *agents.Notification) Method {
	return func(ctx context.Context, params json.RawMessage) (any, *RPCError) {
		var p struct {
			Incident models.Context        `json:"incident"`
			Proposal models.ActionProposal `json:"proposal"`
			Verdict  models.PolicyVerdict  `json:"verdict"`
		}
		if rpcErr := decodeParams(params, &p); rpcErr != nil {
			return nil, rpcErr
		}
		ok := n.NotifyWithSolution(ctx, p.Incident, p.Proposal, p.Verdict)
		return map[string]any{"success": ok}, nil
	}
}

// IngestMethod exposes Watcher.Ingest (direct mode).
func IngestMethod(w *agents.Watcher) Method {
	return func(ctx context.Context, params json.RawMessage) (any, *RPCError) {
		var raw map[string]any
		if rpcErr := decodeParams(params, &raw); rpcErr != nil {
			return nil, rpcErr
		}
		status, err := w.Ingest(ctx, raw)
		if err != nil {
			return nil, agentError(err)
		}
		return map[string]any{"status": status}, nil
	}
}

// JudgeMethod exposes Judge.Judge.
func JudgeMethod(j *agents.Judge) Method {
	return func(ctx context.Context, params json.RawMessage) (any, *RPCError) {
		var p struct {
			Flow models.FlowRecord `json:"flow"`
		}
		if rpcErr := decodeParams(params, &p); rpcErr != nil {
			return nil, rpcErr
		}
		return j.Judge(ctx, p.Flow), nil
	}
}
