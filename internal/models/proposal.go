package models

import "fmt"

// ActionProposal is a proposed remediation produced by the reasoning
// agent. Confidence is a closed interval [0,100]; construction fails
// outside it.
type ActionProposal struct {
	Action     string         `json:"action"`
	Reason     string         `json:"reason"`
	Confidence int            `json:"confidence"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// NewActionProposal validates the confidence interval and returns the
// proposal.
func NewActionProposal(action, reason string, confidence int, metadata map[string]any) (ActionProposal, error) {
	p := ActionProposal{Action: action, Reason: reason, Confidence: confidence, Metadata: metadata}
	if err := p.Validate(); err != nil {
		return ActionProposal{}, err
	}
	return p, nil
}

// Validate enforces the confidence invariant.
func (p ActionProposal) Validate() error {
	if p.Confidence < 0 || p.Confidence > 100 {
		return &ValidationError{
			Entity: "action_proposal",
			Reason: fmt.Sprintf("confidence %d outside [0,100]", p.Confidence),
		}
	}
	return nil
}

// Action is an executable remediation request dispatched by the
// executor.
type Action struct {
	Type   string         `json:"type"`
	Params map[string]any `json:"params,omitempty"`
}

// ExecutionResult reports the outcome of a single action dispatch.
type ExecutionResult struct {
	Success    bool   `json:"success"`
	ActionType string `json:"action_type"`
	Details    any    `json:"details"`
}
