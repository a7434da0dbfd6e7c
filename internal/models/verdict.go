package models

// PolicyVerdict is the outcome of submitting an ActionProposal to the
// policy engine. The raw engine response is retained for audit.
type PolicyVerdict struct {
	Admit      bool           `json:"admit"`
	Reason     string         `json:"reason"`
	Confidence float64        `json:"confidence"`
	Raw        map[string]any `json:"opa_result"`
}

// DenyVerdict builds the fail-closed verdict used whenever the policy
// engine cannot be consulted.
func DenyVerdict(reason string) PolicyVerdict {
	return PolicyVerdict{Admit: false, Reason: reason, Confidence: 0, Raw: map[string]any{}}
}

// ValidationReport aggregates the outcomes of post-execution checks
// under named keys. Partial results are retained when a check fails.
type ValidationReport struct {
	Success bool           `json:"success"`
	Results map[string]any `json:"results"`
	Error   string         `json:"error,omitempty"`
}
