package models

import "time"

// FlowRecord captures one incident's full pass through the pipeline.
// It is the audit trail consumed by the offline judge.
type FlowRecord struct {
	FlowID      string           `json:"flow_id"`
	Signal      Signal           `json:"signal"`
	Context     Context          `json:"context"`
	QueryClass  string           `json:"query_class"`
	ClassMethod string           `json:"class_method"`
	Snippets    []Snippet        `json:"snippets,omitempty"`
	Examples    []Example        `json:"examples,omitempty"`
	Envelope    Envelope         `json:"envelope"`
	Proposal    ActionProposal   `json:"proposal"`
	Verdict     PolicyVerdict    `json:"verdict"`
	Execution   ExecutionResult  `json:"execution,omitempty"`
	Validation  ValidationReport `json:"validation,omitempty"`
	Notified    bool             `json:"notified"`
	StartedAt   time.Time        `json:"started_at"`
	CompletedAt time.Time        `json:"completed_at"`
}

// JudgeScore is the offline evaluation of a replayed flow.
type JudgeScore struct {
	Score    int    `json:"score"`
	Comments string `json:"comments"`
	Method   string `json:"method"`
}
