package agents

import (
	"context"
	"log/slog"

	"github.com/sentinelstack/sentinel-agents/internal/models"
)

// PolicyChecker submits a proposal to the policy engine.
type PolicyChecker interface {
	Check(ctx context.Context, proposal models.ActionProposal) (models.PolicyVerdict, error)
}

// Policy gates remediation on a policy engine verdict. Any failure to
// consult the engine is a deny: fail-closed, never fail-open.
type Policy struct {
	checker PolicyChecker
	logger  *slog.Logger
}

func NewPolicy(checker PolicyChecker, logger *slog.Logger) *Policy {
	if logger == nil {
		logger = slog.Default()
	}
	return &Policy{checker: checker, logger: logger}
}

// Check returns the engine verdict, or a deny verdict carrying the
// error text when the engine cannot be consulted. Every call emits a
// policy_verdict audit entry.
func (p *Policy) Check(ctx context.Context, proposal models.ActionProposal) models.PolicyVerdict {
	var verdict models.PolicyVerdict
	if p.checker == nil {
		verdict = models.DenyVerdict("policy checker not configured")
	} else {
		var err error
		verdict, err = p.checker.Check(ctx, proposal)
		if err != nil {
			verdict = models.DenyVerdict(err.Error())
		}
	}

	level := slog.LevelInfo
	if !verdict.Admit {
		level = slog.LevelWarn
	}
	p.logger.Log(ctx, level, "policy_verdict",
		"action", proposal.Action,
		"admit", verdict.Admit,
		"reason", verdict.Reason,
		"confidence", verdict.Confidence,
	)
	return verdict
}
