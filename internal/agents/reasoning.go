package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sentinelstack/sentinel-agents/internal/llm"
	"github.com/sentinelstack/sentinel-agents/internal/models"
)

// Reasoning produces an ActionProposal for a signed envelope via the
// external reasoning tool. Failures never reach the caller: every
// failure path yields the fallback proposal {action: none, confidence:
// 0} carrying the error text.
type Reasoning struct {
	runner llm.Runner
	logger *slog.Logger
}

func NewReasoning(runner llm.Runner, logger *slog.Logger) *Reasoning {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reasoning{runner: runner, logger: logger}
}

// Reason builds the remediation prompt, runs the external tool and
// parses the response into an ActionProposal.
func (r *Reasoning) Reason(ctx context.Context, env models.Envelope, snippets []models.Snippet, examples []models.Example) models.ActionProposal {
	prompt := buildReasoningPrompt(env, snippets, examples)

	if r.runner == nil {
		return r.fallback(env, "no reasoning runner configured")
	}

	result, err := r.runner.Run(ctx, prompt)
	if err != nil {
		return r.fallback(env, err.Error())
	}

	proposal, err := parseProposal(result.Output)
	if err != nil {
		return r.fallback(env, err.Error())
	}

	r.logger.Info("action_proposed",
		"envelope_id", env.EnvelopeID,
		"action", proposal.Action,
		"confidence", proposal.Confidence,
		"reason", proposal.Reason,
	)
	return proposal
}

func (r *Reasoning) fallback(env models.Envelope, detail string) models.ActionProposal {
	r.logger.Error("reasoning failed", "envelope_id", env.EnvelopeID, "error", detail)
	return models.ActionProposal{Action: "none", Reason: detail, Confidence: 0}
}

// parseProposal extracts the proposal JSON from the raw model output
// using the lenient outermost-brace scan, then enforces the confidence
// interval.
func parseProposal(raw string) (models.ActionProposal, error) {
	payload, err := llm.ExtractJSON(raw)
	if err != nil {
		return models.ActionProposal{}, err
	}

	confidence, err := llm.IntField(payload, "confidence")
	if err != nil {
		return models.ActionProposal{}, err
	}
	return models.NewActionProposal(
		llm.StringField(payload, "action", "none"),
		llm.StringField(payload, "reason", "No reason provided"),
		confidence,
		payload,
	)
}

func buildReasoningPrompt(env models.Envelope, snippets []models.Snippet, examples []models.Example) string {
	signalJSON, _ := json.Marshal(env.PayloadSignal())
	contextJSON, _ := json.Marshal(env.PayloadContext())
	snippetsJSON, _ := json.Marshal(snippets)
	examplesJSON, _ := json.Marshal(examples)

	var b strings.Builder
	b.WriteString("You are an SRE agent.\n\n")
	fmt.Fprintf(&b, "Incident: %s\n\n", signalJSON)
	fmt.Fprintf(&b, "Context: %s\n\n", contextJSON)
	fmt.Fprintf(&b, "Query Class: %s\n\n", env.QueryClass())
	fmt.Fprintf(&b, "Relevant Docs: %s\n\n", snippetsJSON)
	fmt.Fprintf(&b, "Examples: %s\n\n", examplesJSON)
	b.WriteString("Propose a safe, minimal action.\n\n")
	b.WriteString(`Respond as JSON matching schema: {"action": "...", "reason": "...", "confidence": 0-100}`)
	return b.String()
}
