package agents

import (
	"context"
	"log/slog"

	"github.com/sentinelstack/sentinel-agents/internal/models"
)

// ExampleFetcher supplies organisation-specific remediation examples
// for an incident and its grounding snippets.
type ExampleFetcher func(ctx context.Context, incident models.Context, snippets []models.Snippet) ([]models.Example, error)

// Personalization enriches grounding output with remediation examples.
// Same containment policy as Grounding: failures produce an empty
// slice, never an error.
type Personalization struct {
	fetch  ExampleFetcher
	logger *slog.Logger
}

func NewPersonalization(fetch ExampleFetcher, logger *slog.Logger) *Personalization {
	if logger == nil {
		logger = slog.Default()
	}
	return &Personalization{fetch: fetch, logger: logger}
}

// defaultExamples are served when no fetcher is injected.
var defaultExamples = []models.Example{
	{Example: "When CPU is high, scale up the node pool as per policy X."},
	{Example: "If pod is unhealthy, restart using standard operating procedure Y."},
}

// Personalize returns remediation examples for the incident. Inputs
// are never mutated.
func (p *Personalization) Personalize(ctx context.Context, incident models.Context, snippets []models.Snippet) []models.Example {
	var examples []models.Example
	if p.fetch != nil {
		fetched, err := p.fetch(ctx, incident, snippets)
		if err != nil {
			p.logger.Warn("personalization failed", "incident_id", incident.IncidentID, "error", err)
			return nil
		}
		examples = fetched
	} else {
		examples = append(examples, defaultExamples...)
	}

	p.logger.Info("personalization_injected",
		"incident_id", incident.IncidentID,
		"num_examples", len(examples),
	)
	return examples
}
