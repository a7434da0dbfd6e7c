// Package agents implements the incident-response agents. Each agent
// performs one bounded unit of work and contains its collaborator
// failures rather than propagating them.
package agents

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sentinelstack/sentinel-agents/internal/llm"
	"github.com/sentinelstack/sentinel-agents/internal/models"
)

// Classification methods reported alongside the query class.
const (
	MethodRules   = "rules_engine"
	MethodLLM     = "llm"
	MethodDefault = "default"
)

// Rule maps a signal/context condition onto a query class. Contains is
// matched case-insensitively against the signal message; Severity, when
// set, must equal the context severity. Empty conditions always hold.
type Rule struct {
	ID       string `yaml:"id"`
	Contains string `yaml:"contains"`
	Severity string `yaml:"severity"`
	Class    string `yaml:"class"`
}

// Matches evaluates the rule against a signal/context pair.
func (r Rule) Matches(signal models.Signal, incident models.Context) bool {
	if r.Contains != "" && !strings.Contains(strings.ToLower(signal.Message), strings.ToLower(r.Contains)) {
		return false
	}
	if r.Severity != "" && !strings.EqualFold(incident.Severity, r.Severity) {
		return false
	}
	return r.Class != ""
}

// DefaultRules returns the built-in rule table. Order is significant:
// the first matching rule wins and no later rule is evaluated.
func DefaultRules() []Rule {
	return []Rule{
		{ID: "cpu-critical", Contains: "cpu", Severity: "critical", Class: "scale"},
		{ID: "unhealthy", Contains: "unhealthy", Class: "restart"},
		{ID: "warning-severity", Severity: "warning", Class: "investigate"},
	}
}

// LoadRules reads an operator rule pack from a YAML file. A missing
// path yields no rules and no error.
func LoadRules(path string) ([]Rule, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read rule pack %s: %w", path, err)
	}
	var pack struct {
		Rules []Rule `yaml:"rules"`
	}
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("parse rule pack %s: %w", path, err)
	}
	return pack.Rules, nil
}

// Classifier assigns a query class to a signal/context pair using an
// ordered rule table with an optional LLM fallback.
type Classifier struct {
	rules  []Rule
	runner llm.Runner
	logger *slog.Logger
}

// NewClassifier builds a classifier. A nil runner disables the LLM
// fallback; unmatched signals then classify as "unknown".
func NewClassifier(rules []Rule, runner llm.Runner, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{
		rules:  append([]Rule(nil), rules...),
		runner: runner,
		logger: logger,
	}
}

// fallbackClasses drives the substring mapping of free-text LLM answers.
var fallbackClasses = []string{"scale", "restart", "investigate", "other"}

// Classify returns the query class and the method that produced it.
// Malformed inputs fail with a validation error; fallback failures do
// not, they classify as "other".
func (c *Classifier) Classify(ctx context.Context, signal models.Signal, incident models.Context) (string, string, error) {
	if err := signal.Validate(); err != nil {
		return "", "", err
	}
	if err := incident.Validate(); err != nil {
		return "", "", err
	}

	for _, rule := range c.rules {
		if rule.Matches(signal, incident) {
			c.logClassification(signal, incident, rule.Class, MethodRules)
			return rule.Class, MethodRules, nil
		}
	}

	if c.runner != nil {
		class := c.classifyWithLLM(ctx, signal, incident)
		c.logClassification(signal, incident, class, MethodLLM)
		return class, MethodLLM, nil
	}

	c.logClassification(signal, incident, "unknown", MethodDefault)
	return "unknown", MethodDefault, nil
}

func (c *Classifier) classifyWithLLM(ctx context.Context, signal models.Signal, incident models.Context) string {
	prompt := fmt.Sprintf(
		"Incident: %s\n\nSeverity: %s\nEnvironment: %s\n\nClassify this incident as one of: scale, restart, investigate, other.\nRespond with only the class name.",
		signal.Message, incident.Severity, incident.Environment,
	)
	result, err := c.runner.Run(ctx, prompt)
	if err != nil {
		c.logger.Error("llm classification failed", "incident_id", incident.IncidentID, "error", err)
		return "other"
	}

	response := strings.ToLower(strings.TrimSpace(result.Output))
	for _, class := range fallbackClasses {
		if strings.Contains(response, class) {
			return class
		}
	}
	return "other"
}

func (c *Classifier) logClassification(signal models.Signal, incident models.Context, class, method string) {
	c.logger.Info("incident_classified",
		"incident_id", incident.IncidentID,
		"query_class", class,
		"method", method,
		"severity", incident.Severity,
		"environment", incident.Environment,
		"signal_source", signal.Source,
		"signal_type", signal.Type,
		"signal_message", signal.Message,
	)
}
