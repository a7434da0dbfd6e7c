package agents

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sentinelstack/sentinel-agents/internal/models"
	"github.com/sentinelstack/sentinel-agents/internal/utils"
)

func TestClassifyFirstMatchWins(t *testing.T) {
	c := NewClassifier(DefaultRules(), nil, nil)

	// Matches both the cpu+critical rule and, by severity alone,
	// nothing later; the first rule must win without evaluating the
	// rest.
	signal := testSignal()
	signal.Message = "CPU usage high and pod unhealthy"

	class, method, err := c.Classify(context.Background(), signal, testContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if class != "scale" {
		t.Fatalf("expected scale, got %s", class)
	}
	if method != MethodRules {
		t.Fatalf("expected rules_engine, got %s", method)
	}
}

func TestClassifyUnhealthyRule(t *testing.T) {
	c := NewClassifier(DefaultRules(), nil, nil)
	signal := testSignal()
	signal.Message = "pod reported unhealthy"
	incident := testContext()
	incident.Severity = "info"

	class, method, err := c.Classify(context.Background(), signal, incident)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if class != "restart" || method != MethodRules {
		t.Fatalf("expected restart/rules_engine, got %s/%s", class, method)
	}
}

func TestClassifyWarningSeverity(t *testing.T) {
	c := NewClassifier(DefaultRules(), nil, nil)
	signal := testSignal()
	signal.Message = "latency elevated"
	incident := testContext()
	incident.Severity = "warning"

	class, _, err := c.Classify(context.Background(), signal, incident)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if class != "investigate" {
		t.Fatalf("expected investigate, got %s", class)
	}
}

func TestClassifyDefaultWhenDisabled(t *testing.T) {
	c := NewClassifier(nil, nil, nil)
	class, method, err := c.Classify(context.Background(), testSignal(), testContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if class != "unknown" || method != MethodDefault {
		t.Fatalf("expected unknown/default, got %s/%s", class, method)
	}
}

func TestClassifyLLMFallback(t *testing.T) {
	runner := &stubRunner{output: "I would Restart the pod.\n"}
	c := NewClassifier(nil, runner, nil)

	class, method, err := c.Classify(context.Background(), testSignal(), testContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if class != "restart" || method != MethodLLM {
		t.Fatalf("expected restart/llm, got %s/%s", class, method)
	}
}

func TestClassifyLLMUnmappedAnswer(t *testing.T) {
	runner := &stubRunner{output: "escalate to a human"}
	c := NewClassifier(nil, runner, nil)

	class, _, err := c.Classify(context.Background(), testSignal(), testContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if class != "other" {
		t.Fatalf("expected other, got %s", class)
	}
}

func TestClassifyLLMFailureIsOther(t *testing.T) {
	runner := &stubRunner{err: errors.New("command exited 1")}
	c := NewClassifier(nil, runner, nil)

	class, method, err := c.Classify(context.Background(), testSignal(), testContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if class != "other" || method != MethodLLM {
		t.Fatalf("expected other/llm, got %s/%s", class, method)
	}
}

func TestClassifyRulesBeforeLLM(t *testing.T) {
	runner := &stubRunner{output: "investigate"}
	c := NewClassifier(DefaultRules(), runner, nil)

	class, method, err := c.Classify(context.Background(), testSignal(), testContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if class != "scale" || method != MethodRules {
		t.Fatalf("expected scale/rules_engine, got %s/%s", class, method)
	}
	if runner.calls != 0 {
		t.Fatalf("expected no LLM call, got %d", runner.calls)
	}
}

func TestClassifyValidationError(t *testing.T) {
	c := NewClassifier(DefaultRules(), nil, nil)
	signal := testSignal()
	signal.Message = ""

	if _, _, err := c.Classify(context.Background(), signal, testContext()); err == nil {
		t.Fatalf("expected validation error")
	}

	var verr *models.ValidationError
	_, _, err := c.Classify(context.Background(), signal, testContext())
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
}

func TestLoadRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `rules:
  - id: disk-pressure
    contains: disk
    class: investigate
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write rule pack: %v", err)
	}

	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rules) != 1 || rules[0].Class != "investigate" || rules[0].Contains != "disk" {
		t.Fatalf("unexpected rules: %+v", rules)
	}
}

func TestLoadRulesMissingFile(t *testing.T) {
	rules, err := LoadRules(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rules != nil {
		t.Fatalf("expected nil rules, got %+v", rules)
	}
}

func TestLoadedRulesAppendAfterBuiltins(t *testing.T) {
	extra := []Rule{{ID: "catch-all", Contains: "cpu", Class: "other"}}
	c := NewClassifier(append(DefaultRules(), extra...), nil, nil)

	class, _, err := c.Classify(context.Background(), testSignal(), testContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if class != "scale" {
		t.Fatalf("built-in rule must win, got %s", class)
	}
}

func TestClassifyLogsSignal(t *testing.T) {
	var buf bytes.Buffer
	c := NewClassifier(DefaultRules(), nil, utils.NewLoggerTo(&buf, "info", true))

	if _, _, err := c.Classify(context.Background(), testSignal(), testContext()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log entry: %v", err)
	}
	if entry["msg"] != "incident_classified" {
		t.Fatalf("unexpected log message: %v", entry["msg"])
	}
	if entry["signal_type"] != "cpu" || entry["signal_message"] != "CPU usage high" {
		t.Fatalf("signal fields missing from log entry: %v", entry)
	}
	if entry["signal_source"] != "monitor" {
		t.Fatalf("signal source missing from log entry: %v", entry)
	}
	if entry["query_class"] != "scale" || entry["incident_id"] != "INC-1" {
		t.Fatalf("classification fields missing from log entry: %v", entry)
	}
}
