package agents

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sentinelstack/sentinel-agents/internal/models"
)

func TestOrchestrateDefaults(t *testing.T) {
	store := &stubStore{}
	o := NewOrchestrator(store, nil, nil)

	env, err := o.Orchestrate(context.Background(), models.Envelope{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(env.EnvelopeID, "env-") {
		t.Fatalf("expected time-derived id, got %s", env.EnvelopeID)
	}
	if env.Agent != "orchestrator" {
		t.Fatalf("expected default agent, got %s", env.Agent)
	}
	if env.CreatedAt == "" || !strings.HasSuffix(env.CreatedAt, "Z") {
		t.Fatalf("expected UTC timestamp, got %q", env.CreatedAt)
	}
	if env.Payload == nil {
		t.Fatalf("expected empty payload map")
	}
	if !env.Signed() {
		t.Fatalf("expected signed envelope")
	}
	if env.Signature != "signed-"+env.EnvelopeID {
		t.Fatalf("unexpected placeholder signature: %s", env.Signature)
	}
	if len(store.saved) != 1 || !store.saved[0].Signed() {
		t.Fatalf("expected signed envelope persisted, got %+v", store.saved)
	}
}

func TestOrchestrateCustomSigner(t *testing.T) {
	signer := func(env models.Envelope) (string, error) {
		return "hmac:" + env.EnvelopeID, nil
	}
	o := NewOrchestrator(&stubStore{}, signer, nil)

	env, err := o.Orchestrate(context.Background(), models.Envelope{EnvelopeID: "env-42"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.Signature != "hmac:env-42" {
		t.Fatalf("unexpected signature: %s", env.Signature)
	}
}

func TestOrchestrateSignerError(t *testing.T) {
	signer := func(models.Envelope) (string, error) {
		return "", errors.New("kms unavailable")
	}
	o := NewOrchestrator(&stubStore{}, signer, nil)

	if _, err := o.Orchestrate(context.Background(), models.Envelope{}); err == nil {
		t.Fatalf("expected signing error to propagate")
	}
}

func TestOrchestratePersistenceFailureIsContained(t *testing.T) {
	store := &stubStore{err: errors.New("store down")}
	o := NewOrchestrator(store, nil, nil)

	env, err := o.Orchestrate(context.Background(), models.Envelope{})
	if err != nil {
		t.Fatalf("persistence failure must not fail the call: %v", err)
	}
	if !env.Signed() {
		t.Fatalf("expected signed envelope despite store failure")
	}
}

func TestOrchestrateKeepsCallerFields(t *testing.T) {
	o := NewOrchestrator(nil, nil, nil)
	in := models.Envelope{
		EnvelopeID: "env-custom",
		CreatedAt:  "2024-01-01T00:00:00Z",
		Agent:      "watcher",
		Payload:    map[string]any{"query_class": "scale"},
	}

	env, err := o.Orchestrate(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.EnvelopeID != "env-custom" || env.Agent != "watcher" || env.CreatedAt != "2024-01-01T00:00:00Z" {
		t.Fatalf("caller fields overwritten: %+v", env)
	}
	if env.QueryClass() != "scale" {
		t.Fatalf("payload not preserved")
	}
}
