package models

import (
	"fmt"
	"time"
)

// Envelope is a signed unit of work passed between pipeline stages and
// persisted for audit. The payload typically embeds the signal, context,
// query class, grounding snippets and personalization examples.
type Envelope struct {
	EnvelopeID string         `json:"envelope_id"`
	CreatedAt  string         `json:"created_at"`
	Agent      string         `json:"agent"`
	Payload    map[string]any `json:"payload"`
	Signature  string         `json:"signature,omitempty"`
}

// NewEnvelopeID derives an envelope id from the wall clock. Two calls
// within the same second collide; callers needing stronger uniqueness
// must supply their own id.
func NewEnvelopeID(now time.Time) string {
	return fmt.Sprintf("env-%d", now.Unix())
}

// Signed reports whether the envelope carries a non-empty signature.
func (e Envelope) Signed() bool {
	return e.Signature != ""
}

// PayloadSignal extracts the embedded signal payload section, if any.
func (e Envelope) PayloadSignal() map[string]any {
	return payloadSection(e.Payload, "signal")
}

// PayloadContext extracts the embedded context payload section, if any.
func (e Envelope) PayloadContext() map[string]any {
	return payloadSection(e.Payload, "context")
}

// QueryClass returns the classified query class carried in the payload.
func (e Envelope) QueryClass() string {
	if e.Payload == nil {
		return ""
	}
	if v, ok := e.Payload["query_class"].(string); ok {
		return v
	}
	return ""
}

func payloadSection(payload map[string]any, key string) map[string]any {
	if payload == nil {
		return nil
	}
	if section, ok := payload[key].(map[string]any); ok {
		return section
	}
	return nil
}
