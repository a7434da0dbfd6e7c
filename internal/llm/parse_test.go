package llm

import (
	"errors"
	"testing"
)

func TestExtractJSONWithWrapperText(t *testing.T) {
	raw := `Sure! {"action":"restart","reason":"pod crash","confidence":80} Thanks`
	payload, err := ExtractJSON(raw)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if payload["action"] != "restart" {
		t.Fatalf("action: %v", payload["action"])
	}
	if payload["reason"] != "pod crash" {
		t.Fatalf("reason: %v", payload["reason"])
	}
	confidence, err := IntField(payload, "confidence")
	if err != nil {
		t.Fatalf("confidence: %v", err)
	}
	if confidence != 80 {
		t.Fatalf("confidence value: %d", confidence)
	}
}

func TestExtractJSONNoBraces(t *testing.T) {
	_, err := ExtractJSON("no structured payload here")
	if !errors.Is(err, ErrNoJSON) {
		t.Fatalf("expected ErrNoJSON, got %v", err)
	}
}

func TestExtractJSONLossyBraceSelection(t *testing.T) {
	// Two objects in one response: the outermost-brace heuristic grabs
	// from the first '{' to the last '}', which is not valid JSON. The
	// parser reports an error rather than guessing.
	raw := `{"action":"scale"} trailing {"action":"restart"}`
	if _, err := ExtractJSON(raw); err == nil {
		t.Fatalf("expected decode failure for multi-object response")
	}
}

func TestIntFieldCoercion(t *testing.T) {
	payload := map[string]any{"confidence": float64(42)}
	v, err := IntField(payload, "confidence")
	if err != nil || v != 42 {
		t.Fatalf("float coercion: %d %v", v, err)
	}

	v, err = IntField(map[string]any{}, "confidence")
	if err != nil || v != 0 {
		t.Fatalf("absent field: %d %v", v, err)
	}

	if _, err := IntField(map[string]any{"confidence": "high"}, "confidence"); err == nil {
		t.Fatalf("expected error for non-numeric confidence")
	}
}

func TestStringField(t *testing.T) {
	payload := map[string]any{"reason": "cpu saturated"}
	if got := StringField(payload, "reason", "none"); got != "cpu saturated" {
		t.Fatalf("got %q", got)
	}
	if got := StringField(payload, "missing", "fallback"); got != "fallback" {
		t.Fatalf("got %q", got)
	}
}
