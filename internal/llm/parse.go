package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSON signals that no brace-delimited payload was found in the
// response text.
var ErrNoJSON = errors.New("no JSON object found in response")

// ExtractJSON locates the first '{' and the last '}' in raw and decodes
// the substring between them as a JSON object. Conversational wrapper
// text around the payload is tolerated on purpose.
//
// Known limitation: the extraction is lossy when the response carries
// multiple JSON objects or a closing brace inside string content; the
// decode then fails and callers take their fallback path.
func ExtractJSON(raw string) (map[string]any, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return nil, ErrNoJSON
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(raw[start:end+1]), &payload); err != nil {
		return nil, fmt.Errorf("decode extracted JSON: %w", err)
	}
	return payload, nil
}

// IntField coerces a decoded JSON field to an int. Absent values yield
// zero; non-numeric values are an error so callers can treat them as a
// reasoning failure.
func IntField(payload map[string]any, key string) (int, error) {
	value, ok := payload[key]
	if !ok || value == nil {
		return 0, nil
	}
	switch v := value.(type) {
	case float64:
		return int(v), nil
	case int:
		return v, nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("field %q is not an integer: %w", key, err)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("field %q is not numeric (got %T)", key, value)
	}
}

// StringField returns a decoded JSON field as a string, or fallback
// when absent or of another type.
func StringField(payload map[string]any, key, fallback string) string {
	if v, ok := payload[key].(string); ok {
		return v
	}
	return fallback
}
