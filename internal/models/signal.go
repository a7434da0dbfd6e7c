package models

// Signal is an observed event normalised from a raw monitoring alert.
// Immutable once constructed by the watcher.
type Signal struct {
	Source    string         `json:"source"`
	Type      string         `json:"type"`
	Message   string         `json:"message"`
	Timestamp string         `json:"timestamp"`
	Resource  string         `json:"resource,omitempty"`
	Labels    map[string]any `json:"labels,omitempty"`
}

// Context frames a Signal as an incident. Carried unmodified through
// the pipeline.
type Context struct {
	IncidentID     string         `json:"incident_id"`
	Severity       string         `json:"severity"`
	Environment    string         `json:"environment"`
	DetectedAt     string         `json:"detected_at"`
	AdditionalInfo map[string]any `json:"additional_info,omitempty"`
}

// Validate reports the first missing required field.
func (s Signal) Validate() error {
	switch {
	case s.Source == "":
		return newFieldError("signal", "source")
	case s.Type == "":
		return newFieldError("signal", "type")
	case s.Message == "":
		return newFieldError("signal", "message")
	case s.Timestamp == "":
		return newFieldError("signal", "timestamp")
	}
	return nil
}

// Validate reports the first missing required field.
func (c Context) Validate() error {
	switch {
	case c.IncidentID == "":
		return newFieldError("context", "incident_id")
	case c.Severity == "":
		return newFieldError("context", "severity")
	case c.Environment == "":
		return newFieldError("context", "environment")
	case c.DetectedAt == "":
		return newFieldError("context", "detected_at")
	}
	return nil
}

// Label returns a label value as a string, or empty when absent.
func (s Signal) Label(key string) string {
	if s.Labels == nil {
		return ""
	}
	if v, ok := s.Labels[key].(string); ok {
		return v
	}
	return ""
}
