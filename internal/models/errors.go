package models

import "fmt"

// ValidationError signals malformed input data. It is the one error
// class surfaced directly to RPC callers.
type ValidationError struct {
	Entity string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s: missing required field %q", e.Entity, e.Field)
	}
	return fmt.Sprintf("invalid %s: %s", e.Entity, e.Reason)
}

func newFieldError(entity, field string) error {
	return &ValidationError{Entity: entity, Field: field}
}
