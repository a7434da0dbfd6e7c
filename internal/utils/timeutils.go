package utils

import (
	"fmt"
	"time"
)

// TimestampLayout is the wire format for created_at and detected_at
// fields: UTC seconds precision with a Z suffix.
const TimestampLayout = "2006-01-02T15:04:05Z"

// UTCTimestamp formats a time in the pipeline's wire layout.
func UTCTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseRFC3339 returns a time from the provided string or an error.
func ParseRFC3339(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("empty time value")
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time: %w", err)
	}
	return t, nil
}
