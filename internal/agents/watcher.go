package agents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sentinelstack/sentinel-agents/internal/bus"
	"github.com/sentinelstack/sentinel-agents/internal/models"
	"github.com/sentinelstack/sentinel-agents/internal/utils"
)

// Callback hands a normalised signal/context pair to the downstream
// pipeline. Streaming mode may invoke it concurrently when the bus
// client dispatches concurrently; implementations must tolerate that
// or serialize externally.
type Callback func(ctx context.Context, signal models.Signal, incident models.Context) error

// Watcher normalises raw external events into Signal+Context pairs.
// Direct mode handles one payload synchronously; streaming mode
// consumes the message bus, acking on success and naking on failure.
type Watcher struct {
	source   bus.Source
	callback Callback
	logger   *slog.Logger
}

func NewWatcher(source bus.Source, callback Callback, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{source: source, callback: callback, logger: logger}
}

// Ingest processes one raw payload directly.
func (w *Watcher) Ingest(ctx context.Context, raw map[string]any) (string, error) {
	if err := w.process(ctx, raw); err != nil {
		return "", err
	}
	return "processed", nil
}

// Listen consumes the message bus until ctx is cancelled. A
// listener-level failure is logged at the highest severity and
// returned: listener death must be visible, never swallowed.
func (w *Watcher) Listen(ctx context.Context) error {
	if w.source == nil {
		return fmt.Errorf("no signal source configured")
	}

	err := w.source.Subscribe(ctx, func(ctx context.Context, msg bus.Message) error {
		var raw map[string]any
		if err := json.Unmarshal(msg.Data, &raw); err != nil {
			w.logger.Error("alert_processing_error", "error", err, "raw_message", string(msg.Data))
			msg.Nak()
			return err
		}
		if err := w.process(ctx, raw); err != nil {
			w.logger.Error("alert_processing_error", "error", err, "raw_message", string(msg.Data))
			msg.Nak()
			return err
		}
		return msg.Ack()
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		w.logger.Error("listener_error", "error", err)
		return utils.NewAppError("watcher.listen", "signal listener failed", err)
	}
	return nil
}

func (w *Watcher) process(ctx context.Context, raw map[string]any) error {
	signal := models.Signal{
		Source:    stringValue(raw, "source"),
		Type:      stringValue(raw, "type"),
		Message:   stringValue(raw, "message"),
		Timestamp: stringValue(raw, "timestamp"),
		Resource:  stringValue(raw, "resource"),
		Labels:    mapValue(raw, "labels"),
	}
	incident := models.Context{
		IncidentID:     stringValue(raw, "incident_id"),
		Severity:       stringValue(raw, "severity"),
		Environment:    stringValue(raw, "environment"),
		DetectedAt:     stringValue(raw, "timestamp"),
		AdditionalInfo: mapValue(raw, "additional_info"),
	}

	if err := signal.Validate(); err != nil {
		return err
	}
	if _, err := utils.ParseRFC3339(signal.Timestamp); err != nil {
		return &models.ValidationError{
			Entity: "signal",
			Reason: fmt.Sprintf("timestamp %q is not RFC 3339", signal.Timestamp),
		}
	}
	if err := incident.Validate(); err != nil {
		return err
	}

	w.logger.Info("received_alert",
		"incident_id", incident.IncidentID,
		"severity", incident.Severity,
		"environment", incident.Environment,
		"metric", signal.Type,
		"cluster", signal.Label("cluster"),
		"namespace", signal.Label("namespace"),
		"timestamp", signal.Timestamp,
	)

	if w.callback == nil {
		return nil
	}
	return w.callback(ctx, signal, incident)
}

func stringValue(raw map[string]any, key string) string {
	if v, ok := raw[key].(string); ok {
		return v
	}
	return ""
}

func mapValue(raw map[string]any, key string) map[string]any {
	if v, ok := raw[key].(map[string]any); ok {
		return v
	}
	return nil
}
