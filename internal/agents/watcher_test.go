package agents

import (
	"context"
	"errors"
	"testing"

	"github.com/sentinelstack/sentinel-agents/internal/bus"
	"github.com/sentinelstack/sentinel-agents/internal/models"
)

type stubSource struct {
	messages [][]byte
	err      error
}

func (s *stubSource) Subscribe(ctx context.Context, handler bus.Handler) error {
	for _, data := range s.messages {
		handler(ctx, bus.Message{
			Data: data,
			Ack:  func() error { return nil },
			Nak:  func() error { return nil },
		})
	}
	return s.err
}

func (s *stubSource) Close() error { return nil }

func rawAlert() map[string]any {
	return map[string]any{
		"source":      "monitor",
		"type":        "cpu",
		"message":     "CPU usage high",
		"timestamp":   "2024-01-01T00:00:00Z",
		"incident_id": "INC-1",
		"severity":    "critical",
		"environment": "prod",
	}
}

func TestIngestDirect(t *testing.T) {
	var gotSignal models.Signal
	var gotContext models.Context
	w := NewWatcher(nil, func(_ context.Context, s models.Signal, c models.Context) error {
		gotSignal, gotContext = s, c
		return nil
	}, nil)

	status, err := w.Ingest(context.Background(), rawAlert())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != "processed" {
		t.Fatalf("unexpected status: %s", status)
	}
	if gotSignal.Message != "CPU usage high" || gotSignal.Source != "monitor" {
		t.Fatalf("unexpected signal: %+v", gotSignal)
	}
	if gotContext.IncidentID != "INC-1" || gotContext.DetectedAt != "2024-01-01T00:00:00Z" {
		t.Fatalf("unexpected context: %+v", gotContext)
	}
}

func TestIngestValidationError(t *testing.T) {
	w := NewWatcher(nil, nil, nil)
	raw := rawAlert()
	delete(raw, "message")

	if _, err := w.Ingest(context.Background(), raw); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestIngestMalformedTimestamp(t *testing.T) {
	var called bool
	w := NewWatcher(nil, func(context.Context, models.Signal, models.Context) error {
		called = true
		return nil
	}, nil)
	raw := rawAlert()
	raw["timestamp"] = "yesterday at noon"

	_, err := w.Ingest(context.Background(), raw)
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if called {
		t.Fatalf("callback must not run for malformed alerts")
	}
}

// An alert flowing through Watcher then Classifier must classify by
// rules alone; the LLM fallback stays untouched.
func TestWatcherToClassifierFlow(t *testing.T) {
	runner := &stubRunner{output: "other"}
	classifier := NewClassifier(DefaultRules(), runner, nil)

	var class, method string
	w := NewWatcher(nil, func(ctx context.Context, s models.Signal, c models.Context) error {
		var err error
		class, method, err = classifier.Classify(ctx, s, c)
		return err
	}, nil)

	if _, err := w.Ingest(context.Background(), rawAlert()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if class != "scale" || method != MethodRules {
		t.Fatalf("expected scale/rules_engine, got %s/%s", class, method)
	}
	if runner.calls != 0 {
		t.Fatalf("LLM must not be consulted, got %d calls", runner.calls)
	}
}

func TestListenAcksAndNaks(t *testing.T) {
	src := bus.NewChanSource(4)
	src.Publish([]byte(`{"source":"monitor","type":"cpu","message":"CPU usage high","timestamp":"2024-01-01T00:00:00Z","incident_id":"INC-1","severity":"critical","environment":"prod"}`))
	src.Publish([]byte(`not json`))

	ctx, cancel := context.WithCancel(context.Background())
	var processed int
	w := NewWatcher(src, func(context.Context, models.Signal, models.Context) error {
		processed++
		cancel()
		return nil
	}, nil)

	if err := w.Listen(ctx); err != nil {
		t.Fatalf("cancellation is a clean stop, got %v", err)
	}
	if processed != 1 {
		t.Fatalf("expected 1 processed message, got %d", processed)
	}
}

func TestListenFatalError(t *testing.T) {
	src := &stubSource{err: errors.New("subscription lost")}
	w := NewWatcher(src, nil, nil)

	if err := w.Listen(context.Background()); err == nil {
		t.Fatalf("listener failure must propagate")
	}
}

func TestListenNoSource(t *testing.T) {
	w := NewWatcher(nil, nil, nil)
	if err := w.Listen(context.Background()); err == nil {
		t.Fatalf("expected error without a source")
	}
}
