package bus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
)

type stubJetStream struct {
	nats.JetStreamContext
	subject    string
	registered chan nats.MsgHandler
	err        error
}

func (s *stubJetStream) Subscribe(subj string, cb nats.MsgHandler, opts ...nats.SubOpt) (*nats.Subscription, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.subject = subj
	s.registered <- cb
	return &nats.Subscription{}, nil
}

func TestNATSSubscribeDeliversUntilCancel(t *testing.T) {
	js := &stubJetStream{registered: make(chan nats.MsgHandler, 1)}
	source := &NATSSource{js: js, subject: "incidents.alerts", durable: "watcher"}

	ctx, cancel := context.WithCancel(context.Background())
	received := make(chan []byte, 1)
	done := make(chan error, 1)
	go func() {
		done <- source.Subscribe(ctx, func(_ context.Context, msg Message) error {
			received <- msg.Data
			return nil
		})
	}()

	var cb nats.MsgHandler
	select {
	case cb = <-js.registered:
	case <-time.After(time.Second):
		t.Fatalf("subscription never registered")
	}
	if js.subject != "incidents.alerts" {
		t.Fatalf("unexpected subject: %s", js.subject)
	}

	cb(&nats.Msg{Data: []byte(`{"type":"cpu"}`)})
	select {
	case data := <-received:
		if string(data) != `{"type":"cpu"}` {
			t.Fatalf("unexpected payload: %s", data)
		}
	case <-time.After(time.Second):
		t.Fatalf("handler never invoked")
	}

	// Cancellation must return without touching the subscription: the
	// durable consumer outlives the process so its ack floor survives.
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("subscribe did not return on cancel")
	}
}

func TestNATSSubscribeError(t *testing.T) {
	js := &stubJetStream{err: errors.New("no responders")}
	source := &NATSSource{js: js, subject: "incidents.alerts", durable: "watcher"}

	err := source.Subscribe(context.Background(), func(context.Context, Message) error { return nil })
	if err == nil {
		t.Fatalf("expected subscribe error")
	}
}
