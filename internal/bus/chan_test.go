package bus

import (
	"context"
	"testing"
	"time"
)

func TestChanSourceDelivers(t *testing.T) {
	src := NewChanSource(4)
	src.Publish([]byte(`{"source":"probe"}`))
	src.Publish([]byte(`{"source":"monitor"}`))

	ctx, cancel := context.WithCancel(context.Background())
	var got [][]byte
	done := make(chan error, 1)
	go func() {
		done <- src.Subscribe(ctx, func(_ context.Context, msg Message) error {
			got = append(got, msg.Data)
			if err := msg.Ack(); err != nil {
				t.Errorf("ack failed: %v", err)
			}
			if len(got) == 2 {
				cancel()
			}
			return nil
		})
	}()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("unexpected subscribe error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("subscribe did not finish")
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(got))
	}
	if string(got[0]) != `{"source":"probe"}` {
		t.Fatalf("unexpected first message: %s", got[0])
	}
}

func TestChanSourceClose(t *testing.T) {
	src := NewChanSource(1)
	if err := src.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	err := src.Subscribe(context.Background(), func(context.Context, Message) error { return nil })
	if err != nil {
		t.Fatalf("expected nil after close, got %v", err)
	}
}
