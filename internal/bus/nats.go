package bus

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSSource consumes signals from a JetStream subject with a durable
// consumer so unacknowledged messages are redelivered after restarts.
type NATSSource struct {
	conn    *nats.Conn
	js      nats.JetStreamContext
	subject string
	durable string
	logger  *slog.Logger
}

func NewNATSSource(url, subject, durable string, logger *slog.Logger) (*NATSSource, error) {
	if subject == "" {
		return nil, fmt.Errorf("nats subject is required")
	}
	if durable == "" {
		durable = "sentinel-watcher"
	}
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(1*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats at %s: %w", url, err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	return &NATSSource{
		conn:    conn,
		js:      js,
		subject: subject,
		durable: durable,
		logger:  logger,
	}, nil
}

// Subscribe delivers messages to handler until ctx is cancelled. The
// subscription uses manual acks; the handler controls redelivery via
// Message.Ack and Message.Nak.
func (s *NATSSource) Subscribe(ctx context.Context, handler Handler) error {
	// The subscription is never unsubscribed or drained: nats.go
	// deletes library-created durable consumers server-side on
	// Unsubscribe, which would reset the ack floor on every shutdown.
	// Delivery stops when Close tears down the connection; the durable
	// consumer stays on the server so unacked messages redeliver.
	_, err := s.js.Subscribe(s.subject, func(m *nats.Msg) {
		msg := Message{
			Data: m.Data,
			Ack:  func() error { return m.Ack() },
			Nak:  func() error { return m.Nak() },
		}
		if err := handler(ctx, msg); err != nil {
			s.logger.Warn("signal handler failed", "subject", s.subject, "error", err)
		}
	}, nats.Durable(s.durable), nats.ManualAck())
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", s.subject, err)
	}

	<-ctx.Done()
	return ctx.Err()
}

func (s *NATSSource) Close() error {
	s.conn.Close()
	return nil
}
