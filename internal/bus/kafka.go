package bus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/segmentio/kafka-go"
)

// KafkaSource consumes signals from a Kafka topic using a consumer
// group. Offsets are committed on Ack; Nak is a no-op because an
// uncommitted offset is redelivered on the next group rebalance.
type KafkaSource struct {
	reader *kafka.Reader
	logger *slog.Logger
}

func NewKafkaSource(brokers []string, topic, groupID string, logger *slog.Logger) (*KafkaSource, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka topic is required")
	}
	if groupID == "" {
		groupID = "sentinel-watcher"
	}
	if logger == nil {
		logger = slog.Default()
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: groupID,
	})
	return &KafkaSource{reader: reader, logger: logger}, nil
}

func (s *KafkaSource) Subscribe(ctx context.Context, handler Handler) error {
	for {
		m, err := s.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return ctx.Err()
			}
			return fmt.Errorf("fetch from %s: %w", s.reader.Config().Topic, err)
		}

		msg := Message{
			Data: m.Value,
			Ack: func() error {
				return s.reader.CommitMessages(ctx, m)
			},
			Nak: func() error { return nil },
		}
		if err := handler(ctx, msg); err != nil {
			s.logger.Warn("signal handler failed", "topic", m.Topic, "partition", m.Partition, "error", err)
		}
	}
}

func (s *KafkaSource) Close() error {
	return s.reader.Close()
}
