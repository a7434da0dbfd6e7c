// Package bus provides streaming signal sources for the watcher.
package bus

import "context"

// Message is a raw signal payload pulled off a stream. Ack confirms
// processing; Nak requests redelivery where the backend supports it.
type Message struct {
	Data []byte
	Ack  func() error
	Nak  func() error
}

// Handler processes one message. A non-nil error tells the source the
// message was not handled; the source decides whether it is redelivered.
type Handler func(ctx context.Context, msg Message) error

// Source is a subscription to a stream of incoming signals. Subscribe
// blocks until ctx is cancelled or the subscription fails.
type Source interface {
	Subscribe(ctx context.Context, handler Handler) error
	Close() error
}
