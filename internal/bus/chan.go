package bus

import "context"

// ChanSource adapts a Go channel into a Source. Used for local
// development and tests where no broker is running.
type ChanSource struct {
	ch chan []byte
}

func NewChanSource(buffer int) *ChanSource {
	if buffer <= 0 {
		buffer = 16
	}
	return &ChanSource{ch: make(chan []byte, buffer)}
}

// Publish enqueues a payload. It blocks when the buffer is full.
func (s *ChanSource) Publish(data []byte) {
	s.ch <- data
}

func (s *ChanSource) Subscribe(ctx context.Context, handler Handler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case data, ok := <-s.ch:
			if !ok {
				return nil
			}
			msg := Message{
				Data: data,
				Ack:  func() error { return nil },
				Nak:  func() error { return nil },
			}
			handler(ctx, msg)
		}
	}
}

func (s *ChanSource) Close() error {
	close(s.ch)
	return nil
}
