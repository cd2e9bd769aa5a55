package telemetry

import "sync"

// Handler receives one raw payload. Handlers for the same channel are called
// in arrival order and must not block for long.
type Handler func(payload []byte)

// Source delivers raw payloads per channel.
type Source interface {
	Subscribe(ch Channel, h Handler) error
}

// LocalSource is an in-process Source. Publish delivers synchronously on the
// caller's goroutine.
type LocalSource struct {
	mu       sync.RWMutex
	handlers map[Channel][]Handler
	closed   bool
}

// NewLocalSource returns an empty LocalSource.
func NewLocalSource() *LocalSource {
	return &LocalSource{handlers: make(map[Channel][]Handler)}
}

// Subscribe implements Source.
func (s *LocalSource) Subscribe(ch Channel, h Handler) error {
	if err := ch.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSourceClosed
	}
	s.handlers[ch] = append(s.handlers[ch], h)
	return nil
}

// Publish hands payload to every handler of ch.
func (s *LocalSource) Publish(ch Channel, payload []byte) error {
	if err := ch.Validate(); err != nil {
		return err
	}
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return ErrSourceClosed
	}
	handlers := s.handlers[ch]
	s.mu.RUnlock()

	for _, h := range handlers {
		h(payload)
	}
	return nil
}

// PublishValue encodes v with codec and publishes it on ch.
func (s *LocalSource) PublishValue(ch Channel, codec Codec, v any) error {
	payload, err := codec.Marshal(v)
	if err != nil {
		return err
	}
	return s.Publish(ch, payload)
}

// Close drops every handler. Later calls return ErrSourceClosed.
func (s *LocalSource) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.handlers = nil
}
