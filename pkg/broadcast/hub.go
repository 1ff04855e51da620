package broadcast

import (
	"context"
	"sync"
)

// Hub is an in-process Channel for single-process deployments and tests.
type Hub struct {
	mu     sync.Mutex
	subs   map[*hubSubscription]struct{}
	buffer int
	closed bool
}

func NewHub(buffer int) *Hub {
	return &Hub{
		subs:   map[*hubSubscription]struct{}{},
		buffer: bufferSize(buffer),
	}
}

func (h *Hub) Publish(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	for sub := range h.subs {
		offer(sub.ch, msg)
	}
	return nil
}

func (h *Hub) Subscribe(ctx context.Context) (Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrClosed
	}
	sub := &hubSubscription{hub: h, ch: make(chan Message, h.buffer)}
	h.subs[sub] = struct{}{}
	return sub, nil
}

// Close ends every open subscription.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	for sub := range h.subs {
		delete(h.subs, sub)
		close(sub.ch)
	}
	return nil
}

type hubSubscription struct {
	hub *Hub
	ch  chan Message
}

func (s *hubSubscription) Messages() <-chan Message { return s.ch }

func (s *hubSubscription) Close() error {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	if _, ok := s.hub.subs[s]; !ok {
		return nil
	}
	delete(s.hub.subs, s)
	close(s.ch)
	return nil
}
