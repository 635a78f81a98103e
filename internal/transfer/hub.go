package transfer

import (
	"context"
	"log/slog"
	"sync"
)

// defaultSubscriptionBuffer is how many events a subscriber may lag
// behind before Publish blocks on it.
const defaultSubscriptionBuffer = 64

// Hub fans transfer events out to every current subscriber. Delivery is
// lossless: a slow subscriber applies backpressure to Publish rather than
// missing events.
type Hub struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	buffer int
}

// NewHub creates a hub with the default per-subscriber buffer.
func NewHub() *Hub {
	return &Hub{subs: make(map[*Subscription]struct{}), buffer: defaultSubscriptionBuffer}
}

// Subscription receives events from the moment it is created until Close.
type Subscription struct {
	C <-chan Event

	c    chan Event
	done chan struct{}
	once sync.Once
	hub  *Hub
}

// Subscribe registers a new subscriber. The caller must Close it.
func (h *Hub) Subscribe() *Subscription {
	c := make(chan Event, h.buffer)
	s := &Subscription{C: c, c: c, done: make(chan struct{}), hub: h}

	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()

	return s
}

// Close unregisters the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		close(s.done)

		s.hub.mu.Lock()
		delete(s.hub.subs, s)
		s.hub.mu.Unlock()
	})
}

// Subscribers returns the number of open subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.subs)
}

// Publish delivers e to every subscriber, blocking while any of them is
// full. Subscriptions closed during delivery are skipped.
func (h *Hub) Publish(ctx context.Context, e Event) error {
	h.mu.Lock()
	subs := make([]*Subscription, 0, len(h.subs))

	for s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.Unlock()

	for _, s := range subs {
		select {
		case s.c <- e:
		case <-s.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}

// consume feeds sub's events to handle until ctx ends, then releases the
// subscription. Handler errors are logged and do not stop consumption.
func consume(ctx context.Context, sub *Subscription, logger *slog.Logger, handle func(context.Context, Event) error) error {
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e := <-sub.C:
			if err := handle(ctx, e); err != nil {
				logger.Warn("handling transfer event",
					slog.String("type", string(e.Type)),
					slog.Int64("tag", e.Transfer.Tag),
					slog.String("error", err.Error()),
				)
			}
		}
	}
}
