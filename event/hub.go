package event

import (
	"fmt"
	"sync"

	"go.uber.org/multierr"

	"github.com/cwbudde/signalyzer/logging"
)

// Handler receives a published event. Returning an error marks the delivery
// as failed for this subscriber only; other subscribers still run.
type Handler func(Event) error

type subscriber struct {
	id   uint64
	name string
	fn   Handler
}

// Hub dispatches events to subscribers by type. Delivery is synchronous on
// the publisher's goroutine, in subscription order, with per-subscriber
// fault isolation.
type Hub struct {
	mu     sync.RWMutex
	subs   map[Type][]*subscriber
	nextID uint64
	log    logging.Logger
}

// HubOption configures a hub.
type HubOption func(*Hub)

// WithLogger sets the logger used to report subscriber failures.
func WithLogger(l logging.Logger) HubOption {
	return func(h *Hub) {
		if l != nil {
			h.log = l
		}
	}
}

// NewHub returns an empty hub.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		subs: make(map[Type][]*subscriber),
		log:  logging.L(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Subscription identifies one registered handler.
type Subscription struct {
	hub  *Hub
	typ  Type
	id   uint64
	once sync.Once
}

// Subscribe registers fn for events of type t. The name labels the
// subscriber in failure reports; duplicates are allowed.
func (h *Hub) Subscribe(t Type, name string, fn Handler) *Subscription {
	if fn == nil {
		panic("event: nil handler")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	h.subs[t] = append(h.subs[t], &subscriber{id: h.nextID, name: name, fn: fn})

	return &Subscription{hub: h, typ: t, id: h.nextID}
}

// Unsubscribe removes the handler. Safe to call more than once and safe to
// call from inside a delivery.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.hub == nil {
		return
	}

	s.once.Do(func() {
		h := s.hub
		h.mu.Lock()
		defer h.mu.Unlock()

		list := h.subs[s.typ]
		for i, sub := range list {
			if sub.id == s.id {
				h.subs[s.typ] = append(list[:i:i], list[i+1:]...)
				break
			}
		}
	})
}

// SubscriberCount returns the number of live subscriptions for a type.
func (h *Hub) SubscriberCount(t Type) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[t])
}

// Publish delivers ev to every subscriber of its type, in subscription
// order. A failing or panicking subscriber never prevents delivery to the
// rest; all failures are aggregated into the returned error, labeled by
// subscriber name. Subscribers registered after Publish never see ev.
func (h *Hub) Publish(ev Event) error {
	if ev == nil {
		return nil
	}

	h.mu.RLock()
	list := append([]*subscriber(nil), h.subs[ev.Type()]...)
	h.mu.RUnlock()

	var errs error
	for _, sub := range list {
		if err := h.deliver(sub, ev); err != nil {
			h.log.Warn("event delivery failed", logging.Fields{
				"event":      ev.Type().String(),
				"subscriber": sub.name,
				"error":      err.Error(),
			})
			errs = multierr.Append(errs, err)
		}
	}

	return errs
}

func (h *Hub) deliver(sub *subscriber, ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("event: subscriber %q panicked: %v", sub.name, r)
		}
	}()

	if err := sub.fn(ev); err != nil {
		return fmt.Errorf("event: subscriber %q: %w", sub.name, err)
	}

	return nil
}
