package event

import (
	"log"
	"runtime/debug"
	"sync"
)

// Handler consumes published notifications.
type Handler func(Event)

// wildcard is the topic that hears every notification.
const wildcard = "*"

// Bus fans notifications out to subscribers by topic. Dispatch is
// synchronous, in subscription order, with topic subscribers ahead of
// wildcard subscribers. Safe for concurrent use.
type Bus struct {
	mu   sync.RWMutex
	subs map[string][]*subscriber
}

// A canceled subscriber stays in its slice as a tombstone; Publish
// skips nil handlers.
type subscriber struct {
	fn Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[string][]*subscriber)}
}

// Subscribe registers fn for one topic, an EventType string such as
// "node.transition". The returned function cancels the subscription;
// calling it more than once is harmless.
func (b *Bus) Subscribe(topic string, fn Handler) func() {
	sub := &subscriber{fn: fn}
	b.mu.Lock()
	b.subs[topic] = append(b.subs[topic], sub)
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		sub.fn = nil
		b.mu.Unlock()
	}
}

// SubscribeAll registers fn for every notification.
func (b *Bus) SubscribeAll(fn Handler) func() {
	return b.Subscribe(wildcard, fn)
}

// Publish delivers e to its topic's subscribers, then to wildcard
// subscribers. Handlers registered mid-publish are not called for e.
func (b *Bus) Publish(e Event) {
	topic := e.EventType()

	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[topic])+len(b.subs[wildcard]))
	for _, s := range b.subs[topic] {
		if s.fn != nil {
			handlers = append(handlers, s.fn)
		}
	}
	if topic != wildcard {
		for _, s := range b.subs[wildcard] {
			if s.fn != nil {
				handlers = append(handlers, s.fn)
			}
		}
	}
	b.mu.RUnlock()

	for _, fn := range handlers {
		dispatch(fn, e)
	}
}

// dispatch runs one handler under its own recover so a broken observer
// cannot take down the publisher or starve later subscribers.
func dispatch(fn Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("event: %s subscriber panicked: %v\n%s",
				e.EventType(), r, debug.Stack())
		}
	}()
	fn(e)
}
