// Package events provides a small in-process publish/subscribe bus used to
// observe parsing lifecycles.
//
// Delivery is synchronous and fire-and-forget: publishers never learn whether
// anyone was listening, and a publish with no matching subscribers is free.
// Messages carry a correlation ID so events from one parser instance can be
// traced across the pipeline.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Wildcard subscribes to every topic on the bus.
const Wildcard = "*"

// Message is a single event published on the bus.
type Message struct {
	// Topic names the event, e.g. "dsv.stream.chunk".
	Topic string

	// CorrelationID ties the event to one parser or reader instance.
	CorrelationID string

	// Data carries event-specific payload fields.
	Data map[string]any

	// Timestamp is when the message was published.
	Timestamp time.Time
}

// Handler receives published messages. Handlers run synchronously on the
// publisher's goroutine and should return quickly.
type Handler func(Message)

type subscription struct {
	correlationID string
	handler       Handler
}

// Bus is a topic-based publish/subscribe hub. The zero value is not usable;
// create instances with NewBus. A Bus is safe for concurrent use.
type Bus struct {
	mu   sync.RWMutex
	subs map[string][]subscription
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[string][]subscription)}
}

// Subscribe registers handler for the given topic. The Wildcard topic
// matches every message. A non-empty correlationID restricts delivery to
// messages carrying that exact correlation ID.
func (b *Bus) Subscribe(topic string, correlationID string, handler Handler) {
	if handler == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[topic] = append(b.subs[topic], subscription{
		correlationID: correlationID,
		handler:       handler,
	})
}

// Publish delivers msg to every matching subscriber, in subscription order.
// The timestamp is filled in when unset.
func (b *Bus) Publish(msg Message) {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	topics := []string{msg.Topic}
	if msg.Topic != Wildcard {
		topics = append(topics, Wildcard)
	}

	b.mu.RLock()
	matched := make([]Handler, 0, len(b.subs[msg.Topic])+len(b.subs[Wildcard]))
	for _, topic := range topics {
		for _, sub := range b.subs[topic] {
			if sub.correlationID == "" || sub.correlationID == msg.CorrelationID {
				matched = append(matched, sub.handler)
			}
		}
	}
	b.mu.RUnlock()

	// Handlers run outside the lock so a handler may subscribe or publish.
	for _, handler := range matched {
		handler(msg)
	}
}

// NewCorrelationID returns a fresh correlation ID.
func NewCorrelationID() string {
	return uuid.NewString()
}
