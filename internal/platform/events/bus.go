// Package events provides the in-process change-notification bus. Every
// successful write publishes an event; dependent readers (cache invalidation,
// UI refresh feeds) subscribe instead of polling or watching globals.
package events

import (
	"sync"
	"time"
)

// Topics, one per table family.
const (
	TopicTaxonomy  = "taxonomy.changed"
	TopicPatient   = "patient.changed"
	TopicSelection = "selection.changed"
)

// Actions carried by an event.
const (
	ActionCreated  = "created"
	ActionUpdated  = "updated"
	ActionDeleted  = "deleted"
	ActionImported = "imported"
)

// Event describes a single committed write.
type Event struct {
	Topic  string    `json:"topic"`
	Entity string    `json:"entity"`
	ID     string    `json:"id"`
	Action string    `json:"action"`
	At     time.Time `json:"at"`
}

// Handler receives published events. Handlers run synchronously on the
// publishing goroutine and must not block.
type Handler func(Event)

// Bus is a topic-keyed fan-out of write notifications.
type Bus struct {
	mu   sync.RWMutex
	subs map[string][]Handler
}

func NewBus() *Bus {
	return &Bus{subs: make(map[string][]Handler)}
}

// Subscribe registers h for all events on topic.
func (b *Bus) Subscribe(topic string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[topic] = append(b.subs[topic], h)
}

// Publish delivers e to every subscriber of its topic, in subscription order.
func (b *Bus) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	b.mu.RLock()
	handlers := b.subs[e.Topic]
	b.mu.RUnlock()
	for _, h := range handlers {
		h(e)
	}
}
