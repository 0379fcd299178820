// Package bus provides a small in-process publish/subscribe channel
// keyed by event name. It replaces the document-level custom events the
// authoring runtime used for cross-component messaging with an explicit
// typed abstraction that has no UI-runtime coupling.
package bus

import "sync"

// Event is one published message.
type Event struct {
	Name    string
	Payload any
}

// Well-known event names published by the engine.
const (
	EventDiagnosticsCompleted = "diagnostics.completed"
	EventNavigated            = "navigation.navigated"
	EventPartSaved            = "attempt.partSaved"
	EventSequenceChanged      = "sequence.changed"
)

// Bus fans events out to subscribers by name. Publish never blocks: a
// subscriber that has fallen behind its buffer misses the event rather
// than stalling the publisher.
type Bus struct {
	mu   sync.RWMutex
	subs map[string][]chan Event
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{subs: make(map[string][]chan Event)}
}

// Subscribe registers interest in events with the given name. The
// returned cancel function removes the subscription and closes the
// channel; it is safe to call more than once.
func (b *Bus) Subscribe(name string) (<-chan Event, func()) {
	ch := make(chan Event, 16)

	b.mu.Lock()
	b.subs[name] = append(b.subs[name], ch)
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			channels := b.subs[name]
			for i, c := range channels {
				if c == ch {
					b.subs[name] = append(channels[:i:i], channels[i+1:]...)
					break
				}
			}
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers the event to every current subscriber of its name.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs[ev.Name] {
		select {
		case ch <- ev:
		default:
		}
	}
}
