// Package events fans session lifecycle notifications out to UI-facing
// subscribers without ever blocking the publisher.
package events

import (
	"sync"

	"minute/internal/session"
)

// Kind names a session lifecycle event.
type Kind string

const (
	KindSessionStarted    Kind = "session_started"
	KindSessionStopped    Kind = "session_stopped"
	KindSessionProcessing Kind = "session_processing"
	KindSessionCompleted  Kind = "session_completed"
	KindSessionFailed     Kind = "session_failed"
)

// Event carries the full session record alongside its lifecycle kind.
type Event struct {
	Kind    Kind
	Session session.Session
}

const subscriberBuffer = 16

// Bus is a non-blocking publish/subscribe hub. Publishing to a subscriber with
// a full buffer drops that subscriber's oldest event; the recorder must never
// stall on a slow consumer.
type Bus struct {
	mu          sync.Mutex
	subscribers map[int]chan Event
	nextID      int
	closed      bool
}

// NewBus constructs an empty bus.
func NewBus() *Bus {
	return &Bus{subscribers: make(map[int]chan Event)}
}

// Subscribe registers a consumer. The returned cancel function releases it.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Event, subscriberBuffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	b.subscribers[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if existing, ok := b.subscribers[id]; ok {
			delete(b.subscribers, id)
			close(existing)
		}
	}
	return ch, cancel
}

// Publish delivers an event to every subscriber without blocking.
func (b *Bus) Publish(kind Kind, sess session.Session) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	event := Event{Kind: kind, Session: sess}
	for _, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			// Full buffer: drop the oldest so the newest state wins.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- event:
			default:
			}
		}
	}
}

// Close tears down the bus and closes all subscriber channels.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subscribers {
		delete(b.subscribers, id)
		close(ch)
	}
}
