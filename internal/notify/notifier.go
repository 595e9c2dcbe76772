// Package notify delivers system-message change events to in-process
// subscribers, keyed by conversation id.
package notify

import (
	"sync"
	"time"
)

// Kind describes what happened to a system message.
type Kind string

const (
	KindSaved   Kind = "saved"
	KindCleared Kind = "cleared"
)

// EventName is the SSE event type used when events cross the wire.
const EventName = "system_message_updated"

// Event announces that the system message for ChatID changed.
type Event struct {
	ChatID string    `json:"chatId"`
	Kind   Kind      `json:"kind"`
	At     time.Time `json:"at"`
}

// KindFor returns the event kind for a saved message text.
func KindFor(message string) Kind {
	if message == "" {
		return KindCleared
	}
	return KindSaved
}

// Handler receives events. Handlers run synchronously on the publishing
// goroutine and must not call back into the same Notifier's Publish.
type Handler func(Event)

type subscription struct {
	id      uint64
	handler Handler
}

// Notifier is a per-owner observer registry. Delivery is best-effort:
// there is no buffering and no replay for late subscribers.
type Notifier struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[string][]subscription
}

// New creates an empty notifier.
func New() *Notifier {
	return &Notifier{subs: make(map[string][]subscription)}
}

// Subscribe registers handler for events on chatID.
// The returned function removes the subscription and is safe to call more than once.
func (n *Notifier) Subscribe(chatID string, handler Handler) (unsubscribe func()) {
	n.mu.Lock()
	n.nextID++
	id := n.nextID
	n.subs[chatID] = append(n.subs[chatID], subscription{id: id, handler: handler})
	n.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { n.remove(chatID, id) })
	}
}

func (n *Notifier) remove(chatID string, id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	subs := n.subs[chatID]
	for i, s := range subs {
		if s.id == id {
			subs = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(subs) == 0 {
		delete(n.subs, chatID)
		return
	}
	n.subs[chatID] = subs
}

// Publish delivers ev to every current subscriber of ev.ChatID.
func (n *Notifier) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	n.mu.RLock()
	handlers := make([]Handler, 0, len(n.subs[ev.ChatID]))
	for _, s := range n.subs[ev.ChatID] {
		handlers = append(handlers, s.handler)
	}
	n.mu.RUnlock()

	for _, h := range handlers {
		h(ev)
	}
}

// SubscriberCount returns the number of live subscriptions for chatID.
func (n *Notifier) SubscriberCount(chatID string) int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subs[chatID])
}
