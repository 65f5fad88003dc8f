package feed

import (
	"sync"
	"time"

	"dayslot/pkg/slot"
)

// Change kinds.
const (
	TaskCreated = "task.created"
	TaskMoved   = "task.moved"
	PillSet     = "pill.set"
)

// Change describes one applied state transition.
type Change struct {
	Kind      string     `json:"kind"`
	TaskID    string     `json:"task_id,omitempty"`
	Title     string     `json:"title,omitempty"`
	Slot      slot.Label `json:"slot,omitempty"`
	SlotIndex int        `json:"slot_index,omitempty"`
	Taken     bool       `json:"taken,omitempty"`
	At        time.Time  `json:"at"`
}

// Feed fans applied changes out to in-process subscribers. Owners publish
// after each successful transition; a slow subscriber is skipped rather
// than allowed to block the publisher.
type Feed struct {
	mu   sync.RWMutex
	subs map[chan Change]struct{}
}

// New creates an empty Feed.
func New() *Feed {
	return &Feed{subs: make(map[chan Change]struct{})}
}

// Publish fans the change out to all subscribers. A nil Feed is a no-op
// publisher, so owners can be wired without one.
func (f *Feed) Publish(c Change) {
	if f == nil {
		return
	}
	if c.At.IsZero() {
		c.At = time.Now()
	}
	f.mu.RLock()
	for ch := range f.subs {
		select {
		case ch <- c:
		default:
			// subscriber is behind; drop to avoid blocking the owner
		}
	}
	f.mu.RUnlock()
}

// Subscribe returns a buffered channel that receives all new changes.
func (f *Feed) Subscribe() chan Change {
	ch := make(chan Change, 64)
	f.mu.Lock()
	f.subs[ch] = struct{}{}
	f.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (f *Feed) Unsubscribe(ch chan Change) {
	f.mu.Lock()
	delete(f.subs, ch)
	f.mu.Unlock()
	close(ch)
}
