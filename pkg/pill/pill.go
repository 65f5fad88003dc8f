package pill

import (
	"errors"
	"sync"

	"dayslot/pkg/feed"
	"dayslot/pkg/slot"
)

// ErrUnknownSlot is returned for a slot index outside the calendar.
var ErrUnknownSlot = errors.New("no pill token at that slot")

// Token is the single taken/not-taken marker belonging to one slot. A
// token never changes slot; only its Taken flag moves.
type Token struct {
	SlotIndex int  `json:"slot_index"`
	Taken     bool `json:"taken"`
}

// Track owns one token per calendar slot. Tokens live for the session
// only: there is no persistence, and a restart resets every token to
// not-taken. That is the product behavior, not an omission.
type Track struct {
	feed *feed.Feed

	mu     sync.Mutex
	tokens []Token
}

// NewTrack builds one not-taken token per slot in the calendar. The
// feed may be nil.
func NewTrack(cal slot.Calendar, f *feed.Feed) *Track {
	tokens := make([]Token, cal.Len())
	for i := range tokens {
		tokens[i] = Token{SlotIndex: i}
	}
	return &Track{feed: f, tokens: tokens}
}

// SetTaken flips the token at slotIndex. Setting a value the token
// already holds is a no-op that still succeeds.
func (tr *Track) SetTaken(slotIndex int, taken bool) error {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	if slotIndex < 0 || slotIndex >= len(tr.tokens) {
		return ErrUnknownSlot
	}
	tr.tokens[slotIndex].Taken = taken

	tr.feed.Publish(feed.Change{Kind: feed.PillSet, SlotIndex: slotIndex, Taken: taken})
	return nil
}

// Get returns the token at slotIndex.
func (tr *Track) Get(slotIndex int) (Token, error) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	if slotIndex < 0 || slotIndex >= len(tr.tokens) {
		return Token{}, ErrUnknownSlot
	}
	return tr.tokens[slotIndex], nil
}

// Tokens returns a snapshot of all tokens in slot order.
func (tr *Track) Tokens() []Token {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	out := make([]Token, len(tr.tokens))
	copy(out, tr.tokens)
	return out
}

// TakenCount returns how many tokens are currently taken.
func (tr *Track) TakenCount() int {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	n := 0
	for _, t := range tr.tokens {
		if t.Taken {
			n++
		}
	}
	return n
}
