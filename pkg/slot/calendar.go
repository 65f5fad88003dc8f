package slot

import "fmt"

// Label is one fixed point in the day's calendar, e.g. "09:00".
// The zero value marks a task that sits in the unscheduled pool.
type Label string

// Unscheduled is the absence of a slot assignment.
const Unscheduled Label = ""

// Calendar is the fixed, ordered catalog of slots a task or pill token
// can be associated with. It is built once and never mutated.
type Calendar struct {
	labels []Label
	index  map[Label]int
}

// NewDay returns the standard day calendar: hourly slots from 08:00
// through 23:00 plus the wraparound 00:00 slot, 17 labels in total.
func NewDay() Calendar {
	labels := make([]Label, 0, 17)
	for h := 8; h < 24; h++ {
		labels = append(labels, Label(fmt.Sprintf("%02d:00", h)))
	}
	labels = append(labels, Label("00:00"))
	return New(labels)
}

// New builds a calendar from an ordered label sequence.
func New(labels []Label) Calendar {
	c := Calendar{
		labels: make([]Label, len(labels)),
		index:  make(map[Label]int, len(labels)),
	}
	copy(c.labels, labels)
	for i, l := range c.labels {
		c.index[l] = i
	}
	return c
}

// Slots returns the labels in calendar order.
func (c Calendar) Slots() []Label {
	out := make([]Label, len(c.labels))
	copy(out, c.labels)
	return out
}

// IndexOf returns the position of a label, or false if the label is not
// part of the calendar.
func (c Calendar) IndexOf(l Label) (int, bool) {
	i, ok := c.index[l]
	return i, ok
}

// Contains reports whether the label is a valid slot.
func (c Calendar) Contains(l Label) bool {
	_, ok := c.index[l]
	return ok
}

// At returns the label at position i.
func (c Calendar) At(i int) (Label, bool) {
	if i < 0 || i >= len(c.labels) {
		return Unscheduled, false
	}
	return c.labels[i], true
}

// Len returns the number of slots.
func (c Calendar) Len() int {
	return len(c.labels)
}
