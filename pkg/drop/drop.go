// Package drop turns direct-manipulation drop events into board and
// pill-track transitions. Events arrive already resolved (an item kind,
// an item id, and a destination zone id) and are decoded exactly once
// here, at the boundary, before any state is touched.
package drop

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"dayslot/pkg/board"
	"dayslot/pkg/pill"
	"dayslot/pkg/slot"
)

// Item kinds.
type Kind string

const (
	KindTask Kind = "task"
	KindPill Kind = "pill"
)

// Zone grammar:
//
//	pool                   unscheduled task pool
//	slot/<label>           task bucket for a calendar slot
//	pill/<index>/taken     taken position of a slot's token holder
//	pill/<index>/pending   not-taken position of a slot's token holder
const (
	zonePool       = "pool"
	zoneSlotPrefix = "slot/"
	zonePillPrefix = "pill/"
	posTaken       = "taken"
	posPending     = "pending"
)

// Drop errors.
var (
	ErrUnknownKind   = errors.New("unknown item kind")
	ErrMalformedZone = errors.New("malformed destination zone")
)

// Event is one resolved drop: an item released onto a destination zone.
type Event struct {
	Kind   Kind   `json:"kind"`
	ItemID string `json:"item_id"`
	Zone   string `json:"zone"`
}

// Dispatcher routes decoded drop events to their owning component.
type Dispatcher struct {
	board *board.Board
	pills *pill.Track
}

// NewDispatcher creates a Dispatcher over the two state owners.
func NewDispatcher(b *board.Board, p *pill.Track) *Dispatcher {
	return &Dispatcher{board: b, pills: p}
}

// Apply decodes and applies one drop event. A malformed event is
// rejected in full before any state changes; there is no partial
// application.
func (d *Dispatcher) Apply(ctx context.Context, ev Event) error {
	switch ev.Kind {
	case KindTask:
		dest, err := decodeTaskZone(ev.Zone)
		if err != nil {
			return err
		}
		return d.board.Move(ctx, ev.ItemID, dest)
	case KindPill:
		index, taken, err := decodePillZone(ev.Zone)
		if err != nil {
			return err
		}
		// a token never changes slot: the dragged token and the zone
		// must name the same slot
		itemIndex, err := strconv.Atoi(ev.ItemID)
		if err != nil || itemIndex != index {
			return fmt.Errorf("%w: token %q dropped on zone %q", ErrMalformedZone, ev.ItemID, ev.Zone)
		}
		return d.pills.SetTaken(index, taken)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, ev.Kind)
	}
}

func decodeTaskZone(zone string) (slot.Label, error) {
	if zone == zonePool {
		return slot.Unscheduled, nil
	}
	if label, ok := strings.CutPrefix(zone, zoneSlotPrefix); ok && label != "" {
		return slot.Label(label), nil
	}
	return slot.Unscheduled, fmt.Errorf("%w: %q is not a task zone", ErrMalformedZone, zone)
}

func decodePillZone(zone string) (index int, taken bool, err error) {
	rest, ok := strings.CutPrefix(zone, zonePillPrefix)
	if !ok {
		return 0, false, fmt.Errorf("%w: %q is not a pill zone", ErrMalformedZone, zone)
	}
	idx, pos, ok := strings.Cut(rest, "/")
	if !ok {
		return 0, false, fmt.Errorf("%w: %q", ErrMalformedZone, zone)
	}
	index, err = strconv.Atoi(idx)
	if err != nil {
		return 0, false, fmt.Errorf("%w: bad slot index in %q", ErrMalformedZone, zone)
	}
	switch pos {
	case posTaken:
		return index, true, nil
	case posPending:
		return index, false, nil
	default:
		return 0, false, fmt.Errorf("%w: bad position %q", ErrMalformedZone, pos)
	}
}

// TaskZone builds the zone id for a task destination.
func TaskZone(dest slot.Label) string {
	if dest == slot.Unscheduled {
		return zonePool
	}
	return zoneSlotPrefix + string(dest)
}

// PillZone builds the zone id for a token position.
func PillZone(index int, taken bool) string {
	pos := posPending
	if taken {
		pos = posTaken
	}
	return fmt.Sprintf("%s%d/%s", zonePillPrefix, index, pos)
}
