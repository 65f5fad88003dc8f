package board

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"dayslot/pkg/feed"
	"dayslot/pkg/slot"
	"dayslot/pkg/task"
)

// Board errors.
var (
	ErrEmptyTitle  = errors.New("task title must not be empty")
	ErrUnknownTask = errors.New("unknown task")
	ErrInvalidSlot = errors.New("destination is not a calendar slot")
	ErrNotLoaded   = errors.New("board has not been hydrated yet")
	ErrClosed      = errors.New("board is shut down")
)

// Board owns the in-memory task set and the single-slot invariant: each
// task sits either in the unscheduled pool or in exactly one calendar
// bucket. It is the sole writer of tasks to the store. Mutations are
// serialized by a mutex; persistence of moves happens asynchronously
// through a single FIFO writer, so in-memory state is always ahead of
// or equal to durable state, and Load reconciles the two.
type Board struct {
	cal    slot.Calendar
	store  task.Store
	feed   *feed.Feed
	writer *writer

	mu     sync.Mutex
	loaded bool
	tasks  []*task.Task // creation order
	byID   map[string]*task.Task
}

// New creates a Board over a calendar and a persistence store. The feed
// may be nil.
func New(cal slot.Calendar, store task.Store, f *feed.Feed) *Board {
	return &Board{
		cal:    cal,
		store:  store,
		feed:   f,
		writer: newWriter(store),
		byID:   make(map[string]*task.Task),
	}
}

// Load hydrates the board from the store, replacing in-memory state
// wholesale. The store's view always wins: any divergence left behind by
// a failed async write is corrected here. Mutating calls made before the
// first Load fail with ErrNotLoaded.
func (b *Board) Load(ctx context.Context) error {
	// queued upserts land before we read, so nothing written earlier
	// can trail in after the load and re-diverge durable state
	b.writer.flush()

	tasks, err := b.store.LoadAll(ctx)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.tasks = b.tasks[:0]
	b.byID = make(map[string]*task.Task, len(tasks))
	for i := range tasks {
		t := tasks[i]
		if t.Slot != slot.Unscheduled && !b.cal.Contains(t.Slot) {
			// externally edited rows with a stale label fall back to the pool
			t.Slot = slot.Unscheduled
		}
		b.tasks = append(b.tasks, &t)
		b.byID[t.ID] = &t
	}
	b.loaded = true
	return nil
}

// Create validates the title, blocks until the store confirms the
// durable identifier, then adds the task to the unscheduled pool.
func (b *Board) Create(ctx context.Context, title string, createdAt time.Time) (task.Task, error) {
	if strings.TrimSpace(title) == "" {
		return task.Task{}, ErrEmptyTitle
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.loaded {
		return task.Task{}, ErrNotLoaded
	}

	t := &task.Task{
		Title:     title,
		Status:    task.StatusPending,
		Slot:      slot.Unscheduled,
		CreatedAt: createdAt,
	}
	if _, err := b.store.Create(ctx, t); err != nil {
		return task.Task{}, err
	}
	b.tasks = append(b.tasks, t)
	b.byID[t.ID] = t

	b.feed.Publish(feed.Change{Kind: feed.TaskCreated, TaskID: t.ID, Title: t.Title})
	return *t, nil
}

// Move assigns the task to dest, which is either slot.Unscheduled or a
// calendar label. The slot field is a single scalar, so the task leaves
// its previous bucket in the same step. Moving a task to the slot it
// already occupies succeeds and still re-persists the task, keeping
// durable state reconciled after external edits. The upsert is queued,
// not awaited; a failed write is logged and left for Load to correct.
// A move arriving after Close is rejected with ErrClosed, untouched.
func (b *Board) Move(_ context.Context, id string, dest slot.Label) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.loaded {
		return ErrNotLoaded
	}

	t, ok := b.byID[id]
	if !ok {
		return ErrUnknownTask
	}
	if dest != slot.Unscheduled && !b.cal.Contains(dest) {
		return ErrInvalidSlot
	}

	updated := *t
	updated.Slot = dest
	if err := b.writer.enqueue(updated); err != nil {
		return err
	}
	t.Slot = dest

	b.feed.Publish(feed.Change{Kind: feed.TaskMoved, TaskID: t.ID, Title: t.Title, Slot: dest})
	return nil
}

// Unscheduled returns the pool in creation order.
func (b *Board) Unscheduled() []task.Task {
	return b.snapshot(slot.Unscheduled)
}

// Bucket returns the tasks assigned to a slot, in creation order. Ties
// among same-slot tasks are never re-ranked on move.
func (b *Board) Bucket(l slot.Label) []task.Task {
	return b.snapshot(l)
}

func (b *Board) snapshot(l slot.Label) []task.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	// never nil: an empty bucket serializes as [], not null
	out := []task.Task{}
	for _, t := range b.tasks {
		if t.Slot == l {
			out = append(out, *t)
		}
	}
	return out
}

// Tasks returns every task in creation order.
func (b *Board) Tasks() []task.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]task.Task, 0, len(b.tasks))
	for _, t := range b.tasks {
		out = append(out, *t)
	}
	return out
}

// Counts returns total and unscheduled task counts.
func (b *Board) Counts() (total, unscheduled int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range b.tasks {
		if t.Slot == slot.Unscheduled {
			unscheduled++
		}
	}
	return len(b.tasks), unscheduled
}

// Calendar returns the board's slot catalog.
func (b *Board) Calendar() slot.Calendar {
	return b.cal
}

// Flush blocks until every queued persistence write has been attempted.
func (b *Board) Flush() {
	b.writer.flush()
}

// WriteFailures reports how many queued upserts have failed since start.
func (b *Board) WriteFailures() int {
	return b.writer.failures()
}

// Close flushes and stops the background writer.
func (b *Board) Close() {
	b.writer.close()
}
