package board

import (
	"context"
	"log"
	"sync"
	"sync/atomic"

	"dayslot/pkg/task"
)

// writer applies task upserts to the store on a single goroutine. One
// FIFO queue means writes are applied in the order their in-memory
// mutations were issued, which is the ordering contract for writes to
// the same task. A failed write is logged and counted, never retried
// and never rolled back; the next Load reconciles.
type writer struct {
	store  task.Store
	ch     chan task.Task
	wg     sync.WaitGroup
	done   chan struct{}
	failed atomic.Int64

	mu     sync.Mutex
	closed bool
}

func newWriter(store task.Store) *writer {
	w := &writer{
		store: store,
		ch:    make(chan task.Task, 128),
		done:  make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *writer) run() {
	defer close(w.done)
	for t := range w.ch {
		if err := w.store.Upsert(context.Background(), &t); err != nil {
			w.failed.Add(1)
			log.Printf("persist task %s: %v", t.ID, err)
		}
		w.wg.Done()
	}
}

// enqueue queues a snapshot of the task for persistence. Blocks only if
// the queue is full, which still preserves ordering. After close the
// writer refuses the snapshot with ErrClosed instead of panicking on
// the closed channel.
func (w *writer) enqueue(t task.Task) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	w.wg.Add(1)
	w.ch <- t
	return nil
}

// flush waits for all queued writes to be attempted.
func (w *writer) flush() {
	w.wg.Wait()
}

func (w *writer) failures() int {
	return int(w.failed.Load())
}

// close flushes and stops the goroutine. Safe to call more than once.
func (w *writer) close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		<-w.done
		return
	}
	w.closed = true
	w.mu.Unlock()

	w.wg.Wait()
	close(w.ch)
	<-w.done
}
