package task

import (
	"context"
	"time"

	"dayslot/pkg/slot"
)

// StatusPending is the only status a task ever carries. The field is
// persisted and queryable but no operation transitions it.
const StatusPending = "pending"

// Task is one planner entry. Title and CreatedAt are fixed at creation;
// Slot is the only field the assignment logic mutates.
type Task struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Status    string     `json:"status"`
	Slot      slot.Label `json:"slot"`
	CreatedAt time.Time  `json:"created_at"`
}

// Store is the contract for task persistence. The store assigns the
// durable identifier on Create.
type Store interface {
	Create(ctx context.Context, t *Task) (*Task, error)
	Upsert(ctx context.Context, t *Task) error
	LoadAll(ctx context.Context) ([]Task, error)
	EnsureTable(ctx context.Context) error
}
