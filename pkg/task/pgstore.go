package task

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"dayslot/pkg/slot"
)

// PgStore is a PostgreSQL-backed task store.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore creates a PgStore.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

// EnsureTable creates the day_tasks table if it doesn't exist.
func (s *PgStore) EnsureTable(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS day_tasks (
			id         TEXT PRIMARY KEY,
			title      TEXT NOT NULL,
			status     TEXT NOT NULL DEFAULT 'pending',
			slot       TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ DEFAULT NOW()
		)`)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_day_tasks_slot ON day_tasks(slot) WHERE slot != ''`)
	return err
}

// Create inserts a new task and assigns its identifier.
func (s *PgStore) Create(ctx context.Context, t *Task) (*Task, error) {
	t.ID = uuid.Must(uuid.NewV7()).String()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().Truncate(time.Microsecond)
	}
	if t.Status == "" {
		t.Status = StatusPending
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO day_tasks (id, title, status, slot, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		t.ID, t.Title, t.Status, string(t.Slot), t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return t, nil
}

// Upsert writes the full task, keyed by id.
func (s *PgStore) Upsert(ctx context.Context, t *Task) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO day_tasks (id, title, status, slot, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			status = EXCLUDED.status,
			slot = EXCLUDED.slot`,
		t.ID, t.Title, t.Status, string(t.Slot), t.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert task %s: %w", t.ID, err)
	}
	return nil
}

// LoadAll returns every task in creation order.
func (s *PgStore) LoadAll(ctx context.Context) ([]Task, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, title, status, slot, created_at
		FROM day_tasks ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var t Task
		var sl string
		if err := rows.Scan(&t.ID, &t.Title, &t.Status, &sl, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.Slot = slot.Label(sl)
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration: %w", err)
	}
	return tasks, nil
}
