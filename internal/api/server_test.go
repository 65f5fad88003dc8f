package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dayslot/pkg/board"
	"dayslot/pkg/feed"
	"dayslot/pkg/pill"
	"dayslot/pkg/slot"
	"dayslot/pkg/task"
)

// --- Mock task store ---

type mockStore struct {
	seq  int
	rows []task.Task
}

func (s *mockStore) Create(_ context.Context, t *task.Task) (*task.Task, error) {
	s.seq++
	t.ID = fmt.Sprintf("id-%d", s.seq)
	s.rows = append(s.rows, *t)
	return t, nil
}

func (s *mockStore) Upsert(_ context.Context, t *task.Task) error { return nil }

func (s *mockStore) LoadAll(_ context.Context) ([]task.Task, error) {
	return append([]task.Task(nil), s.rows...), nil
}

func (s *mockStore) EnsureTable(_ context.Context) error { return nil }

// --- Helpers ---

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cal := slot.NewDay()
	changes := feed.New()
	b := board.New(cal, &mockStore{}, changes)
	require.NoError(t, b.Load(context.Background()))
	t.Cleanup(b.Close)
	return New(b, pill.NewTrack(cal, changes), changes)
}

func do(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func createTask(t *testing.T, s *Server, title string) task.Task {
	t.Helper()
	rec := do(s, http.MethodPost, "/api/tasks", fmt.Sprintf(`{"title":%q}`, title))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created task.Task
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	return created
}

func fetchBoard(t *testing.T, s *Server) boardView {
	t.Helper()
	rec := do(s, http.MethodGet, "/api/board", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var view boardView
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
	return view
}

// --- Tests ---

func TestCreateTask(t *testing.T) {
	s := newTestServer(t)

	created := createTask(t, s, "Buy milk")
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, slot.Unscheduled, created.Slot)
	assert.Equal(t, task.StatusPending, created.Status)

	view := fetchBoard(t, s)
	require.Len(t, view.Pool, 1)
	assert.Equal(t, "Buy milk", view.Pool[0].Title)
}

func TestCreateTaskRejectsBlankTitle(t *testing.T) {
	s := newTestServer(t)

	rec := do(s, http.MethodPost, "/api/tasks", `{"title":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(s, http.MethodPost, "/api/tasks", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Empty(t, fetchBoard(t, s).Pool)
}

func TestDropTaskIntoSlot(t *testing.T) {
	s := newTestServer(t)
	created := createTask(t, s, "Buy milk")

	body := fmt.Sprintf(`{"kind":"task","item_id":%q,"zone":"slot/09:00"}`, created.ID)
	rec := do(s, http.MethodPost, "/api/drops", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	view := fetchBoard(t, s)
	assert.Empty(t, view.Pool)
	for _, b := range view.Buckets {
		if b.Slot == "09:00" {
			require.Len(t, b.Tasks, 1)
			assert.Equal(t, created.ID, b.Tasks[0].ID)
			return
		}
	}
	t.Fatal("bucket 09:00 missing from board view")
}

func TestDropUnknownTaskIs404(t *testing.T) {
	s := newTestServer(t)
	createTask(t, s, "Buy milk")

	rec := do(s, http.MethodPost, "/api/drops", `{"kind":"task","item_id":"nonexistent-id","zone":"slot/09:00"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// nothing moved
	assert.Len(t, fetchBoard(t, s).Pool, 1)
}

func TestDropMalformedZoneIs400(t *testing.T) {
	s := newTestServer(t)
	created := createTask(t, s, "Buy milk")

	for _, zone := range []string{"garbage", "slot/", "slot/07:30", "pill/3/taken"} {
		body := fmt.Sprintf(`{"kind":"task","item_id":%q,"zone":%q}`, created.ID, zone)
		rec := do(s, http.MethodPost, "/api/drops", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "zone %q", zone)
	}
	assert.Len(t, fetchBoard(t, s).Pool, 1)
}

func TestPillDropAndGet(t *testing.T) {
	s := newTestServer(t)

	rec := do(s, http.MethodGet, "/api/pills/3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var tok pill.Token
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&tok))
	assert.False(t, tok.Taken)

	rec = do(s, http.MethodPost, "/api/drops", `{"kind":"pill","item_id":"3","zone":"pill/3/taken"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(s, http.MethodGet, "/api/pills/3", "")
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&tok))
	assert.True(t, tok.Taken)

	rec = do(s, http.MethodGet, "/api/pills/99", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSlotsAndStatus(t *testing.T) {
	s := newTestServer(t)

	rec := do(s, http.MethodGet, "/api/slots", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var slots []string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&slots))
	assert.Len(t, slots, 17)

	created := createTask(t, s, "Buy milk")
	createTask(t, s, "Call dentist")
	do(s, http.MethodPost, "/api/drops", fmt.Sprintf(`{"kind":"task","item_id":%q,"zone":"slot/09:00"}`, created.ID))
	do(s, http.MethodPost, "/api/drops", `{"kind":"pill","item_id":"0","zone":"pill/0/taken"}`)

	rec = do(s, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var status map[string]int
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	assert.Equal(t, 2, status["tasks"])
	assert.Equal(t, 1, status["unscheduled"])
	assert.Equal(t, 1, status["scheduled"])
	assert.Equal(t, 1, status["pills_taken"])
}

func TestTaskListFiltersBySlot(t *testing.T) {
	s := newTestServer(t)
	created := createTask(t, s, "Buy milk")
	createTask(t, s, "Call dentist")
	do(s, http.MethodPost, "/api/drops", fmt.Sprintf(`{"kind":"task","item_id":%q,"zone":"slot/14:00"}`, created.ID))

	rec := do(s, http.MethodGet, "/api/tasks?slot=14:00", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var tasks []task.Task
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, "Buy milk", tasks[0].Title)

	rec = do(s, http.MethodGet, "/api/tasks", "")
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&tasks))
	assert.Len(t, tasks, 2)
}

func TestEmptyBoardSerializesEmptyArrays(t *testing.T) {
	s := newTestServer(t)

	rec := do(s, http.MethodGet, "/api/board", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"pool":[]`)
	assert.Contains(t, body, `"tasks":[]`)
	assert.NotContains(t, body, "null")
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := do(s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
