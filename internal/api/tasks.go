package api

import (
	"encoding/json"
	"net/http"
	"time"

	"dayslot/pkg/slot"
	"dayslot/pkg/task"
)

// bucketView is one slot and its tasks, in calendar order.
type bucketView struct {
	Slot  slot.Label  `json:"slot"`
	Tasks []task.Task `json:"tasks"`
}

// boardView is the full queryable board: the unscheduled pool plus one
// bucket per calendar slot, empty buckets included.
type boardView struct {
	Pool    []task.Task  `json:"pool"`
	Buckets []bucketView `json:"buckets"`
}

func (s *Server) handleSlots(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, 200, s.board.Calendar().Slots())
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	view := boardView{Pool: s.board.Unscheduled()}
	for _, l := range s.board.Calendar().Slots() {
		view.Buckets = append(view.Buckets, bucketView{Slot: l, Tasks: s.board.Bucket(l)})
	}
	writeJSON(w, 200, view)
}

func (s *Server) handleTaskList(w http.ResponseWriter, r *http.Request) {
	if l := r.URL.Query().Get("slot"); l != "" {
		writeJSON(w, 200, s.board.Bucket(slot.Label(l)))
		return
	}
	writeJSON(w, 200, s.board.Tasks())
}

func (s *Server) handleTaskCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, "invalid JSON: "+err.Error())
		return
	}
	t, err := s.board.Create(r.Context(), req.Title, time.Now())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, 201, t)
}
