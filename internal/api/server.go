package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"dayslot/pkg/board"
	"dayslot/pkg/drop"
	"dayslot/pkg/feed"
	"dayslot/pkg/pill"
)

// Server is the HTTP API server.
type Server struct {
	board   *board.Board
	pills   *pill.Track
	drops   *drop.Dispatcher
	changes *feed.Feed
	mux     *http.ServeMux
}

// New creates a new Server.
func New(b *board.Board, p *pill.Track, changes *feed.Feed) *Server {
	s := &Server{
		board:   b,
		pills:   p,
		drops:   drop.NewDispatcher(b, p),
		changes: changes,
		mux:     http.NewServeMux(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) routes() {
	// Board
	s.mux.HandleFunc("GET /api/slots", s.handleSlots)
	s.mux.HandleFunc("GET /api/board", s.handleBoard)
	s.mux.HandleFunc("GET /api/tasks", s.handleTaskList)
	s.mux.HandleFunc("POST /api/tasks", s.handleTaskCreate)

	// Drops
	s.mux.HandleFunc("POST /api/drops", s.handleDrop)

	// Pills
	s.mux.HandleFunc("GET /api/pills", s.handlePillList)
	s.mux.HandleFunc("GET /api/pills/{index}", s.handlePillGet)

	// System
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/status", s.handleStatus)
	s.mux.HandleFunc("GET /api/changes/stream", s.handleChangeStream)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, 200, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	total, unscheduled := s.board.Counts()
	writeJSON(w, 200, map[string]int{
		"tasks":          total,
		"unscheduled":    unscheduled,
		"scheduled":      total - unscheduled,
		"pills_taken":    s.pills.TakenCount(),
		"write_failures": s.board.WriteFailures(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write json: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps owner errors onto HTTP statuses. Referential and
// input errors were rejected before any mutation, so a 4xx response
// means nothing changed.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, board.ErrUnknownTask):
		writeError(w, 404, err.Error())
	case errors.Is(err, board.ErrEmptyTitle),
		errors.Is(err, board.ErrInvalidSlot),
		errors.Is(err, board.ErrNotLoaded),
		errors.Is(err, pill.ErrUnknownSlot),
		errors.Is(err, drop.ErrMalformedZone),
		errors.Is(err, drop.ErrUnknownKind):
		writeError(w, 400, err.Error())
	default:
		writeError(w, 500, err.Error())
	}
}
