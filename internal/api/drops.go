package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"dayslot/pkg/drop"
)

func (s *Server) handleDrop(w http.ResponseWriter, r *http.Request) {
	var ev drop.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeError(w, 400, "invalid JSON: "+err.Error())
		return
	}
	if err := s.drops.Apply(r.Context(), ev); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{"applied": ev})
}

func (s *Server) handlePillList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, 200, s.pills.Tokens())
}

func (s *Server) handlePillGet(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, 400, "bad slot index: "+r.PathValue("index"))
		return
	}
	token, err := s.pills.Get(index)
	if err != nil {
		writeError(w, 404, err.Error())
		return
	}
	writeJSON(w, 200, token)
}
