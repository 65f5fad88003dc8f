package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// handleChangeStream pushes applied transitions to the client as
// server-sent events. The view layer may use this instead of polling;
// nothing in the core depends on anyone listening.
func (s *Server) handleChangeStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, 500, "streaming not supported")
		return
	}
	if s.changes == nil {
		writeError(w, 404, "change feed not enabled")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	ch := s.changes.Subscribe()
	defer s.changes.Unsubscribe(ch)

	ctx := r.Context()
	enc := json.NewEncoder(w)
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-ch:
			fmt.Fprintf(w, "data: ")
			enc.Encode(c)
			fmt.Fprintf(w, "\n\n")
			flusher.Flush()
		}
	}
}
