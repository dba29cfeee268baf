package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Matheesha-Abiman/EasyInvoice/internal/middleware"
)

// handleStreamBills serves the live bill list as server-sent events: one
// `data:` frame per snapshot, full result set every time. The subscription
// is torn down when the client disconnects.
func (s *Server) handleStreamBills(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "streaming unsupported"})
		return
	}

	userID := middleware.GetUserID(r.Context())
	sub, err := s.repo.StreamBillsForOwner(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case bills, open := <-sub.C:
			if !open {
				return
			}
			payload, err := json.Marshal(toBillResponses(bills))
			if err != nil {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
