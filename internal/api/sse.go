package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
)

// StreamLogs handles GET /api/v1/logs/stream (SSE)
func (h *Handlers) StreamLogs(w http.ResponseWriter, r *http.Request) {
	filter, err := parseStreamFilter(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "BAD_FILTER",
		})
		return
	}

	// Check if flusher is available
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	// Subscribe to ingested records
	subID, ch, err := h.store.Subscribe(filter)
	if err != nil {
		writeError(w, err)
		return
	}
	defer h.store.Unsubscribe(subID)

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	// Send initial comment to establish connection
	fmt.Fprintf(w, ": connected\n\n")
	flusher.Flush()

	// Stream records
	// Protection against slow clients:
	// 1. The subscription channel is buffered - if the client can't keep up,
	//    records are dropped at the store
	// 2. Write errors cause the handler to return, cleaning up the subscription
	// 3. Context cancellation (client disconnect) is handled via select
	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}

			data, err := json.Marshal(ToStreamEventResponse(ev))
			if err != nil {
				continue
			}

			// Send SSE event - handle write errors to detect slow/disconnected clients
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				log.Printf("SSE write error (client likely disconnected): %v", err)
				return
			}
			flusher.Flush()
		}
	}
}
