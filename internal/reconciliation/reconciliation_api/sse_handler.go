package reconciliation_api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"ms-registration/internal/models"

	"github.com/go-chi/chi/v5"
)

// Stream pushes a snapshot whenever the event is refreshed, starting with the current one.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	eventCode := chi.URLParam(r, "eventCode")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	current, err := h.Dashboard.Snapshot(ctx, eventCode, false)
	if err != nil {
		h.writeError(w, "Stream", err, "")
		return
	}

	setupSSEHeaders(w)
	updates := h.Events.Subscribe(ctx, eventCode)

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"eventCode\":%q}\n\n", eventCode)
	h.writeSnapshot(w, current)
	flusher.Flush()

	h.Logger.Info("SSE", fmt.Sprintf("Client connected to dashboard stream for %s", eventCode))

	for {
		select {
		case snap, ok := <-updates:
			if !ok {
				h.Logger.Debug("SSE", fmt.Sprintf("Channel closed for %s", eventCode))
				return
			}
			h.writeSnapshot(w, &snap)
			flusher.Flush()
		case <-ctx.Done():
			h.Logger.Debug("SSE", fmt.Sprintf("Client disconnected from dashboard stream for %s", eventCode))
			return
		}
	}
}

func (h *Handler) writeSnapshot(w http.ResponseWriter, snap *models.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		h.Logger.Error("SSE", fmt.Sprintf("Failed to serialize snapshot: %v", err))
		return
	}
	fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", data)
}

func setupSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream;charset=UTF-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, max-age=0, must-revalidate")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Accel-Buffering", "no")
}
