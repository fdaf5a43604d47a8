package sessions

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/JaimeStill/brief/internal/metrics"
	"github.com/JaimeStill/brief/internal/pipeline"
	"github.com/JaimeStill/brief/pkg/handlers"
)

const heartbeatInterval = 15 * time.Second

// Events streams state transitions as server-sent events.
// The current state is sent first; the stream ends when the session is deleted.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	info, err := h.sys.Find(id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, fmt.Errorf("streaming not supported"))
		return
	}

	states, cleanup, err := h.sys.Subscribe(id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	defer cleanup()

	metrics.SSEActiveConnections.Inc()
	defer metrics.SSEActiveConnections.Dec()

	// Streams outlive the server write timeout.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	start := time.Now()
	seq := 0
	h.writeState(w, flusher, seq, info.State)

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			h.logger.Info("state stream closed", "session", id, "reason", "client_disconnect", "duration", time.Since(start))
			return
		case s, ok := <-states:
			if !ok {
				fmt.Fprint(w, "event: end\ndata: {}\n\n")
				flusher.Flush()
				h.logger.Info("state stream closed", "session", id, "reason", "session_closed", "duration", time.Since(start))
				return
			}
			seq++
			h.writeState(w, flusher, seq, s)
		case <-heartbeat.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()
		}
	}
}

func (h *Handler) writeState(w http.ResponseWriter, flusher http.Flusher, seq int, s pipeline.State) {
	data, err := json.Marshal(s)
	if err != nil {
		h.logger.Error("failed to encode state event", "error", err)
		return
	}
	if _, err := fmt.Fprintf(w, "id: %d\nevent: state\ndata: %s\n\n", seq, data); err != nil {
		h.logger.Error("failed to write state event", "error", err)
		return
	}
	flusher.Flush()
}
