package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/quizroom/quizroom-go/internal/broadcast"
	"github.com/quizroom/quizroom-go/internal/model"
	"github.com/quizroom/quizroom-go/internal/services/room"
)

// Time between keepalive pings
const pingPeriod = 15 * time.Second

// EventsHandler streams room events to clients over SSE
type EventsHandler struct {
	roomController *room.Controller
	gateway        broadcast.Gateway
	logger         *slog.Logger
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(roomController *room.Controller, gateway broadcast.Gateway, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		roomController: roomController,
		gateway:        gateway,
		logger:         logger,
	}
}

// Stream handles GET /api/v1/rooms/{code}/events
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	code := model.RoomCode(mux.Vars(r)["code"])

	// Reject unknown rooms before committing to a stream
	if _, err := h.roomController.GetRoom(r.Context(), code); err != nil {
		WriteError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	sub, err := h.gateway.Subscribe(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}
	defer sub.Close()

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	// Send initial connection event
	_, _ = w.Write([]byte("event: connected\ndata: {\"status\":\"connected\"}\n\n"))
	flusher.Flush()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case env, ok := <-sub.Events():
			if !ok {
				// Gateway closed the subscription
				return
			}
			if _, err := w.Write(formatSSEEvent(env)); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			// Send keepalive comment
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			// Client disconnected
			return
		}
	}
}

// formatSSEEvent renders an envelope in the text/event-stream wire format
func formatSSEEvent(env broadcast.Envelope) []byte {
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", env.Event, env.Data))
}
