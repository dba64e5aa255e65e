package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/quizroom/quizroom-go/internal/api/handler"
	"github.com/quizroom/quizroom-go/internal/api/middleware"
	"github.com/quizroom/quizroom-go/internal/broadcast"
	"github.com/quizroom/quizroom-go/internal/services/room"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	RoomController *room.Controller
	Gateway        broadcast.Gateway
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	roomHandler := handler.NewRoomHandler(cfg.RoomController)
	eventsHandler := handler.NewEventsHandler(cfg.RoomController, cfg.Gateway, cfg.Logger)

	// Create middleware
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Room routes
	rooms := api.PathPrefix("/rooms").Subrouter()
	rooms.HandleFunc("", roomHandler.Create).Methods(http.MethodPost)
	rooms.HandleFunc("/{code}", roomHandler.Get).Methods(http.MethodGet)
	rooms.HandleFunc("/{code}/join", roomHandler.Join).Methods(http.MethodPost)
	rooms.HandleFunc("/{code}/start", roomHandler.Start).Methods(http.MethodPost)
	rooms.HandleFunc("/{code}/answers", roomHandler.SubmitAnswer).Methods(http.MethodPost)
	rooms.HandleFunc("/{code}/events", eventsHandler.Stream).Methods(http.MethodGet)

	// Health check endpoint
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
