package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/quizroom/quizroom-go/internal/api/request"
	"github.com/quizroom/quizroom-go/internal/api/response"
	"github.com/quizroom/quizroom-go/internal/model"
	"github.com/quizroom/quizroom-go/internal/services/room"
)

// RoomHandler handles room-related endpoints
type RoomHandler struct {
	roomController *room.Controller
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(roomController *room.Controller) *RoomHandler {
	return &RoomHandler{
		roomController: roomController,
	}
}

// Create handles POST /api/v1/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	code, err := h.roomController.CreateRoom(r.Context(), req.Questions, req.TimeLimit)
	if err != nil {
		WriteError(w, err)
		return
	}

	created, err := h.roomController.GetRoom(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.CreateRoomResponse{
		Room: response.RoomFromModel(created),
	})
}

// Get handles GET /api/v1/rooms/{code}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := model.RoomCode(mux.Vars(r)["code"])

	state, err := h.roomController.GetRoom(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomFromModel(state))
}

// Join handles POST /api/v1/rooms/{code}/join
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	code := model.RoomCode(mux.Vars(r)["code"])

	var req request.JoinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.PlayerName == "" {
		WriteError(w, NewInvalidRequestError("player_name is required"))
		return
	}

	playerID, err := h.roomController.Join(r.Context(), code, req.PlayerName, req.IsHost)
	if err != nil {
		WriteError(w, err)
		return
	}

	state, err := h.roomController.GetRoom(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.JoinRoomResponse{
		PlayerID: string(playerID),
		Room:     response.RoomFromModel(state),
	})
}

// Start handles POST /api/v1/rooms/{code}/start
func (h *RoomHandler) Start(w http.ResponseWriter, r *http.Request) {
	code := model.RoomCode(mux.Vars(r)["code"])

	if err := h.roomController.Start(r.Context(), code); err != nil {
		WriteError(w, err)
		return
	}

	state, err := h.roomController.GetRoom(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomFromModel(state))
}

// SubmitAnswer handles POST /api/v1/rooms/{code}/answers
func (h *RoomHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	code := model.RoomCode(mux.Vars(r)["code"])

	var req request.SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.PlayerID == "" {
		WriteError(w, NewInvalidRequestError("player_id is required"))
		return
	}

	score, err := h.roomController.SubmitAnswer(r.Context(), code, model.PlayerID(req.PlayerID), req.QuestionIndex, req.Answer)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SubmitAnswerResponse{Score: score})
}
