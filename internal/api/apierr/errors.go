package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/quizroom/quizroom-go/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest       = "INVALID_REQUEST"
	CodeRoomNotFound         = "ROOM_NOT_FOUND"
	CodePlayerNotFound       = "PLAYER_NOT_FOUND"
	CodeRoomAlreadyStarted   = "ROOM_ALREADY_STARTED"
	CodeRoomEnded            = "ROOM_ENDED"
	CodeGameNotStarted       = "GAME_NOT_STARTED"
	CodePlayerCompleted      = "PLAYER_COMPLETED"
	CodeInvalidQuestionIndex = "INVALID_QUESTION_INDEX"
	CodeInternalError        = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrRoomNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeRoomNotFound, "Room not found"}}
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found in this room"}}
	case errors.Is(err, model.ErrRoomAlreadyStarted):
		return &httpError{http.StatusConflict, APIError{CodeRoomAlreadyStarted, "Game has already started"}}
	case errors.Is(err, model.ErrRoomEnded):
		return &httpError{http.StatusConflict, APIError{CodeRoomEnded, "Game has already ended"}}
	case errors.Is(err, model.ErrGameNotStarted):
		return &httpError{http.StatusConflict, APIError{CodeGameNotStarted, "Game has not started yet"}}
	case errors.Is(err, model.ErrPlayerCompleted):
		return &httpError{http.StatusConflict, APIError{CodePlayerCompleted, "Player has already answered every question"}}
	case errors.Is(err, model.ErrInvalidQuestionIndex):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidQuestionIndex, "Question index out of range"}}
	case errors.Is(err, model.ErrNoQuestions):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "At least one question is required"}}
	case errors.Is(err, model.ErrInvalidTimeLimit):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "Time limit must be positive"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
