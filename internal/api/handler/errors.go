package handler

import (
	"net/http"

	"github.com/quizroom/quizroom-go/internal/api/apierr"
)

// Re-export from apierr for convenience
type APIError = apierr.APIError
type ErrorResponse = apierr.ErrorResponse

// Re-export error codes
const (
	CodeInvalidRequest       = apierr.CodeInvalidRequest
	CodeRoomNotFound         = apierr.CodeRoomNotFound
	CodePlayerNotFound       = apierr.CodePlayerNotFound
	CodeRoomAlreadyStarted   = apierr.CodeRoomAlreadyStarted
	CodeRoomEnded            = apierr.CodeRoomEnded
	CodeGameNotStarted       = apierr.CodeGameNotStarted
	CodePlayerCompleted      = apierr.CodePlayerCompleted
	CodeInvalidQuestionIndex = apierr.CodeInvalidQuestionIndex
	CodeInternalError        = apierr.CodeInternalError
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return apierr.NewInternalError()
}
