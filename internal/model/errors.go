package model

import "errors"

// Common errors used across the application
var (
	// Lookup errors
	ErrRoomNotFound   = errors.New("room not found")
	ErrPlayerNotFound = errors.New("player not found")

	// State errors
	ErrRoomAlreadyStarted = errors.New("room already started")
	ErrRoomEnded          = errors.New("room has ended")
	ErrGameNotStarted     = errors.New("game has not started")
	ErrPlayerCompleted    = errors.New("player has already answered every question")

	// Validation errors
	ErrNoQuestions          = errors.New("room requires at least one question")
	ErrInvalidTimeLimit     = errors.New("time limit must be a positive number of seconds")
	ErrInvalidQuestionIndex = errors.New("question index out of range")
)
