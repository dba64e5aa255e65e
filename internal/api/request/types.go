package request

import "github.com/quizroom/quizroom-go/internal/model"

// CreateRoomRequest is the request body for creating a room
type CreateRoomRequest struct {
	Questions []model.Question `json:"questions"`
	TimeLimit int              `json:"time_limit"`
}

// JoinRoomRequest is the request body for joining a room
type JoinRoomRequest struct {
	PlayerName string `json:"player_name"`
	IsHost     bool   `json:"is_host,omitempty"`
}

// SubmitAnswerRequest is the request body for submitting an answer
type SubmitAnswerRequest struct {
	PlayerID      string `json:"player_id"`
	QuestionIndex int    `json:"question_index"`
	Answer        string `json:"answer"`
}
