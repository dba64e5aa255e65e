package response

import (
	"time"

	"github.com/quizroom/quizroom-go/internal/model"
)

// Player represents a room member in API responses. Player IDs are
// private credentials returned only to the player who joined, so the
// roster view omits them.
type Player struct {
	Name      string `json:"name"`
	Score     int    `json:"score"`
	Progress  int    `json:"progress"`
	Completed bool   `json:"completed"`
	IsHost    bool   `json:"is_host"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		Name:      p.Name,
		Score:     p.Score,
		Progress:  p.Progress,
		Completed: p.Completed,
		IsHost:    p.IsHost,
	}
}

// LeaderboardEntry represents a ranked leaderboard row
type LeaderboardEntry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// LeaderboardFromModel converts a model leaderboard
func LeaderboardFromModel(entries []model.LeaderboardEntry) []LeaderboardEntry {
	out := make([]LeaderboardEntry, len(entries))
	for i, e := range entries {
		out[i] = LeaderboardEntry{Name: e.Name, Score: e.Score}
	}
	return out
}

// Room represents a room in API responses
type Room struct {
	Code          string             `json:"code"`
	Status        string             `json:"status"`
	QuestionCount int                `json:"question_count"`
	TimeLimit     int                `json:"time_limit"`
	Players       []Player           `json:"players"`
	Leaderboard   []LeaderboardEntry `json:"leaderboard,omitempty"`
	StartTime     *time.Time         `json:"start_time,omitempty"`
	EndTime       *time.Time         `json:"end_time,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

// RoomFromModel converts model.Room
func RoomFromModel(r *model.Room) Room {
	players := make([]Player, len(r.Players))
	for i := range r.Players {
		players[i] = PlayerFromModel(&r.Players[i])
	}

	var startTime, endTime *time.Time
	if !r.StartTime.IsZero() {
		t := r.StartTime
		startTime = &t
	}
	if !r.EndTime.IsZero() {
		t := r.EndTime
		endTime = &t
	}

	var leaderboard []LeaderboardEntry
	if len(r.Leaderboard) > 0 {
		leaderboard = LeaderboardFromModel(r.Leaderboard)
	}

	return Room{
		Code:          string(r.Code),
		Status:        string(r.Status),
		QuestionCount: len(r.Questions),
		TimeLimit:     r.TimeLimit,
		Players:       players,
		Leaderboard:   leaderboard,
		StartTime:     startTime,
		EndTime:       endTime,
		CreatedAt:     r.CreatedAt,
	}
}

// CreateRoomResponse is the response for creating a room
type CreateRoomResponse struct {
	Room Room `json:"room"`
}

// JoinRoomResponse is the response for joining a room
type JoinRoomResponse struct {
	PlayerID string `json:"player_id"`
	Room     Room   `json:"room"`
}

// SubmitAnswerResponse is the response for submitting an answer
type SubmitAnswerResponse struct {
	Score int `json:"score"`
}
