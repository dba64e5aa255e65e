package model

// Event names published to room subscribers
const (
	EventUserJoined         = "user-joined"
	EventGameStarted        = "game-started"
	EventLeaderboardUpdated = "leaderboard-updated"
	EventGameEnded          = "game-ended"
)

// UserJoinedPayload contains data for user-joined events
type UserJoinedPayload struct {
	PlayerName string `json:"player_name"`
}

// GameStartedPayload contains data for game-started events.
// Leaderboard here is the unsorted zero-score roster, distinct from the
// ranked leaderboard of later events.
type GameStartedPayload struct {
	Questions   []Question    `json:"questions"`
	Leaderboard []RosterEntry `json:"leaderboard"`
	TimeLimit   int           `json:"time_limit"`
}

// LeaderboardUpdatedPayload contains data for leaderboard-updated events
type LeaderboardUpdatedPayload struct {
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}

// GameEndedPayload contains data for game-ended events
type GameEndedPayload struct {
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}
