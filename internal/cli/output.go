package cli

import (
	"encoding/json"
	"fmt"
	"os"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Room:
		o.printRoom(v)
	case CreateRoomResult:
		o.printRoom(v.Room)
	case JoinRoomResult:
		o.printJoinResult(v)
	case SubmitAnswerResult:
		o.printSubmitResult(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	Name      string `json:"name"`
	Score     int    `json:"score"`
	Progress  int    `json:"progress"`
	Completed bool   `json:"completed"`
	IsHost    bool   `json:"is_host"`
}

// LeaderboardEntry response type
type LeaderboardEntry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Room response type
type Room struct {
	Code          string             `json:"code"`
	Status        string             `json:"status"`
	QuestionCount int                `json:"question_count"`
	TimeLimit     int                `json:"time_limit"`
	Players       []Player           `json:"players"`
	Leaderboard   []LeaderboardEntry `json:"leaderboard,omitempty"`
}

// CreateRoomResult response type
type CreateRoomResult struct {
	Room Room `json:"room"`
}

// JoinRoomResult response type
type JoinRoomResult struct {
	PlayerID string `json:"player_id"`
	Room     Room   `json:"room"`
}

// SubmitAnswerResult response type
type SubmitAnswerResult struct {
	Score int `json:"score"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printRoom(r Room) {
	fmt.Printf("Room: %s\n", r.Code)
	fmt.Printf("Status: %s\n", r.Status)
	fmt.Printf("Questions: %d\n", r.QuestionCount)
	fmt.Printf("Time Limit: %ds\n", r.TimeLimit)
	fmt.Printf("Players (%d):\n", len(r.Players))
	for _, p := range r.Players {
		hostStr := ""
		if p.IsHost {
			hostStr = " [host]"
		}
		doneStr := ""
		if p.Completed {
			doneStr = " (done)"
		}
		fmt.Printf("  - %s: %d pts, %d/%d%s%s\n", p.Name, p.Score, p.Progress, r.QuestionCount, doneStr, hostStr)
	}
	if len(r.Leaderboard) > 0 {
		fmt.Println("Final Leaderboard:")
		for i, e := range r.Leaderboard {
			fmt.Printf("  %d. %s: %d pts\n", i+1, e.Name, e.Score)
		}
	}
}

func (o *Output) printJoinResult(j JoinRoomResult) {
	fmt.Printf("Joined as player: %s\n", j.PlayerID)
	o.printRoom(j.Room)
}

func (o *Output) printSubmitResult(s SubmitAnswerResult) {
	fmt.Printf("Score: %d\n", s.Score)
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
