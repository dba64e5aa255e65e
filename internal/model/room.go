package model

import (
	"sort"
	"time"
)

// RoomCode is the short identifier players use to join a room
type RoomCode string

// RoomStatus represents the current phase of a room's quiz session
type RoomStatus string

const (
	RoomStatusWaiting RoomStatus = "waiting" // Accepting players, game not started
	RoomStatusStarted RoomStatus = "started" // Timed session in progress
	RoomStatusEnded   RoomStatus = "ended"   // Session over, leaderboard frozen
)

// Question is a single quiz question with its expected answer
type Question struct {
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correct_answer"`
}

// Room represents a single quiz session.
// Code, Questions and TimeLimit are immutable after creation; StartTime and
// EndTime are set exactly once when the game starts. The status machine is
// monotonic: waiting -> started -> ended, never backwards.
type Room struct {
	Code      RoomCode
	Questions []Question
	TimeLimit int // seconds

	Status    RoomStatus
	StartTime time.Time // zero until started
	EndTime   time.Time // StartTime + TimeLimit once started

	// Players in join order. Order matters: it is the tie-break for
	// leaderboard entries with equal scores, and the order of the
	// game-started roster.
	Players []Player

	// Leaderboard is the final snapshot, written once at the ended
	// transition and never touched again.
	Leaderboard []LeaderboardEntry

	CreatedAt time.Time
}

// LeaderboardEntry is one row of a score-ranked leaderboard
type LeaderboardEntry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// RosterEntry is one row of the game-started player snapshot.
// Unlike the leaderboard it is unsorted and carries the host flag.
type RosterEntry struct {
	Name   string `json:"name"`
	Score  int    `json:"score"`
	IsHost bool   `json:"is_host"`
}

// Player returns the player with the given ID, or nil if not in the room
func (r *Room) Player(id PlayerID) *Player {
	for i := range r.Players {
		if r.Players[i].ID == id {
			return &r.Players[i]
		}
	}
	return nil
}

// AllCompleted returns true if every player has answered every question.
// A room with no players has trivially completed.
func (r *Room) AllCompleted() bool {
	for i := range r.Players {
		if !r.Players[i].Completed {
			return false
		}
	}
	return true
}

// ComputeLeaderboard ranks players by score, descending. The sort is
// stable, so equal scores keep join order.
func (r *Room) ComputeLeaderboard() []LeaderboardEntry {
	entries := make([]LeaderboardEntry, 0, len(r.Players))
	for i := range r.Players {
		entries = append(entries, LeaderboardEntry{
			Name:  r.Players[i].Name,
			Score: r.Players[i].Score,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	return entries
}

// Roster returns the unsorted zero-score player snapshot published with
// game-started.
func (r *Room) Roster() []RosterEntry {
	roster := make([]RosterEntry, 0, len(r.Players))
	for i := range r.Players {
		roster = append(roster, RosterEntry{
			Name:   r.Players[i].Name,
			Score:  0,
			IsHost: r.Players[i].IsHost,
		})
	}
	return roster
}

// Clone returns a deep copy of the room, safe to hand out while the
// original keeps mutating under its lock.
func (r *Room) Clone() *Room {
	c := *r
	c.Questions = append([]Question(nil), r.Questions...)
	c.Players = append([]Player(nil), r.Players...)
	c.Leaderboard = append([]LeaderboardEntry(nil), r.Leaderboard...)
	return &c
}
