package model

import "time"

// PlayerID uniquely identifies a player within a room
type PlayerID string

// Player is a participant in a room. Score and Progress only ever grow;
// Completed is set once Progress reaches the question count and never
// reverts.
type Player struct {
	ID        PlayerID
	Name      string // display name, not required unique
	Score     int
	Progress  int // answers submitted so far
	Completed bool
	IsHost    bool // fixed at join time
	JoinedAt  time.Time
}
