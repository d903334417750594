package model

import "time"

type SessionStatus string

const (
	SessionPlaying      SessionStatus = "playing"
	SessionDisconnected SessionStatus = "disconnected"
	SessionLeft         SessionStatus = "left"
)

// PlayerSession tracks a player's connection liveness independently of
// game state, so a dropped socket does not remove a paying participant.
type PlayerSession struct {
	Status      SessionStatus `json:"status"`
	InPlayRoute bool          `json:"inPlayRoute"`
	SocketID    string        `json:"socketId"`
	LastActive  time.Time     `json:"lastActive"`
}

// SessionUpdate carries partial fields merged into a session record.
// Nil pointers leave the field unchanged.
type SessionUpdate struct {
	Status      *SessionStatus
	InPlayRoute *bool
	SocketID    *string
}
