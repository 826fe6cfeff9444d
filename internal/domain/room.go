// Package domain contains identifiers without logic, just meta-data
package domain

import "github.com/google/uuid"

type (
	RoomID        string
	ParticipantID string
	Token         string
)

// NewRoomID is used when create-room arrives without a caller-chosen id.
func NewRoomID() RoomID {
	return RoomID(uuid.NewString())
}

// NewToken returns a fresh room secret (uuid v4, 122 random bits).
func NewToken() Token {
	return Token(uuid.NewString())
}
