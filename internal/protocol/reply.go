package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
)

type RoomCreated struct {
	Type   Type          `json:"type"`
	RoomID domain.RoomID `json:"roomId"`
	Token  domain.Token  `json:"token"`
}

type AuthError struct {
	Type    Type   `json:"type"`
	Message string `json:"message"`
}

type Participants struct {
	Type    Type                   `json:"type"`
	RoomID  domain.RoomID          `json:"roomId"`
	Payload []domain.ParticipantID `json:"payload"`
}

// Presence is the shape of both participant-joined and participant-left.
type Presence struct {
	Type   Type                 `json:"type"`
	RoomID domain.RoomID        `json:"roomId"`
	From   domain.ParticipantID `json:"from"`
}

func NewRoomCreated(room domain.RoomID, token domain.Token) RoomCreated {
	return RoomCreated{Type: TypeRoomCreated, RoomID: room, Token: token}
}

func NewAuthError(msg string) AuthError {
	return AuthError{Type: TypeAuthError, Message: msg}
}

// NewParticipants always yields a JSON array, never null.
func NewParticipants(room domain.RoomID, ids []domain.ParticipantID) Participants {
	if ids == nil {
		ids = []domain.ParticipantID{}
	}
	return Participants{Type: TypeParticipants, RoomID: room, Payload: ids}
}

func NewParticipantJoined(room domain.RoomID, from domain.ParticipantID) Presence {
	return Presence{Type: TypeParticipantJoined, RoomID: room, From: from}
}

func NewParticipantLeft(room domain.RoomID, from domain.ParticipantID) Presence {
	return Presence{Type: TypeParticipantLeft, RoomID: room, From: from}
}

func Encode(v any) (core.Frame, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}
	return core.Frame(b), nil
}
