// Package protocol defines the signaling message vocabulary exchanged over
// the relay's WebSocket. Every message is a JSON object discriminated by
// its "type" field.
package protocol

import (
	"encoding/json"
	"errors"

	"github.com/dkeye/Relay/internal/domain"
)

type Type string

const (
	TypeCreateRoom        Type = "create-room"
	TypeRoomCreated       Type = "room-created"
	TypeJoin              Type = "join"
	TypeAuthError         Type = "auth-error"
	TypeParticipants      Type = "participants"
	TypeParticipantJoined Type = "participant-joined"
	TypeParticipantLeft   Type = "participant-left"
	TypeLeave             Type = "leave"
)

var (
	ErrMissingType  = errors.New("missing message type")
	ErrReservedType = errors.New("message type is reserved for the relay")
)

// Message is one decoded inbound message. The concrete type is one of
// CreateRoom, Join, Leave, Routed or Unrecognized.
type Message interface {
	isMessage()
}

type CreateRoom struct {
	RoomID domain.RoomID `json:"roomId"`
}

type Join struct {
	RoomID   domain.RoomID        `json:"roomId"`
	ClientID domain.ParticipantID `json:"clientId"`
	Token    domain.Token         `json:"token"`
}

type Leave struct {
	RoomID   domain.RoomID        `json:"roomId"`
	ClientID domain.ParticipantID `json:"clientId"`
}

// Routed is any message whose type is neither a control type nor one the
// relay itself emits. The relay only reads the addressing fields; Raw is
// forwarded untouched.
type Routed struct {
	Type    Type                 `json:"type"`
	RoomID  domain.RoomID        `json:"roomId"`
	From    domain.ParticipantID `json:"from"`
	To      domain.ParticipantID `json:"to"`
	Payload json.RawMessage      `json:"payload,omitempty"`

	Raw []byte `json:"-"`
}

// Unrecognized carries input that could not be decoded.
type Unrecognized struct {
	Raw []byte
	Err error
}

func (CreateRoom) isMessage()   {}
func (Join) isMessage()         {}
func (Leave) isMessage()        {}
func (Routed) isMessage()       {}
func (Unrecognized) isMessage() {}

// Decode never fails; bad input comes back as Unrecognized.
func Decode(data []byte) Message {
	var env struct {
		Type Type `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return Unrecognized{Raw: data, Err: err}
	}
	if env.Type == "" {
		return Unrecognized{Raw: data, Err: ErrMissingType}
	}

	switch env.Type {
	case TypeCreateRoom:
		var m CreateRoom
		if err := json.Unmarshal(data, &m); err != nil {
			return Unrecognized{Raw: data, Err: err}
		}
		return m
	case TypeJoin:
		var m Join
		if err := json.Unmarshal(data, &m); err != nil {
			return Unrecognized{Raw: data, Err: err}
		}
		return m
	case TypeLeave:
		var m Leave
		if err := json.Unmarshal(data, &m); err != nil {
			return Unrecognized{Raw: data, Err: err}
		}
		return m
	case TypeRoomCreated, TypeAuthError, TypeParticipants, TypeParticipantJoined, TypeParticipantLeft:
		return Unrecognized{Raw: data, Err: ErrReservedType}
	default:
		var m Routed
		if err := json.Unmarshal(data, &m); err != nil {
			return Unrecognized{Raw: data, Err: err}
		}
		m.Raw = data
		return m
	}
}
