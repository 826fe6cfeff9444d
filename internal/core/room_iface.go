package core

import (
	"github.com/dkeye/Relay/internal/domain"
)

// Member is a snapshot entry of a room's participant set.
type Member struct {
	ID   domain.ParticipantID
	Conn SignalConnection
}

// RoomRegistry is the single source of truth for rooms, tokens and membership.
// It stores connection handles but never touches transport resources.
type RoomRegistry interface {
	CreateRoom(room domain.RoomID) domain.Token
	ValidateToken(room domain.RoomID, token domain.Token) bool

	AddParticipant(room domain.RoomID, id domain.ParticipantID, conn SignalConnection)
	// JoinIfValid checks the token and adds id in one step, returning the
	// other participants as of that moment. ok is false on a bad token.
	JoinIfValid(room domain.RoomID, id domain.ParticipantID, token domain.Token, conn SignalConnection) (others []domain.ParticipantID, ok bool)
	RemoveParticipant(room domain.RoomID, id domain.ParticipantID) bool
	RemoveConnection(room domain.RoomID, id domain.ParticipantID, conn SignalConnection) bool

	ListOtherParticipants(room domain.RoomID, excluding domain.ParticipantID) []domain.ParticipantID
	GetConnection(room domain.RoomID, id domain.ParticipantID) (SignalConnection, bool)
	Participants(room domain.RoomID) []Member

	RoomInfo(room domain.RoomID) (domain.RoomInfo, bool)
	List() []domain.RoomInfo
}
