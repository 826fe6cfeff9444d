package orch

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/dkeye/Relay/internal/domain"
	"github.com/dkeye/Relay/internal/protocol"
	"github.com/rs/zerolog/log"
)

const (
	msgInvalidToken    = "invalid token"
	msgMissingClientID = "missing clientId"
	msgTooManyAttempts = "too many join attempts"
	msgRoomIDTooLong   = "roomId too long"
)

const MaxRoomIDLen = 128

var ErrRoomIDTooLong = errors.New("roomId too long")

// IssueRoom rotates the room's token, generating a room id when none is given.
func (o *Orchestrator) IssueRoom(ctx context.Context, room domain.RoomID) (domain.RoomID, domain.Token, error) {
	if len(room) > MaxRoomIDLen {
		return "", "", fmt.Errorf("%w: %d bytes", ErrRoomIDTooLong, len(room))
	}
	if room == "" {
		room = domain.NewRoomID()
	}
	tok := o.Registry.CreateRoom(room)
	o.Metrics.RoomsCreated.Add(ctx, 1)
	return room, tok, nil
}

func (o *Orchestrator) CreateRoom(ctx context.Context, p *Peer, msg protocol.CreateRoom) {
	room, tok, err := o.IssueRoom(ctx, msg.RoomID)
	if err != nil {
		log.Warn().Err(err).Str("module", "app.orch").Str("sid", p.SID).Msg("create room rejected")
		o.sendJSON(p.Conn, protocol.NewAuthError(msgRoomIDTooLong))
		return
	}
	log.Info().Str("module", "app.orch").Str("sid", p.SID).Str("room_id", string(room)).Msg("create room")
	o.sendJSON(p.Conn, protocol.NewRoomCreated(room, tok))
}

func (o *Orchestrator) Join(ctx context.Context, p *Peer, msg protocol.Join) {
	logger := log.With().Str("module", "app.orch").Str("sid", p.SID).Str("room_id", string(msg.RoomID)).Str("client_id", string(msg.ClientID)).Logger()

	if o.Limiter != nil && !o.Limiter.Allow(p.SID) {
		logger.Warn().Msg("join rate limited")
		o.Metrics.AuthFailures.Add(ctx, 1)
		o.sendJSON(p.Conn, protocol.NewAuthError(msgTooManyAttempts))
		return
	}
	if msg.ClientID == "" {
		logger.Warn().Msg("join without client id")
		o.sendJSON(p.Conn, protocol.NewAuthError(msgMissingClientID))
		return
	}

	// token check and insert are one registry step
	others, ok := o.Registry.JoinIfValid(msg.RoomID, msg.ClientID, msg.Token, p.Conn)
	if !ok {
		logger.Warn().Msg("join rejected")
		o.Metrics.AuthFailures.Add(ctx, 1)
		o.sendJSON(p.Conn, protocol.NewAuthError(msgInvalidToken))
		return
	}

	if room, client, bound := p.Binding(); bound && (room != msg.RoomID || client != msg.ClientID) {
		o.depart(ctx, p, room, client)
		if room == msg.RoomID {
			others = slices.DeleteFunc(others, func(id domain.ParticipantID) bool { return id == client })
		}
		logger.Info().Str("from_room", string(room)).Str("from_client", string(client)).Msg("left previous binding on rejoin")
	}

	p.bind(msg.RoomID, msg.ClientID)
	o.Metrics.Joins.Add(ctx, 1)
	logger.Info().Msg("join")

	o.sendJSON(p.Conn, protocol.NewParticipants(msg.RoomID, others))
	o.broadcast(msg.RoomID, msg.ClientID, p.Conn, protocol.NewParticipantJoined(msg.RoomID, msg.ClientID))
}

// Leave only removes a participant registered under this very connection;
// anything else is a no-op.
func (o *Orchestrator) Leave(ctx context.Context, p *Peer, msg protocol.Leave) {
	if !o.depart(ctx, p, msg.RoomID, msg.ClientID) {
		log.Debug().Str("module", "app.orch").Str("sid", p.SID).Str("room_id", string(msg.RoomID)).Str("client_id", string(msg.ClientID)).Msg("leave for unknown participant ignored")
	}
}

// Disconnect runs the leave cleanup for whatever p is joined as. It is safe
// to call more than once.
func (o *Orchestrator) Disconnect(ctx context.Context, p *Peer) {
	room, client, ok := p.Binding()
	if !ok {
		return
	}
	o.depart(ctx, p, room, client)
	log.Info().Str("module", "app.orch").Str("sid", p.SID).Str("room_id", string(room)).Str("client_id", string(client)).Msg("disconnect")
}

func (o *Orchestrator) depart(ctx context.Context, p *Peer, room domain.RoomID, client domain.ParticipantID) bool {
	if !o.Registry.RemoveConnection(room, client, p.Conn) {
		p.unbindIf(room, client)
		return false
	}
	p.unbindIf(room, client)
	o.Metrics.Leaves.Add(ctx, 1)
	o.broadcast(room, client, p.Conn, protocol.NewParticipantLeft(room, client))
	return true
}
