package orch

import (
	"context"

	"github.com/dkeye/Relay/internal/app"
	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/dkeye/Relay/internal/protocol"
	"github.com/dkeye/Relay/internal/telemetry"
	"github.com/rs/zerolog/log"
)

// Orchestrator interprets the signaling vocabulary. It knows nothing about
// SDP or ICE: beyond room auth and membership bookkeeping it only routes.
type Orchestrator struct {
	Registry core.RoomRegistry
	Policy   app.Policy
	Limiter  *app.RoomRateLimiter
	Metrics  *telemetry.Metrics
}

func NewOrchestrator(reg core.RoomRegistry, policy app.Policy, limiter *app.RoomRateLimiter, m *telemetry.Metrics) *Orchestrator {
	if m == nil {
		m = telemetry.Nop()
	}
	return &Orchestrator{
		Registry: reg,
		Policy:   policy,
		Limiter:  limiter,
		Metrics:  m,
	}
}

// Dispatch handles one inbound message from p. It never returns an error:
// every failure becomes a reply, a silent drop or a cleanup.
func (o *Orchestrator) Dispatch(ctx context.Context, p *Peer, data []byte) {
	switch msg := protocol.Decode(data).(type) {
	case protocol.CreateRoom:
		o.CreateRoom(ctx, p, msg)
	case protocol.Join:
		o.Join(ctx, p, msg)
	case protocol.Leave:
		o.Leave(ctx, p, msg)
	case protocol.Routed:
		o.Route(ctx, p, msg)
	case protocol.Unrecognized:
		log.Warn().Err(msg.Err).Str("module", "app.orch").Str("sid", p.SID).Int("size", len(msg.Raw)).Msg("malformed message ignored")
	}
}

func (o *Orchestrator) sendJSON(conn core.SignalConnection, v any) {
	frame, err := protocol.Encode(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.orch").Msg("sendJSON marshal")
		return
	}
	o.send(conn, frame)
}

// send reports whether the frame was queued.
func (o *Orchestrator) send(conn core.SignalConnection, frame core.Frame) bool {
	err := conn.TrySend(frame)
	if err == nil {
		return true
	}
	if o.Policy == nil {
		return false
	}
	switch act := o.Policy.OnBackpressure(conn, err); act {
	case app.KickMember:
		log.Warn().Err(err).Str("module", "app.orch").Str("action", act.String()).Msg("slow connection kicked")
		conn.Close()
	case app.DropFrame, app.NoAction:
	}
	return false
}

// broadcast skips the sender both by id and by handle, so a connection
// never hears its own presence events.
func (o *Orchestrator) broadcast(room domain.RoomID, except domain.ParticipantID, sender core.SignalConnection, v any) {
	frame, err := protocol.Encode(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.orch").Msg("broadcast marshal")
		return
	}
	sent := 0
	members := o.Registry.Participants(room)
	for _, m := range members {
		if m.ID == except || m.Conn == sender {
			continue
		}
		if o.send(m.Conn, frame) {
			sent++
		}
	}
	log.Debug().Str("module", "app.orch").Str("room_id", string(room)).Int("sent_to", sent).Msg("broadcast result")
}
