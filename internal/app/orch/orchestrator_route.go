package orch

import (
	"context"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/protocol"
	"github.com/rs/zerolog/log"
)

// Route forwards msg.Raw byte-for-byte to (roomId, to). Misses are dropped
// without telling the sender.
func (o *Orchestrator) Route(ctx context.Context, p *Peer, msg protocol.Routed) {
	logger := log.With().Str("module", "app.orch").Str("sid", p.SID).Str("type", string(msg.Type)).Str("room_id", string(msg.RoomID)).Str("to", string(msg.To)).Logger()

	if room, _, ok := p.Binding(); !ok || room != msg.RoomID {
		logger.Debug().Msg("sender not joined to room, dropped")
		o.Metrics.RouteMisses.Add(ctx, 1)
		return
	}
	if msg.To == "" {
		logger.Debug().Msg("no recipient, dropped")
		o.Metrics.RouteMisses.Add(ctx, 1)
		return
	}
	conn, ok := o.Registry.GetConnection(msg.RoomID, msg.To)
	if !ok {
		logger.Debug().Msg("recipient not present, dropped")
		o.Metrics.RouteMisses.Add(ctx, 1)
		return
	}
	if !o.send(conn, core.Frame(msg.Raw)) {
		logger.Debug().Msg("recipient unavailable, dropped")
		o.Metrics.RouteMisses.Add(ctx, 1)
		return
	}
	o.Metrics.Relayed.Add(ctx, 1)
}
