package signal

import (
	"context"
	"time"

	"github.com/dkeye/Relay/internal/app/orch"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			c.Close()
			return
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				c.Close()
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				c.Close()
				return
			}
		}
	}
}

// readPump owns the connection's teardown: whatever ends the read loop
// (peer close, liveness termination, kick, shutdown) runs the same cleanup.
func (ctl *SignalWSController) readPump(ctx context.Context, peer *orch.Peer, c *WsSignalConn) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("module", "signal").Str("sid", peer.SID).Msg("readPump recovered")
		}
		log.Info().Str("module", "signal").Str("sid", peer.SID).Msg("readPump closing")
		ctl.Monitor.Untrack(c)
		ctl.Orch.Disconnect(ctx, peer)
		c.Close()
		ctl.Orch.Metrics.Connections.Add(ctx, -1)
	}()

	for {
		mt, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn().Err(err).Str("module", "signal").Str("sid", peer.SID).Msg("readPump read error")
			}
			return
		}
		if mt != websocket.TextMessage {
			log.Debug().Str("module", "signal").Str("sid", peer.SID).Msg("non-text frame ignored")
			continue
		}
		ctl.Orch.Dispatch(ctx, peer, data)
	}
}
