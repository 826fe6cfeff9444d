package signal

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/dkeye/Relay/internal/app/liveness"
	"github.com/dkeye/Relay/internal/app/orch"
	"github.com/dkeye/Relay/internal/core"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type Options struct {
	ReadLimit  int64
	WriteWait  time.Duration
	SendBuffer int
}

func (o Options) withDefaults() Options {
	if o.ReadLimit <= 0 {
		o.ReadLimit = 32768
	}
	if o.WriteWait <= 0 {
		o.WriteWait = 5 * time.Second
	}
	if o.SendBuffer <= 0 {
		o.SendBuffer = 32
	}
	return o
}

type SignalWSController struct {
	Orch    *orch.Orchestrator
	Monitor *liveness.Monitor
	opts    Options
}

func NewSignalWSController(o *orch.Orchestrator, mon *liveness.Monitor, opts Options) *SignalWSController {
	return &SignalWSController{
		Orch:    o,
		Monitor: mon,
		opts:    opts.withDefaults(),
	}
}

// WsSignalConn is both the relay's send handle and the monitor's probe.
type WsSignalConn struct {
	conn      *websocket.Conn
	send      chan core.Frame
	writeWait time.Duration

	mu     sync.RWMutex
	closed bool
}

var (
	_ core.SignalConnection = (*WsSignalConn)(nil)
	_ core.Probe            = (*WsSignalConn)(nil)
)

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

// Ping may run concurrently with the write pump; gorilla allows
// WriteControl alongside one other writer.
func (c *WsSignalConn) Ping() error {
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.writeWait))
}

func (c *WsSignalConn) Terminate() {
	c.Close()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	sid := c.GetString("client_token")
	if sid == "" {
		sid = uuid.NewString()
	}
	log.Info().Str("module", "signal").Str("sid", sid).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	conn := &WsSignalConn{
		conn:      ws,
		send:      make(chan core.Frame, ctl.opts.SendBuffer),
		writeWait: ctl.opts.WriteWait,
	}
	ws.SetReadLimit(ctl.opts.ReadLimit)
	ws.SetPongHandler(func(string) error {
		ctl.Monitor.Ack(conn)
		return nil
	})
	ctl.Monitor.Track(conn)
	ctl.Orch.Metrics.Connections.Add(ctx, 1)

	peer := orch.NewPeer(sid, conn)
	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, peer, conn)
}
