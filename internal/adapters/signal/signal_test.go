package signal_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dkeye/Relay/internal/adapters/signal"
	"github.com/dkeye/Relay/internal/app"
	"github.com/dkeye/Relay/internal/app/liveness"
	"github.com/dkeye/Relay/internal/app/orch"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	reg *app.Registry
	mon *liveness.Monitor
	url string
}

func newHarness(t *testing.T, opts signal.Options) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx, cancel := context.WithCancel(context.Background())
	reg := app.NewRegistry()
	mon := liveness.NewMonitor(time.Hour, nil)
	o := orch.NewOrchestrator(reg, app.SimplePolicy{}, nil, nil)
	ctl := signal.NewSignalWSController(o, mon, opts)

	r := gin.New()
	r.GET("/ws", func(c *gin.Context) { ctl.HandleSignal(ctx, c) })
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})

	return &harness{reg: reg, mon: mon, url: "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"}
}

func (h *harness) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial(h.url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func writeJSON(t *testing.T, ws *websocket.Conn, v any) {
	t.Helper()
	require.NoError(t, ws.WriteJSON(v))
}

func readRaw(t *testing.T, ws *websocket.Conn) []byte {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := ws.ReadMessage()
	require.NoError(t, err)
	return data
}

func readJSON(t *testing.T, ws *websocket.Conn) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(readRaw(t, ws), &m))
	return m
}

func TestSignal_CallSetup(t *testing.T) {
	h := newHarness(t, signal.Options{})
	admin := h.dial(t)
	alice := h.dial(t)
	bob := h.dial(t)

	writeJSON(t, admin, map[string]any{"type": "create-room", "roomId": "room-42"})
	created := readJSON(t, admin)
	require.Equal(t, "room-created", created["type"])
	tok := created["token"]

	writeJSON(t, alice, map[string]any{"type": "join", "roomId": "room-42", "clientId": "alice", "token": tok})
	assert.Equal(t, []any{}, readJSON(t, alice)["payload"])

	writeJSON(t, bob, map[string]any{"type": "join", "roomId": "room-42", "clientId": "bob", "token": tok})
	assert.Equal(t, []any{"alice"}, readJSON(t, bob)["payload"])
	assert.Equal(t, map[string]any{"type": "participant-joined", "roomId": "room-42", "from": "bob"}, readJSON(t, alice))

	offer := []byte(`{"type":"offer","roomId":"room-42","from":"bob","to":"alice","payload":{"sdp":"v=0"}}`)
	require.NoError(t, bob.WriteMessage(websocket.TextMessage, offer))
	assert.Equal(t, offer, readRaw(t, alice))

	require.NoError(t, alice.Close())
	assert.Equal(t, map[string]any{"type": "participant-left", "roomId": "room-42", "from": "alice"}, readJSON(t, bob))

	info, ok := h.reg.RoomInfo("room-42")
	require.True(t, ok)
	assert.Equal(t, 1, info.Participants)
}

func TestSignal_BadTokenKeepsConnectionOpen(t *testing.T) {
	h := newHarness(t, signal.Options{})
	h.reg.CreateRoom("room-42")
	ws := h.dial(t)

	writeJSON(t, ws, map[string]any{"type": "join", "roomId": "room-42", "clientId": "alice", "token": "nope"})
	assert.Equal(t, map[string]any{"type": "auth-error", "message": "invalid token"}, readJSON(t, ws))

	writeJSON(t, ws, map[string]any{"type": "create-room", "roomId": "room-7"})
	assert.Equal(t, "room-created", readJSON(t, ws)["type"])
}

func TestSignal_UnresponsiveConnectionIsReaped(t *testing.T) {
	h := newHarness(t, signal.Options{})
	tok := h.reg.CreateRoom("room-42")
	ws := h.dial(t)

	writeJSON(t, ws, map[string]any{"type": "join", "roomId": "room-42", "clientId": "alice", "token": tok})
	readJSON(t, ws)
	require.Equal(t, 1, h.mon.Len())

	// the client stops reading, so pings go unanswered
	h.mon.Sweep(context.Background())
	h.mon.Sweep(context.Background())

	require.Eventually(t, func() bool {
		_, ok := h.reg.RoomInfo("room-42")
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
	assert.False(t, h.reg.ValidateToken("room-42", tok))
}

func TestSignal_OversizedMessageClosesConnection(t *testing.T) {
	h := newHarness(t, signal.Options{ReadLimit: 64})
	ws := h.dial(t)

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(`{"type":"create-room","roomId":"`+strings.Repeat("x", 128)+`"}`)))

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := ws.ReadMessage()
	assert.Error(t, err)
}
