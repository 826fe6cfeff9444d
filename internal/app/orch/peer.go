package orch

import (
	"sync"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
)

// Peer is one signaling connection as the orchestrator sees it: the
// transport handle plus the (room, client) pair it is currently joined as.
type Peer struct {
	SID  string
	Conn core.SignalConnection

	mu     sync.Mutex
	room   domain.RoomID
	client domain.ParticipantID
	joined bool
}

func NewPeer(sid string, conn core.SignalConnection) *Peer {
	return &Peer{SID: sid, Conn: conn}
}

func (p *Peer) Binding() (domain.RoomID, domain.ParticipantID, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.room, p.client, p.joined
}

func (p *Peer) bind(room domain.RoomID, client domain.ParticipantID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.room, p.client, p.joined = room, client, true
}

func (p *Peer) unbindIf(room domain.RoomID, client domain.ParticipantID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.joined && p.room == room && p.client == client {
		p.room, p.client, p.joined = "", "", false
	}
}
