package app

import (
	"crypto/subtle"
	"sync"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/rs/zerolog/log"
)

// Registry is an in-memory core.RoomRegistry guarded by one lock.
// A room's token and its participant set are always deleted together.
type Registry struct {
	mu      sync.RWMutex
	tokens  map[domain.RoomID]domain.Token
	members map[domain.RoomID]map[domain.ParticipantID]core.SignalConnection
	newTok  func() domain.Token
}

func NewRegistry() *Registry {
	return &Registry{
		tokens:  make(map[domain.RoomID]domain.Token),
		members: make(map[domain.RoomID]map[domain.ParticipantID]core.SignalConnection),
		newTok:  domain.NewToken,
	}
}

var _ core.RoomRegistry = (*Registry)(nil)

func (r *Registry) CreateRoom(room domain.RoomID) domain.Token {
	tok := r.newTok()
	r.mu.Lock()
	_, rotated := r.tokens[room]
	r.tokens[room] = tok
	r.mu.Unlock()
	log.Info().Str("module", "app.registry").Str("room_id", string(room)).Bool("rotated", rotated).Msg("room token issued")
	return tok
}

func (r *Registry) ValidateToken(room domain.RoomID, token domain.Token) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return tokenMatches(r.tokens, room, token)
}

func tokenMatches(tokens map[domain.RoomID]domain.Token, room domain.RoomID, token domain.Token) bool {
	want, ok := tokens[room]
	if !ok || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(want), []byte(token)) == 1
}

func (r *Registry) AddParticipant(room domain.RoomID, id domain.ParticipantID, conn core.SignalConnection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.addLocked(room, id, conn)
}

func (r *Registry) JoinIfValid(room domain.RoomID, id domain.ParticipantID, token domain.Token, conn core.SignalConnection) ([]domain.ParticipantID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !tokenMatches(r.tokens, room, token) {
		return nil, false
	}
	r.addLocked(room, id, conn)

	set := r.members[room]
	others := make([]domain.ParticipantID, 0, len(set)-1)
	for other := range set {
		if other != id {
			others = append(others, other)
		}
	}
	return others, true
}

func (r *Registry) addLocked(room domain.RoomID, id domain.ParticipantID, conn core.SignalConnection) {
	set, ok := r.members[room]
	if !ok {
		set = make(map[domain.ParticipantID]core.SignalConnection)
		r.members[room] = set
	}
	if _, dup := set[id]; dup {
		log.Warn().Str("module", "app.registry").Str("room_id", string(room)).Str("client_id", string(id)).Msg("participant id reused, replacing connection")
	}
	set[id] = conn
	log.Info().Str("module", "app.registry").Str("room_id", string(room)).Str("client_id", string(id)).Int("count", len(set)).Msg("participant added")
}

func (r *Registry) RemoveParticipant(room domain.RoomID, id domain.ParticipantID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeLocked(room, id, nil)
}

// RemoveConnection removes id only while it is still bound to conn.
func (r *Registry) RemoveConnection(room domain.RoomID, id domain.ParticipantID, conn core.SignalConnection) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeLocked(room, id, conn)
}

func (r *Registry) removeLocked(room domain.RoomID, id domain.ParticipantID, conn core.SignalConnection) bool {
	set, ok := r.members[room]
	if !ok {
		return false
	}
	cur, ok := set[id]
	if !ok || (conn != nil && cur != conn) {
		return false
	}
	delete(set, id)
	log.Info().Str("module", "app.registry").Str("room_id", string(room)).Str("client_id", string(id)).Int("count", len(set)).Msg("participant removed")

	if len(set) == 0 {
		delete(r.members, room)
		delete(r.tokens, room)
		log.Info().Str("module", "app.registry").Str("room_id", string(room)).Msg("room emptied, token revoked")
	}
	return true
}

func (r *Registry) ListOtherParticipants(room domain.RoomID, excluding domain.ParticipantID) []domain.ParticipantID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.members[room]
	out := make([]domain.ParticipantID, 0, len(set))
	for id := range set {
		if id != excluding {
			out = append(out, id)
		}
	}
	return out
}

func (r *Registry) GetConnection(room domain.RoomID, id domain.ParticipantID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.members[room][id]
	return conn, ok
}

func (r *Registry) Participants(room domain.RoomID) []core.Member {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.members[room]
	out := make([]core.Member, 0, len(set))
	for id, conn := range set {
		out = append(out, core.Member{ID: id, Conn: conn})
	}
	return out
}

// RoomInfo reports rooms that have a token or at least one participant.
func (r *Registry) RoomInfo(room domain.RoomID) (domain.RoomInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, hasTok := r.tokens[room]
	set, hasMembers := r.members[room]
	if !hasTok && !hasMembers {
		return domain.RoomInfo{}, false
	}
	return domain.RoomInfo{ID: room, Participants: len(set)}, true
}

func (r *Registry) List() []domain.RoomInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.RoomInfo, 0, len(r.tokens))
	for room := range r.tokens {
		out = append(out, domain.RoomInfo{ID: room, Participants: len(r.members[room])})
	}
	for room, set := range r.members {
		if _, ok := r.tokens[room]; !ok {
			out = append(out, domain.RoomInfo{ID: room, Participants: len(set)})
		}
	}
	return out
}
