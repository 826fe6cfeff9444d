package app

import (
	"errors"

	"github.com/dkeye/Relay/internal/core"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropFrame
	KickMember
)

func (a BackpressureAction) String() string {
	switch a {
	case DropFrame:
		return "drop_frame"
	case KickMember:
		return "kick_member"
	default:
		return "no_action"
	}
}

// Policy decides what happens to a connection whose send buffer is full.
type Policy interface {
	OnBackpressure(conn core.SignalConnection, err error) BackpressureAction
}

// SimplePolicy kicks slow consumers so that a live peer never sees a gap
// in an otherwise ordered stream.
type SimplePolicy struct{}

func (SimplePolicy) OnBackpressure(_ core.SignalConnection, err error) BackpressureAction {
	if errors.Is(err, core.ErrConnClosed) {
		return NoAction
	}
	return KickMember
}
