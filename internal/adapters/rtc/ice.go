// Package rtc hands clients the ICE configuration for their peer
// connections. The relay itself never opens one.
package rtc

import (
	"github.com/dkeye/Relay/internal/config"
	"github.com/pion/webrtc/v4"
)

func DefaultICEServers() []webrtc.ICEServer {
	return []webrtc.ICEServer{
		{
			URLs: []string{"stun:stun.l.google.com:19302"},
		},
	}
}

// ICEServers converts configured servers, skipping entries without URLs.
// An empty result falls back to DefaultICEServers.
func ICEServers(entries []config.ICEServer) []webrtc.ICEServer {
	servers := make([]webrtc.ICEServer, 0, len(entries))
	for _, e := range entries {
		if len(e.URLs) == 0 {
			continue
		}
		s := webrtc.ICEServer{URLs: e.URLs}
		if e.Username != "" {
			s.Username = e.Username
			s.Credential = e.Credential
		}
		servers = append(servers, s)
	}
	if len(servers) == 0 {
		return DefaultICEServers()
	}
	return servers
}
