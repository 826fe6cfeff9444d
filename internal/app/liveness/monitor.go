// Package liveness reaps signaling connections that stopped answering pings.
package liveness

import (
	"context"
	"sync"
	"time"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/telemetry"
	"github.com/rs/zerolog/log"
)

const DefaultInterval = 30 * time.Second

// Monitor runs one recurring sweep over every tracked probe. The map value
// is true while a ping is outstanding.
type Monitor struct {
	interval time.Duration
	metrics  *telemetry.Metrics

	mu     sync.Mutex
	probes map[core.Probe]bool
}

func NewMonitor(interval time.Duration, m *telemetry.Metrics) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if m == nil {
		m = telemetry.Nop()
	}
	return &Monitor{
		interval: interval,
		metrics:  m,
		probes:   make(map[core.Probe]bool),
	}
}

func (m *Monitor) Track(p core.Probe) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.probes[p] = false
}

func (m *Monitor) Untrack(p core.Probe) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.probes, p)
}

// Ack marks p alive. Unknown probes are ignored.
func (m *Monitor) Ack(p core.Probe) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.probes[p]; ok {
		m.probes[p] = false
	}
}

func (m *Monitor) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.probes)
}

// Sweep terminates every probe that left the previous ping unanswered and
// pings the rest. Probes are touched outside the lock.
func (m *Monitor) Sweep(ctx context.Context) {
	var dead, alive []core.Probe

	m.mu.Lock()
	for p, awaiting := range m.probes {
		if awaiting {
			delete(m.probes, p)
			dead = append(dead, p)
			continue
		}
		m.probes[p] = true
		alive = append(alive, p)
	}
	m.mu.Unlock()

	for _, p := range dead {
		p.Terminate()
	}
	for _, p := range alive {
		if err := p.Ping(); err != nil {
			log.Debug().Err(err).Str("module", "app.liveness").Msg("ping failed")
			m.Untrack(p)
			p.Terminate()
			dead = append(dead, p)
		}
	}

	if len(dead) > 0 {
		m.metrics.Reaped.Add(ctx, int64(len(dead)))
		log.Info().Str("module", "app.liveness").Int("reaped", len(dead)).Int("tracked", m.Len()).Msg("sweep")
	}
}

// Run sweeps every interval until ctx is done.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	log.Info().Str("module", "app.liveness").Dur("interval", m.interval).Msg("liveness monitor started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "app.liveness").Msg("liveness monitor stopped")
			return nil
		case <-ticker.C:
			m.Sweep(ctx)
		}
	}
}
