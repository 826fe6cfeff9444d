package telemetry

import (
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const instrumentationName = "github.com/dkeye/Relay"

// Metrics holds the relay's instruments.
type Metrics struct {
	RoomsCreated metric.Int64Counter
	Joins        metric.Int64Counter
	AuthFailures metric.Int64Counter
	Relayed      metric.Int64Counter
	RouteMisses  metric.Int64Counter
	Leaves       metric.Int64Counter
	Reaped       metric.Int64Counter
	Connections  metric.Int64UpDownCounter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var (
		m    Metrics
		err  error
		errs []error
	)
	counter := func(name, desc string) metric.Int64Counter {
		c, e := meter.Int64Counter(name, metric.WithDescription(desc))
		errs = append(errs, e)
		return c
	}

	m.RoomsCreated = counter("relay.rooms.created", "Room tokens issued")
	m.Joins = counter("relay.joins", "Successful joins")
	m.AuthFailures = counter("relay.auth.failures", "Rejected join attempts")
	m.Relayed = counter("relay.messages.relayed", "Messages forwarded to a participant")
	m.RouteMisses = counter("relay.messages.dropped", "Routable messages with no live target")
	m.Leaves = counter("relay.leaves", "Participants removed by leave, close or reaping")
	m.Reaped = counter("relay.liveness.reaped", "Connections terminated by the liveness monitor")
	m.Connections, err = meter.Int64UpDownCounter("relay.connections", metric.WithDescription("Open signaling connections"))
	errs = append(errs, err)

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &m, nil
}

// Global builds Metrics from the global meter provider.
func Global() (*Metrics, error) {
	return NewMetrics(otel.Meter(instrumentationName))
}

// Nop returns instruments that record nothing.
func Nop() *Metrics {
	m, _ := NewMetrics(noop.NewMeterProvider().Meter(instrumentationName))
	return m
}
