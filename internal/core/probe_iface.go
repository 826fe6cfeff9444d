package core

//go:generate mockgen -source=probe_iface.go -destination=mocks/probe_mock.go -package=mocks

// Probe is what the liveness monitor sees of a connection.
type Probe interface {
	// Ping sends a transport-level liveness probe.
	Ping() error
	// Terminate forcibly closes the underlying transport.
	Terminate()
}
