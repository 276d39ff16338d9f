package supervisor

// State is the lifecycle state of a Supervisor.
type State int32

const (
	// StateUninitialized means Start has not been called.
	StateUninitialized State = iota
	// StateStarting means the engine is being spawned or is in its handshake.
	StateStarting
	// StateReady means the engine completed its handshake and accepts requests.
	StateReady
	// StateFailed means a start or restart failed after its retry.
	StateFailed
	// StateClosed means the supervisor was explicitly closed.
	StateClosed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateStarting:
		return "starting"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
