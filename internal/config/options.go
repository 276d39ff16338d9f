package config

import (
	"log/slog"
	"time"
)

const (
	// DefaultHandshakeTimeout bounds each handshake acknowledgement wait.
	DefaultHandshakeTimeout = 10 * time.Second

	// DefaultStopGrace bounds the wait for the trailing result after a stop
	// command is sent on timeout.
	DefaultStopGrace = 2 * time.Second
)

// EngineOption is one engine configuration option, sent during the handshake
// as a setoption command.
type EngineOption struct {
	Name  string
	Value string
}

// Options configures the engine supervisor.
type Options struct {
	// Logger is the slog logger for debug output.
	// If nil, logging is disabled (silent operation).
	Logger *slog.Logger

	// EnginePath is the absolute path to the engine executable.
	// Provisioning (discovery, permissions) happens before the supervisor starts.
	EnginePath string

	// Args are extra command-line arguments for the engine process.
	Args []string

	// Env provides additional environment variables for the engine process.
	Env map[string]string

	// Dir sets the working directory for the engine process.
	// If empty, the current working directory is used.
	Dir string

	// HandshakeTimeout bounds the wait for each handshake acknowledgement.
	// If zero, DefaultHandshakeTimeout is used.
	HandshakeTimeout time.Duration

	// EngineOptions are sent in order after the identification handshake.
	// They are best-effort: the engine does not acknowledge them.
	EngineOptions []EngineOption

	// StopOnTimeout sends a stop command when a search deadline elapses and
	// absorbs the trailing result, shortening recovery for the next request.
	StopOnTimeout bool

	// StopGrace bounds the wait for the trailing result after stop.
	// If zero, DefaultStopGrace is used.
	StopGrace time.Duration

	// Stderr is a callback function for handling engine stderr output.
	Stderr func(string)

	// ProcessFactory allows injecting a custom process implementation.
	// If nil, the default subprocess implementation is used.
	ProcessFactory ProcessFactory `json:"-"`
}

// HandshakeTimeoutOrDefault returns HandshakeTimeout, or the default if unset.
func (o *Options) HandshakeTimeoutOrDefault() time.Duration {
	if o == nil || o.HandshakeTimeout <= 0 {
		return DefaultHandshakeTimeout
	}

	return o.HandshakeTimeout
}

// StopGraceOrDefault returns StopGrace, or the default if unset.
func (o *Options) StopGraceOrDefault() time.Duration {
	if o == nil || o.StopGrace <= 0 {
		return DefaultStopGrace
	}

	return o.StopGrace
}
