package ucisvc

import "github.com/wagiedev/uci-service-go/internal/errors"

// Re-export error types from internal package

// EngineError is the base interface for all service errors.
type EngineError = errors.EngineError

// BinaryNotFoundError indicates the engine binary could not be located.
type BinaryNotFoundError = errors.BinaryNotFoundError

// SpawnError indicates the engine could not be started or failed its handshake.
type SpawnError = errors.SpawnError

// WriteError indicates a command could not be written to the engine.
type WriteError = errors.WriteError

// ProcessError indicates the engine process exited.
type ProcessError = errors.ProcessError

// ProtocolError indicates a malformed engine reply or command.
type ProtocolError = errors.ProtocolError

// ConfigError indicates the service configuration could not be loaded.
type ConfigError = errors.ConfigError

// APIError is a non-success HTTP status from the analysis service.
type APIError = errors.APIError

// Re-export sentinel errors from internal package.
var (
	// ErrWaitTimeout indicates no matching engine output arrived in time.
	ErrWaitTimeout = errors.ErrWaitTimeout

	// ErrOutputClosed indicates the engine output stream ended.
	ErrOutputClosed = errors.ErrOutputClosed

	// ErrProcessExited indicates the engine process is no longer running.
	ErrProcessExited = errors.ErrProcessExited

	// ErrEngineNotReady indicates the engine is starting or restarting.
	ErrEngineNotReady = errors.ErrEngineNotReady

	// ErrEngineUnavailable indicates the supervisor gave up starting the engine.
	ErrEngineUnavailable = errors.ErrEngineUnavailable

	// ErrSupervisorClosed indicates the supervisor has been closed.
	ErrSupervisorClosed = errors.ErrSupervisorClosed

	// ErrSupervisorStarted indicates Start was called twice.
	ErrSupervisorStarted = errors.ErrSupervisorStarted
)
