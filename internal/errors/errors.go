package errors

import (
	"errors"
	"fmt"
)

// EngineError is the base interface for all service errors.
type EngineError interface {
	error
	IsEngineError() bool
}

// Compile-time verification that all error types implement EngineError.
var (
	_ EngineError = (*BinaryNotFoundError)(nil)
	_ EngineError = (*SpawnError)(nil)
	_ EngineError = (*WriteError)(nil)
	_ EngineError = (*ProcessError)(nil)
	_ EngineError = (*ProtocolError)(nil)
	_ EngineError = (*ConfigError)(nil)
	_ EngineError = (*APIError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrWaitTimeout indicates no matching engine output arrived before the deadline.
	ErrWaitTimeout = errors.New("wait timeout")

	// ErrOutputClosed indicates the engine output stream ended (the process exited).
	ErrOutputClosed = errors.New("engine output closed")

	// ErrProcessExited indicates the engine process is no longer running.
	ErrProcessExited = errors.New("engine process exited")

	// ErrEngineNotReady indicates the supervisor is starting or restarting the engine.
	ErrEngineNotReady = errors.New("engine not ready")

	// ErrEngineUnavailable indicates the engine could not be (re)started and the
	// supervisor gave up.
	ErrEngineUnavailable = errors.New("engine unavailable")

	// ErrSupervisorClosed indicates the supervisor has been closed and cannot be reused.
	ErrSupervisorClosed = errors.New("supervisor closed")

	// ErrSupervisorStarted indicates Start was called more than once.
	ErrSupervisorStarted = errors.New("supervisor already started")

	// ErrProcessNotStarted indicates an operation on a process that was never started.
	ErrProcessNotStarted = errors.New("engine process not started")

	// ErrStdinClosed indicates the engine stdin pipe has been closed.
	ErrStdinClosed = errors.New("stdin closed")
)

// BinaryNotFoundError indicates the engine binary could not be located.
type BinaryNotFoundError struct {
	SearchedPaths []string
}

func (e *BinaryNotFoundError) Error() string {
	return fmt.Sprintf("engine binary not found in: %v", e.SearchedPaths)
}

// IsEngineError implements EngineError.
func (e *BinaryNotFoundError) IsEngineError() bool { return true }

// SpawnError indicates an engine process could not be brought to the ready state.
// Stage names the step that failed: "start" or "handshake".
type SpawnError struct {
	Path  string
	Stage string
	Err   error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn engine %s (%s): %v", e.Path, e.Stage, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// IsEngineError implements EngineError.
func (e *SpawnError) IsEngineError() bool { return true }

// WriteError indicates a command could not be written to the engine stdin.
type WriteError struct {
	Command string
	Err     error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %q to engine: %v", e.Command, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// IsEngineError implements EngineError.
func (e *WriteError) IsEngineError() bool { return true }

// ProcessError indicates the engine process exited.
type ProcessError struct {
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ProcessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("engine process exited (exit %d): %v", e.ExitCode, e.Err)
	}

	return fmt.Sprintf("engine process exited (exit %d): %s", e.ExitCode, e.Stderr)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// IsEngineError implements EngineError.
func (e *ProcessError) IsEngineError() bool { return true }

// ProtocolError indicates the engine produced a line that violates the protocol,
// or a command could not be framed as a single protocol line.
type ProtocolError struct {
	Line   string
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error: %s: %q", e.Reason, e.Line)
}

// IsEngineError implements EngineError.
func (e *ProtocolError) IsEngineError() bool { return true }

// ConfigError indicates the service configuration could not be loaded.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("load config %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// IsEngineError implements EngineError.
func (e *ConfigError) IsEngineError() bool { return true }

// APIError is a non-success HTTP status returned by the analysis service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("analysis service returned HTTP %d", e.StatusCode)
	}

	return fmt.Sprintf("analysis service returned HTTP %d: %s", e.StatusCode, e.Message)
}

// IsEngineError implements EngineError.
func (e *APIError) IsEngineError() bool { return true }
