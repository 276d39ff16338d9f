package ucisvc

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestBinaryNotFoundError_Creation tests BinaryNotFoundError formatting.
func TestBinaryNotFoundError_Creation(t *testing.T) {
	err := &BinaryNotFoundError{
		SearchedPaths: []string{"./stockfish", "$PATH", "/usr/bin/stockfish"},
	}

	require.Error(t, err)
	require.Contains(t, err.Error(), "engine binary not found")
	require.Contains(t, err.Error(), "$PATH")
	require.Contains(t, err.Error(), "/usr/bin/stockfish")
}

// TestSpawnError_Unwrap tests that SpawnError exposes its cause.
func TestSpawnError_Unwrap(t *testing.T) {
	err := fmt.Errorf("start supervisor: %w", &SpawnError{
		Path:  "/usr/games/stockfish",
		Stage: "uci",
		Err:   ErrWaitTimeout,
	})

	require.ErrorIs(t, err, ErrWaitTimeout)

	spawnErr, ok := stderrors.AsType[*SpawnError](err)
	require.True(t, ok)
	require.Equal(t, "/usr/games/stockfish", spawnErr.Path)
}

// TestProcessError_WithExitCodeAndStderr tests ProcessError formatting.
func TestProcessError_WithExitCodeAndStderr(t *testing.T) {
	err := &ProcessError{
		ExitCode: 139,
		Stderr:   "Segmentation fault",
	}

	require.Contains(t, err.Error(), "exit 139")
	require.Contains(t, err.Error(), "Segmentation fault")
}

// TestErrorTypes_ImplementEngineError tests the marker interface.
func TestErrorTypes_ImplementEngineError(t *testing.T) {
	errs := []EngineError{
		&BinaryNotFoundError{},
		&SpawnError{},
		&WriteError{},
		&ProcessError{},
		&ProtocolError{},
		&ConfigError{},
		&APIError{},
	}

	for _, err := range errs {
		require.True(t, err.IsEngineError(), "%T", err)
	}
}

// TestSentinelErrors tests that re-exported sentinels match errors.Is.
func TestSentinelErrors(t *testing.T) {
	sentinels := []error{
		ErrWaitTimeout,
		ErrOutputClosed,
		ErrProcessExited,
		ErrEngineNotReady,
		ErrEngineUnavailable,
		ErrSupervisorClosed,
		ErrSupervisorStarted,
	}

	for _, sentinel := range sentinels {
		wrapped := fmt.Errorf("context: %w", sentinel)
		require.ErrorIs(t, wrapped, sentinel)
	}
}
