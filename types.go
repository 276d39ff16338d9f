package ucisvc

import (
	"github.com/wagiedev/uci-service-go/internal/analysis"
	"github.com/wagiedev/uci-service-go/internal/config"
	"github.com/wagiedev/uci-service-go/internal/protocol"
	"github.com/wagiedev/uci-service-go/internal/supervisor"
)

// Version is the module version reported by the service.
const Version = "0.1.0"

// Options configures a Supervisor. Build it with the With* options.
type Options = config.Options

// EngineOption is one setoption name/value pair sent during the handshake.
type EngineOption = config.EngineOption

// Process is a running engine process. Implement it, together with a
// ProcessFactory, to run engines somewhere other than a local subprocess.
type Process = config.Process

// ProcessFactory creates unstarted engine processes.
type ProcessFactory = config.ProcessFactory

// LineSource is the ordered output stream of a Process.
type LineSource = config.LineSource

// Request describes one analysis.
type Request = analysis.Request

// Result is the outcome of one analysis.
type Result = analysis.Result

// SearchInfo is the engine's last progress report for a search.
type SearchInfo = protocol.Info

// Score is a search evaluation from the side to move.
type Score = protocol.Score

// FailureKind classifies a failed analysis.
type FailureKind = analysis.FailureKind

// Failure kinds.
const (
	FailureNone          = analysis.FailureNone
	FailureTimeout       = analysis.FailureTimeout
	FailureNoLegalMove   = analysis.FailureNoLegalMove
	FailureProcessDeath  = analysis.FailureProcessDeath
	FailureProtocolError = analysis.FailureProtocolError
	FailureSpawn         = analysis.FailureSpawn
	FailureNotReady      = analysis.FailureNotReady
	FailureCanceled      = analysis.FailureCanceled
)

// Search limits.
const (
	MinDepth     = analysis.MinDepth
	MaxDepth     = analysis.MaxDepth
	DefaultDepth = analysis.DefaultDepth
	MaxMoveTime  = analysis.MaxMoveTime
)

// Supervisor owns one engine process and serializes analyses on it.
type Supervisor = supervisor.Supervisor

// State is the lifecycle state of a Supervisor.
type State = supervisor.State

// Supervisor states.
const (
	StateUninitialized = supervisor.StateUninitialized
	StateStarting      = supervisor.StateStarting
	StateReady         = supervisor.StateReady
	StateFailed        = supervisor.StateFailed
	StateClosed        = supervisor.StateClosed
)

// Health is the outcome of a health probe.
type Health = supervisor.Health

// HealthStatus summarizes a health probe.
type HealthStatus = supervisor.Status

// Health statuses.
const (
	StatusHealthy   = supervisor.StatusHealthy
	StatusDegraded  = supervisor.StatusDegraded
	StatusUnhealthy = supervisor.StatusUnhealthy
)

// Stats is a snapshot of supervisor counters.
type Stats = supervisor.Stats

// StartPosition is the standard chess starting position in FEN.
const StartPosition = supervisor.ProbePosition
