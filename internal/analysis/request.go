package analysis

import (
	"time"

	"github.com/wagiedev/uci-service-go/internal/protocol"
)

// FailureKind classifies an unsuccessful analysis.
type FailureKind string

const (
	// FailureNone marks a successful result.
	FailureNone FailureKind = ""
	// FailureTimeout means no bestmove arrived before the deadline and the
	// engine is still running.
	FailureTimeout FailureKind = "timeout"
	// FailureNoLegalMove means the engine answered with the no-move sentinel.
	FailureNoLegalMove FailureKind = "no_legal_move"
	// FailureProcessDeath means the engine exited or its pipe broke.
	FailureProcessDeath FailureKind = "process_death"
	// FailureProtocolError means the engine reply could not be parsed, or the
	// request could not be expressed as a single command line.
	FailureProtocolError FailureKind = "protocol_error"
	// FailureSpawn means the engine could not be (re)started.
	FailureSpawn FailureKind = "spawn_failure"
	// FailureNotReady means the engine is starting or has not been started.
	FailureNotReady FailureKind = "not_ready"
	// FailureCanceled means the caller gave up before a reply arrived.
	FailureCanceled FailureKind = "canceled"
)

// Unavailable reports whether the kind means the engine could not serve the
// request at all, as opposed to a failed search.
func (k FailureKind) Unavailable() bool {
	return k == FailureSpawn || k == FailureNotReady
}

// Request asks for the best move in a position.
//
// Position is a FEN descriptor passed to the engine verbatim. A positive
// TimeBudget takes precedence over Depth. A zero Depth means DefaultDepth.
type Request struct {
	Position   string
	Depth      int
	TimeBudget time.Duration
}

// Result is the outcome of one analysis.
type Result struct {
	// Move is the best move in UCI notation. Empty on failure.
	Move string
	// Ponder is the expected reply, when the engine reported one.
	Ponder string
	// Elapsed is the wall-clock time of the cycle.
	Elapsed time.Duration

	// Depth is the depth searched, zero for time-bounded searches.
	Depth int
	// MoveTime is the movetime sent, zero for depth-bounded searches.
	MoveTime time.Duration

	// Info is the last principal-line progress report of the search, if the
	// engine sent one.
	Info *protocol.Info

	// Failure is FailureNone on success.
	Failure FailureKind
	// Err carries the underlying cause of a failure.
	Err error
}

// Success reports whether a move was found.
func (r Result) Success() bool {
	return r.Failure == FailureNone
}

// Failed builds a failure result.
func Failed(kind FailureKind, err error, elapsed time.Duration) Result {
	return Result{Failure: kind, Err: err, Elapsed: elapsed}
}
