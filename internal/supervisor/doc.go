// Package supervisor owns the engine process for the lifetime of the service.
//
// The Supervisor spawns the engine, runs the UCI handshake, serializes
// analysis cycles and restarts the process once it has died. Callers see
// every outcome as an analysis.Result; process-level errors never escape
// Analyze.
//
// State machine:
//
//	uninitialized -> starting -> ready -> (process death) -> starting -> ready
//	                     |                                       |
//	                     +--------------> failed <---------------+
//
// Any state moves to closed on Close. Requests arriving while the engine is
// starting fail fast with analysis.FailureNotReady. A failed supervisor
// stays failed until Restart succeeds.
package supervisor
