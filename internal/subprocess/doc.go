// Package subprocess provides the process handle for a UCI engine binary.
//
// This package implements config.Process by spawning the engine as a child
// process and communicating via stdin/stdout. A single reader goroutine per
// process frames stdout into lines and pushes them onto an unbounded ordered
// LineQueue; the queue is closed when the stream ends, which is how process
// death reaches waiters.
package subprocess
