// Package config provides configuration types for the engine analysis service.
package config

import (
	"context"
	"log/slog"
)

// LineSource is the ordered stream of lines read from an engine's stdout.
//
// Lines are delivered in the order the engine emitted them, each exactly once.
// There is a single consumer at any time.
type LineSource interface {
	// Pop blocks until the next line is available, the stream is closed, or
	// ctx is done. A closed and empty stream returns errors.ErrOutputClosed.
	Pop(ctx context.Context) (string, error)

	// Drain discards every queued line without blocking and returns how many
	// were discarded.
	Drain() int

	// Len reports the number of queued lines.
	Len() int
}

// Process defines one engine process instance.
// Implement this to provide fake engines for testing, or alternative
// launch mechanisms (containers, remote shells).
//
// The default implementation is subprocess.Process which spawns a local
// binary and talks to it over stdin/stdout.
type Process interface {
	// Start spawns the process. The context bounds startup only; it does not
	// control the lifetime of the running process.
	Start(ctx context.Context) error

	// WriteLine writes one command line followed by a newline, unbuffered.
	WriteLine(line string) error

	// Output returns the ordered line stream fed by the output reader.
	// Each process instance owns a fresh stream.
	Output() LineSource

	// Alive reports whether the process is running. It never blocks.
	Alive() bool

	// Exited is closed once the process has exited and been reaped.
	Exited() <-chan struct{}

	// Err returns the exit error after Exited is closed.
	Err() error

	// Pid returns the OS process id, or 0 if not started.
	Pid() int

	// Close terminates the process and releases its resources.
	// It's safe to call Close multiple times.
	Close() error
}

// ProcessFactory builds an unstarted Process for the binary at path.
type ProcessFactory func(log *slog.Logger, path string, options *Options) Process
