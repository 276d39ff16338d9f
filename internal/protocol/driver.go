package protocol

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/wagiedev/uci-service-go/internal/config"
	"github.com/wagiedev/uci-service-go/internal/errors"
)

// Matcher reports whether an output line is the one being waited for.
type Matcher func(line string) bool

// Contains matches lines containing token.
func Contains(token string) Matcher {
	return func(line string) bool {
		return strings.Contains(line, token)
	}
}

// HasPrefix matches lines starting with token.
func HasPrefix(token string) Matcher {
	return func(line string) bool {
		return strings.HasPrefix(line, token)
	}
}

// Driver sends commands to one engine process and waits for its replies.
//
// A Driver is bound to a single process instance. It is not safe for
// concurrent request cycles; the caller serializes access.
type Driver struct {
	log     *slog.Logger
	process config.Process
}

// NewDriver creates a driver for process.
func NewDriver(log *slog.Logger, process config.Process) *Driver {
	return &Driver{
		log:     log.With("component", "protocol"),
		process: process,
	}
}

// Process returns the process this driver writes to.
func (d *Driver) Process() config.Process {
	return d.process
}

// Send writes one command line. It does not wait for any reply.
//
// Commands containing line breaks are rejected with a ProtocolError before
// anything is written, since they would inject extra commands.
func (d *Driver) Send(command string) error {
	if strings.ContainsAny(command, "\r\n") {
		return &errors.ProtocolError{Line: command, Reason: "command contains a line break"}
	}

	return d.process.WriteLine(command)
}

// WaitFor pops output lines until one satisfies match and returns it.
//
// Lines that do not match are consumed and discarded. A timeout of zero waits
// until ctx is done. The error is errors.ErrWaitTimeout when the timeout
// elapses, errors.ErrOutputClosed when the stream ends first, or ctx.Err()
// when the caller's context is done.
func (d *Driver) WaitFor(ctx context.Context, match Matcher, timeout time.Duration) (string, error) {
	return d.WaitForEach(ctx, match, timeout, nil)
}

// WaitForEach is WaitFor with an observer that sees every skipped line in
// order. A nil observer discards them.
func (d *Driver) WaitForEach(ctx context.Context, match Matcher, timeout time.Duration, observe func(string)) (string, error) {
	waitCtx := ctx

	if timeout > 0 {
		var cancel context.CancelFunc

		waitCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	output := d.process.Output()
	skipped := 0

	for {
		line, err := output.Pop(waitCtx)
		if err != nil {
			switch {
			case ctx.Err() != nil:
				return "", ctx.Err()
			case stderrors.Is(err, context.DeadlineExceeded):
				d.log.Debug("Timed out waiting for engine output", "timeout", timeout, "skipped", skipped)

				return "", fmt.Errorf("%w after %s", errors.ErrWaitTimeout, timeout)
			default:
				return "", err
			}
		}

		if match(line) {
			return line, nil
		}

		if observe != nil {
			observe(line)
		}

		skipped++
	}
}

// Drain discards every queued output line without blocking and returns how
// many were dropped.
func (d *Driver) Drain() int {
	n := d.process.Output().Drain()
	if n > 0 {
		d.log.Debug("Drained stale engine output", "lines", n)
	}

	return n
}
