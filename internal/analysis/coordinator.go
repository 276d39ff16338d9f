package analysis

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/wagiedev/uci-service-go/internal/config"
	"github.com/wagiedev/uci-service-go/internal/errors"
	"github.com/wagiedev/uci-service-go/internal/protocol"
)

// Coordinator runs analysis cycles against one engine process.
//
// The caller must serialize calls to Analyze: UCI replies carry no request id,
// so two overlapping cycles would read each other's output.
type Coordinator struct {
	log     *slog.Logger
	driver  *protocol.Driver
	options *config.Options

	// plan derives the search; tests override it to shorten deadlines.
	plan func(Request) Plan
}

// NewCoordinator creates a coordinator that drives the engine through driver.
func NewCoordinator(log *slog.Logger, driver *protocol.Driver, options *config.Options) *Coordinator {
	if options == nil {
		options = &config.Options{}
	}

	return &Coordinator{
		log:     log.With("component", "analysis"),
		driver:  driver,
		options: options,
		plan:    PlanSearch,
	}
}

// Analyze runs one search cycle and returns its result.
//
// A dead process yields FailureProcessDeath without touching the pipes;
// restarting it is the caller's job.
func (c *Coordinator) Analyze(ctx context.Context, req Request) Result {
	start := time.Now()
	log := c.log

	if id, ok := RequestIDFromContext(ctx); ok {
		log = log.With("request_id", id)
	}

	fail := func(kind FailureKind, err error) Result {
		log.Warn("Analysis failed", "failure", kind, "error", err)

		return Failed(kind, err, time.Since(start))
	}

	process := c.driver.Process()
	if !process.Alive() {
		return fail(FailureProcessDeath, deathCause(process))
	}

	if n := c.driver.Drain(); n > 0 {
		log.Debug("Discarded output from a previous cycle", "lines", n)
	}

	if err := c.driver.Send(protocol.Position(req.Position)); err != nil {
		return fail(sendFailure(err), err)
	}

	plan := c.plan(req)

	log.Debug("Starting search", "command", plan.Command, "deadline", plan.Deadline)

	if err := c.driver.Send(plan.Command); err != nil {
		return fail(sendFailure(err), err)
	}

	var last *protocol.Info

	line, err := c.driver.WaitForEach(ctx, protocol.HasPrefix(protocol.TokenBestMove), plan.Deadline, func(line string) {
		if info, ok := protocol.ParseInfo(line); ok && info.Primary() {
			last = &info
		}
	})
	if err != nil {
		switch {
		case stderrors.Is(err, errors.ErrOutputClosed):
			return fail(FailureProcessDeath, deathCause(process))
		case !process.Alive():
			return fail(FailureProcessDeath, deathCause(process))
		case stderrors.Is(err, errors.ErrWaitTimeout):
			c.abandonSearch(ctx, log)

			return fail(FailureTimeout, err)
		default:
			c.abandonSearch(ctx, log)

			return fail(FailureCanceled, err)
		}
	}

	best, err := protocol.ParseBestMove(line)
	if err != nil {
		return fail(FailureProtocolError, err)
	}

	result := Result{
		Elapsed:  time.Since(start),
		Depth:    plan.Depth,
		MoveTime: plan.MoveTime,
		Info:     last,
	}

	if best.NoMove() {
		result.Failure = FailureNoLegalMove
		log.Info("Engine reported no legal move", "elapsed", result.Elapsed)

		return result
	}

	result.Move = best.Move
	result.Ponder = best.Ponder

	log.Debug("Search complete", "move", result.Move, "elapsed", result.Elapsed)

	return result
}

// abandonSearch stops a search the caller no longer waits for, when enabled.
// The trailing bestmove is consumed here so it cannot reach the next cycle.
// Without it the reply arrives later and is dropped by the next Drain.
func (c *Coordinator) abandonSearch(ctx context.Context, log *slog.Logger) {
	if !c.options.StopOnTimeout {
		return
	}

	if err := c.driver.Send(protocol.CmdStop); err != nil {
		log.Debug("Failed to send stop", "error", err)

		return
	}

	grace := c.options.StopGraceOrDefault()

	if _, err := c.driver.WaitFor(context.WithoutCancel(ctx), protocol.HasPrefix(protocol.TokenBestMove), grace); err != nil {
		log.Warn("Engine did not acknowledge stop", "grace", grace, "error", err)
	}
}

// sendFailure classifies a failed write. Malformed input is refused before
// any byte reaches the pipe; anything else means the pipe is gone.
func sendFailure(err error) FailureKind {
	if _, ok := stderrors.AsType[*errors.ProtocolError](err); ok {
		return FailureProtocolError
	}

	return FailureProcessDeath
}

func deathCause(process config.Process) error {
	if err := process.Err(); err != nil {
		return err
	}

	return errors.ErrProcessExited
}
