package supervisor

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/semaphore"

	"github.com/wagiedev/uci-service-go/internal/analysis"
	"github.com/wagiedev/uci-service-go/internal/config"
	"github.com/wagiedev/uci-service-go/internal/errors"
	"github.com/wagiedev/uci-service-go/internal/protocol"
	"github.com/wagiedev/uci-service-go/internal/subprocess"
)

// spawnAttempts is how many times one start or restart tries to bring the
// engine up before the supervisor gives up.
const spawnAttempts = 2

// instance is one running engine process and everything bound to it.
type instance struct {
	process     config.Process
	coordinator *analysis.Coordinator
	identity    protocol.Identity
	startedAt   time.Time

	// retired is set when the supervisor closes the process on purpose.
	retired atomic.Bool
}

// retire closes the process without reporting its exit as a crash.
func (i *instance) retire() error {
	i.retired.Store(true)

	return i.process.Close()
}

// Supervisor owns a single engine process and serves analysis requests on it.
//
// Thread Safety: Supervisor is safe for concurrent use. Analysis cycles,
// starts and restarts are serialized by a single-slot FIFO semaphore. The
// state field uses atomic operations for lock-free reads; the current
// instance and counters are protected by mu.
type Supervisor struct {
	log     *slog.Logger
	baseLog *slog.Logger
	path    string
	options *config.Options
	factory config.ProcessFactory

	// slot admits one analysis cycle or lifecycle operation at a time.
	slot *semaphore.Weighted

	state atomic.Int32

	mu       sync.Mutex
	current  *instance
	restarts int64
	spawns   int64
	requests int64
	failures map[analysis.FailureKind]int64
}

// New creates a supervisor for the engine at options.EnginePath.
// The engine is not spawned until Start is called.
func New(options *config.Options) *Supervisor {
	if options == nil {
		options = &config.Options{}
	}

	log := options.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	factory := options.ProcessFactory
	if factory == nil {
		factory = subprocess.New
	}

	return &Supervisor{
		log:      log.With("component", "supervisor"),
		baseLog:  log,
		path:     options.EnginePath,
		options:  options,
		factory:  factory,
		slot:     semaphore.NewWeighted(1),
		failures: make(map[analysis.FailureKind]int64, 8),
	}
}

// State returns the current lifecycle state.
func (s *Supervisor) State() State {
	return State(s.state.Load())
}

// EnginePath returns the engine binary path.
func (s *Supervisor) EnginePath() string {
	return s.path
}

// setState moves to state unless the supervisor has been closed.
func (s *Supervisor) setState(state State) bool {
	for {
		cur := s.state.Load()
		if State(cur) == StateClosed {
			return false
		}

		if s.state.CompareAndSwap(cur, int32(state)) {
			return true
		}
	}
}

// Start spawns the engine and runs the handshake, retrying once.
//
// Returns errors.ErrSupervisorStarted if called twice, or the SpawnError of
// the last attempt if the engine could not be brought up.
func (s *Supervisor) Start(ctx context.Context) error {
	if err := s.slot.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.slot.Release(1)

	switch s.State() {
	case StateClosed:
		return errors.ErrSupervisorClosed
	case StateUninitialized:
	default:
		return errors.ErrSupervisorStarted
	}

	return s.launch(ctx)
}

// Restart replaces the engine process with a fresh one. It also recovers a
// failed supervisor. In-flight requests finish first.
//
// ctx bounds the wait for the slot only. Once the old process is retired the
// new one is brought up even if ctx is canceled, so a caller that gives up
// cannot leave the supervisor without an engine.
func (s *Supervisor) Restart(ctx context.Context) error {
	if err := s.slot.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.slot.Release(1)

	if s.State() == StateClosed {
		return errors.ErrSupervisorClosed
	}

	s.log.Info("Restarting engine on request")
	s.retireCurrent()

	s.mu.Lock()
	s.restarts++
	s.mu.Unlock()

	return s.launch(context.WithoutCancel(ctx))
}

// launch brings up a new instance. The caller holds the slot.
// Each handshake wait is bounded by the handshake timeout.
func (s *Supervisor) launch(ctx context.Context) error {
	if !s.setState(StateStarting) {
		return errors.ErrSupervisorClosed
	}

	var err error

	for attempt := 1; attempt <= spawnAttempts; attempt++ {
		var inst *instance

		inst, err = s.spawn(ctx)
		if err == nil {
			return s.install(inst)
		}

		s.log.Warn("Engine failed to start", "attempt", attempt, "error", err)

		if ctx.Err() != nil {
			break
		}
	}

	s.setState(StateFailed)
	s.log.Error("Engine unavailable", "path", s.path, "error", err)

	return err
}

// spawn starts one process and completes its handshake.
func (s *Supervisor) spawn(ctx context.Context) (*instance, error) {
	s.mu.Lock()
	s.spawns++
	s.mu.Unlock()

	process := s.factory(s.baseLog, s.path, s.options)

	if err := process.Start(ctx); err != nil {
		if _, ok := stderrors.AsType[*errors.SpawnError](err); ok {
			return nil, err
		}

		return nil, &errors.SpawnError{Path: s.path, Stage: "start", Err: err}
	}

	driver := protocol.NewDriver(s.baseLog, process)

	identity, err := protocol.Handshake(ctx, driver, s.options.EngineOptions, s.options.HandshakeTimeoutOrDefault())
	if err != nil {
		_ = process.Close()

		return nil, &errors.SpawnError{Path: s.path, Stage: "handshake", Err: err}
	}

	return &instance{
		process:     process,
		coordinator: analysis.NewCoordinator(s.baseLog, driver, s.options),
		identity:    identity,
		startedAt:   time.Now(),
	}, nil
}

// install makes inst the current instance and marks the supervisor ready.
func (s *Supervisor) install(inst *instance) error {
	s.mu.Lock()

	if s.State() == StateClosed {
		s.mu.Unlock()
		_ = inst.retire()

		return errors.ErrSupervisorClosed
	}

	s.current = inst
	s.mu.Unlock()

	go s.watch(inst)

	s.setState(StateReady)
	s.log.Info("Engine ready", "pid", inst.process.Pid(), "engine", inst.identity.Name)

	return nil
}

// watch reports an unexpected exit. Recovery happens lazily on the next request.
func (s *Supervisor) watch(inst *instance) {
	<-inst.process.Exited()

	if inst.retired.Load() {
		return
	}

	s.log.Warn("Engine process exited unexpectedly", "pid", inst.process.Pid(), "error", inst.process.Err())
}

func (s *Supervisor) retireCurrent() {
	s.mu.Lock()
	inst := s.current
	s.current = nil
	s.mu.Unlock()

	if inst == nil {
		return
	}

	if err := inst.retire(); err != nil {
		s.log.Warn("Failed to close engine process", "error", err)
	}
}

// Analyze runs one analysis on the engine.
//
// Requests are served one at a time in arrival order. If the engine has died
// since the previous request, it is restarted once before this request runs;
// the request that observed the death is not retried. Analyze always returns
// a Result and never an error.
func (s *Supervisor) Analyze(ctx context.Context, req analysis.Request) analysis.Result {
	start := time.Now()
	requestID := ulid.Make().String()
	ctx = analysis.WithRequestID(ctx, requestID)
	log := s.log.With("request_id", requestID)

	s.mu.Lock()
	s.requests++
	s.mu.Unlock()

	result := s.analyze(ctx, log, req)
	if result.Elapsed == 0 {
		result.Elapsed = time.Since(start)
	}

	if !result.Success() {
		s.mu.Lock()
		s.failures[result.Failure]++
		s.mu.Unlock()
	}

	return result
}

func (s *Supervisor) analyze(ctx context.Context, log *slog.Logger, req analysis.Request) analysis.Result {
	if result, ok := s.unavailable(); !ok {
		return result
	}

	if err := s.slot.Acquire(ctx, 1); err != nil {
		return analysis.Failed(analysis.FailureCanceled, err, 0)
	}
	defer s.slot.Release(1)

	// The state may have changed while queued.
	if result, ok := s.unavailable(); !ok {
		return result
	}

	s.mu.Lock()
	inst := s.current
	s.mu.Unlock()

	if inst == nil || !inst.process.Alive() {
		log.Warn("Engine process is not running, restarting")

		s.retireCurrent()

		s.mu.Lock()
		s.restarts++
		s.mu.Unlock()

		// The restart serves every later request, not just this one.
		if err := s.launch(context.WithoutCancel(ctx)); err != nil {
			if stderrors.Is(err, errors.ErrSupervisorClosed) {
				return analysis.Failed(analysis.FailureNotReady, err, 0)
			}

			return analysis.Failed(analysis.FailureSpawn, err, 0)
		}

		if err := ctx.Err(); err != nil {
			return analysis.Failed(analysis.FailureCanceled, err, 0)
		}

		s.mu.Lock()
		inst = s.current
		s.mu.Unlock()
	}

	log.Debug("Analyzing position", "fen", req.Position, "depth", req.Depth, "time_budget", req.TimeBudget)

	result := inst.coordinator.Analyze(ctx, req)
	if result.Failure == analysis.FailureProcessDeath {
		log.Warn("Engine died during analysis, it will be restarted on the next request", "error", result.Err)
	}

	return result
}

// unavailable reports a fail-fast result for states that cannot serve
// requests. ok is true when the request may proceed.
func (s *Supervisor) unavailable() (analysis.Result, bool) {
	switch s.State() {
	case StateReady:
		return analysis.Result{}, true
	case StateStarting, StateUninitialized:
		return analysis.Failed(analysis.FailureNotReady, errors.ErrEngineNotReady, 0), false
	case StateFailed:
		return analysis.Failed(analysis.FailureSpawn, errors.ErrEngineUnavailable, 0), false
	default:
		return analysis.Failed(analysis.FailureNotReady, errors.ErrSupervisorClosed, 0), false
	}
}

// Close kills the engine process. Requests in flight observe process death.
// It's safe to call Close multiple times.
func (s *Supervisor) Close() error {
	if State(s.state.Swap(int32(StateClosed))) == StateClosed {
		return nil
	}

	s.log.Info("Closing engine supervisor")

	s.mu.Lock()
	inst := s.current
	s.mu.Unlock()

	if inst == nil {
		return nil
	}

	return inst.retire()
}
