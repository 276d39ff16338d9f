package ucisvc

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/wagiedev/uci-service-go/internal/config"
)

// Option configures Options using the functional options pattern.
type Option func(*Options)

// applyOptions applies functional options to a fresh Options struct.
func applyOptions(opts []Option) *Options {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// ===== Basic Configuration =====

// WithLogger sets the logger for debug output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithEnginePath sets the engine executable. If not set, it is searched for.
func WithEnginePath(path string) Option {
	return func(o *Options) {
		o.EnginePath = path
	}
}

// WithEngineArgs sets extra command-line arguments for the engine.
func WithEngineArgs(args ...string) Option {
	return func(o *Options) {
		o.Args = args
	}
}

// WithEnv adds environment variables for the engine process.
func WithEnv(env map[string]string) Option {
	return func(o *Options) {
		if o.Env == nil {
			o.Env = make(map[string]string, len(env))
		}

		for k, v := range env {
			o.Env[k] = v
		}
	}
}

// WithDir sets the working directory of the engine process.
func WithDir(dir string) Option {
	return func(o *Options) {
		o.Dir = dir
	}
}

// ===== Handshake =====

// WithHandshakeTimeout bounds the wait for each handshake acknowledgement.
func WithHandshakeTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.HandshakeTimeout = timeout
	}
}

// WithEngineOption appends a setoption command to the handshake.
// Options are sent in the order given.
func WithEngineOption(name, value string) Option {
	return func(o *Options) {
		o.EngineOptions = append(o.EngineOptions, config.EngineOption{Name: name, Value: value})
	}
}

// WithThreads sets the engine's Threads option.
func WithThreads(threads int) Option {
	return WithEngineOption("Threads", strconv.Itoa(threads))
}

// WithHash sets the engine's Hash option, in megabytes.
func WithHash(megabytes int) Option {
	return WithEngineOption("Hash", strconv.Itoa(megabytes))
}

// ===== Search =====

// WithStopOnTimeout sends stop when a search overruns its deadline and
// absorbs the late reply, so the next request finds an idle engine.
func WithStopOnTimeout(enabled bool) Option {
	return func(o *Options) {
		o.StopOnTimeout = enabled
	}
}

// WithStopGrace bounds the wait for the late reply after stop.
func WithStopGrace(grace time.Duration) Option {
	return func(o *Options) {
		o.StopGrace = grace
	}
}

// ===== Process =====

// WithStderr sets a callback that receives each engine stderr line.
func WithStderr(handler func(string)) Option {
	return func(o *Options) {
		o.Stderr = handler
	}
}

// WithProcessFactory replaces the subprocess implementation.
// When set and no engine path is given, engine discovery is skipped.
func WithProcessFactory(factory ProcessFactory) Option {
	return func(o *Options) {
		o.ProcessFactory = factory
	}
}
