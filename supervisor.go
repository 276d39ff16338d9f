package ucisvc

import (
	"context"
	"fmt"

	"github.com/wagiedev/uci-service-go/internal/binary"
	"github.com/wagiedev/uci-service-go/internal/supervisor"
)

// New creates an unstarted Supervisor. WithEnginePath or WithProcessFactory
// must be set; use Start to locate the engine automatically.
func New(opts ...Option) *Supervisor {
	return supervisor.New(applyOptions(opts))
}

// Start locates the engine if needed, then creates and starts a Supervisor.
//
// The returned Supervisor is ready and must be closed by the caller.
func Start(ctx context.Context, opts ...Option) (*Supervisor, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	options := applyOptions(opts)

	if options.EnginePath == "" && options.ProcessFactory == nil {
		path, err := binary.NewDiscoverer(&binary.Config{Logger: options.Logger}).Discover(ctx)
		if err != nil {
			return nil, err
		}

		options.EnginePath = path
	}

	s := supervisor.New(options)
	if err := s.Start(ctx); err != nil {
		_ = s.Close()

		return nil, fmt.Errorf("start supervisor: %w", err)
	}

	return s, nil
}

// WithSupervisor manages supervisor lifecycle with automatic cleanup.
//
// It starts a Supervisor with the provided options, runs fn, and closes the
// Supervisor when fn returns. If Close fails, a warning is logged but does not
// override the callback's error.
func WithSupervisor(ctx context.Context, fn func(*Supervisor) error, opts ...Option) error {
	s, err := Start(ctx, opts...)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := s.Close(); closeErr != nil {
			log := applyOptions(opts).Logger
			if log == nil {
				log = NopLogger()
			}

			log.Warn("Failed to close supervisor", "error", closeErr)
		}
	}()

	return fn(s)
}

// Analyze runs a single analysis on a fresh engine and shuts it down.
//
// The error is non-nil only when the engine could not be started. Analysis
// failures are reported in the Result.
func Analyze(ctx context.Context, req Request, opts ...Option) (Result, error) {
	var result Result

	err := WithSupervisor(ctx, func(s *Supervisor) error {
		result = s.Analyze(ctx, req)

		return nil
	}, opts...)

	return result, err
}
