package supervisor

import (
	"context"
	"time"

	"github.com/wagiedev/uci-service-go/internal/analysis"
)

const (
	// ProbePosition is the standard starting position used by health probes.
	ProbePosition = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
	// ProbeDepth is the search depth of a health probe.
	ProbeDepth = analysis.MinDepth
)

// Status summarizes engine health.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// Health is the outcome of a probe.
type Health struct {
	Status     Status
	SampleMove string
	Failure    analysis.FailureKind
	Err        error
	Elapsed    time.Duration
}

// Probe runs a shallow analysis of the starting position through the regular
// Analyze path. It is bounded by the depth deadline of ProbeDepth plus, at
// most, one restart.
func (s *Supervisor) Probe(ctx context.Context) Health {
	result := s.Analyze(ctx, analysis.Request{Position: ProbePosition, Depth: ProbeDepth})

	health := Health{
		SampleMove: result.Move,
		Failure:    result.Failure,
		Err:        result.Err,
		Elapsed:    result.Elapsed,
	}

	switch {
	case result.Success():
		health.Status = StatusHealthy
	case result.Failure.Unavailable():
		health.Status = StatusUnhealthy
	default:
		health.Status = StatusDegraded
	}

	return health
}
