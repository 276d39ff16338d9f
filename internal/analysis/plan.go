package analysis

import (
	"time"

	"github.com/wagiedev/uci-service-go/internal/protocol"
)

const (
	// MinDepth and MaxDepth bound every depth-limited search.
	MinDepth = 5
	MaxDepth = 25
	// DefaultDepth is used when a request sets neither depth nor time budget.
	DefaultDepth = MaxDepth

	// MaxMoveTime caps the movetime sent for time-budgeted searches.
	MaxMoveTime = 25 * time.Second
	// MoveTimeGrace is added to a time budget to get the wait deadline.
	MoveTimeGrace = 8 * time.Second
	// MaxTimeBudget caps the time budget used for the wait deadline.
	MaxTimeBudget = 10 * time.Minute

	// DepthDeadlinePerPly scales the wait deadline of a depth search.
	DepthDeadlinePerPly = 1500 * time.Millisecond
	// MinDepthDeadline is the floor of the wait deadline of a depth search.
	MinDepthDeadline = 20 * time.Second
)

// Plan is the search command for a request and how long to wait for its reply.
type Plan struct {
	Command  string
	Depth    int
	MoveTime time.Duration
	Deadline time.Duration
}

// ClampDepth clamps d into [MinDepth, MaxDepth].
func ClampDepth(d int) int {
	return min(max(d, MinDepth), MaxDepth)
}

// PlanSearch derives the search command and wait deadline for req.
//
// With a time budget T the engine gets movetime min(T, MaxMoveTime) and the
// reply is awaited for min(T, MaxTimeBudget) + MoveTimeGrace. Otherwise the
// clamped depth D is searched and awaited for max(D * DepthDeadlinePerPly, MinDepthDeadline).
func PlanSearch(req Request) Plan {
	if req.TimeBudget > 0 {
		budget := min(req.TimeBudget, MaxTimeBudget)

		moveTime := min(budget.Truncate(time.Millisecond), MaxMoveTime)
		moveTime = max(moveTime, time.Millisecond)

		return Plan{
			Command:  protocol.GoMoveTime(moveTime),
			MoveTime: moveTime,
			Deadline: budget + MoveTimeGrace,
		}
	}

	depth := req.Depth
	if depth == 0 {
		depth = DefaultDepth
	}

	depth = ClampDepth(depth)

	return Plan{
		Command:  protocol.GoDepth(depth),
		Depth:    depth,
		Deadline: max(time.Duration(depth)*DepthDeadlinePerPly, MinDepthDeadline),
	}
}
