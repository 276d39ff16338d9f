package supervisor

import (
	"maps"
	"time"

	"github.com/wagiedev/uci-service-go/internal/analysis"
)

// Stats is a snapshot of supervisor counters.
type Stats struct {
	State      State     `json:"state"`
	EnginePath string    `json:"engine_path"`
	EngineName string    `json:"engine_name,omitempty"`
	Pid        int       `json:"pid,omitempty"`
	Alive      bool      `json:"alive"`
	StartedAt  time.Time `json:"started_at,omitzero"`

	// Restarts counts replacements of the engine process after the first start.
	Restarts int64 `json:"restarts"`
	// Spawns counts every attempt to launch a process, retries included.
	Spawns   int64                          `json:"spawns"`
	Requests int64                          `json:"requests"`
	Failures map[analysis.FailureKind]int64 `json:"failures"`
}

// Stats returns current supervisor statistics.
func (s *Supervisor) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Stats{
		State:      s.State(),
		EnginePath: s.path,
		Restarts:   s.restarts,
		Spawns:     s.spawns,
		Requests:   s.requests,
		Failures:   maps.Clone(s.failures),
	}

	if inst := s.current; inst != nil {
		stats.EngineName = inst.identity.Name
		stats.Pid = inst.process.Pid()
		stats.Alive = inst.process.Alive()
		stats.StartedAt = inst.startedAt
	}

	return stats
}
