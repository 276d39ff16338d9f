package api

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wagiedev/uci-service-go/internal/analysis"
	"github.com/wagiedev/uci-service-go/internal/protocol"
	"github.com/wagiedev/uci-service-go/internal/supervisor"
)

func TestNewBestMoveResponse(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		resp := NewBestMoveResponse("fen", analysis.Result{
			Move:    "e2e4",
			Ponder:  "e7e5",
			Depth:   12,
			Elapsed: 1234 * time.Millisecond,
		})

		require.True(t, resp.Success)
		require.Equal(t, "e2e4", resp.BestMove)
		require.Equal(t, "e7e5", resp.Ponder)
		require.Equal(t, 12, resp.Depth)
		require.InDelta(t, 1.23, resp.AnalysisTime, 1e-9)
		require.Empty(t, resp.Failure)
	})

	t.Run("failure", func(t *testing.T) {
		resp := NewBestMoveResponse("fen", analysis.Failed(analysis.FailureTimeout, errors.New("wait timeout"), 20*time.Second))

		require.False(t, resp.Success)
		require.Equal(t, "timeout", resp.Failure)
		require.Equal(t, "Analysis timed out", resp.Error)
		require.Empty(t, resp.BestMove)
		require.InDelta(t, 20.0, resp.AnalysisTime, 1e-9)
	})

	t.Run("search info", func(t *testing.T) {
		resp := NewBestMoveResponse("fen", analysis.Result{
			Move: "d1d8",
			Info: &protocol.Info{Depth: 3, Score: &protocol.Score{Mate: true, MateIn: 1}, Nodes: 77, PV: []string{"d1d8"}},
		})

		require.Nil(t, resp.ScoreCP)
		require.NotNil(t, resp.Mate)
		require.Equal(t, 1, *resp.Mate)
		require.Equal(t, []string{"d1d8"}, resp.PV)
		require.Equal(t, int64(77), resp.Nodes)

		resp = NewBestMoveResponse("fen", analysis.Result{
			Move: "e2e4",
			Info: &protocol.Info{Depth: 10, Score: &protocol.Score{Centipawns: -12}},
		})

		require.Nil(t, resp.Mate)
		require.NotNil(t, resp.ScoreCP)
		require.Equal(t, -12, *resp.ScoreCP)
	})

	t.Run("time budget", func(t *testing.T) {
		resp := NewBestMoveResponse("fen", analysis.Result{Move: "d2d4", MoveTime: 3 * time.Second})
		require.Equal(t, int64(3000), resp.MoveTimeMS)
		require.Zero(t, resp.Depth)
	})
}

func TestBestMoveResponse_JSON(t *testing.T) {
	data, err := json.Marshal(BestMoveResponse{Success: false, Error: "Engine not ready", Failure: "not_ready"})
	require.NoError(t, err)
	require.JSONEq(t, `{"success":false,"analysis_time":0,"error":"Engine not ready","failure":"not_ready"}`, string(data))
}

func TestAnalyzeRequest(t *testing.T) {
	req := AnalyzeRequest{FEN: "fen", Depth: 10, TimeLimit: 1.5}.Request()
	require.Equal(t, "fen", req.Position)
	require.Equal(t, 10, req.Depth)
	require.Equal(t, 1500*time.Millisecond, req.TimeBudget)

	var decoded AnalyzeRequest
	require.NoError(t, json.Unmarshal([]byte(`{"id":"7","fen":"x","time_limit":2}`), &decoded))
	require.Equal(t, "7", decoded.ID)
	require.Equal(t, 2*time.Second, decoded.Request().TimeBudget)
}

func TestSeconds(t *testing.T) {
	require.Zero(t, Seconds(0))
	require.Zero(t, Seconds(-4))
	require.Equal(t, 250*time.Millisecond, Seconds(0.25))
	require.Zero(t, Seconds(math.NaN()))
	require.Equal(t, analysis.MaxTimeBudget, Seconds(1e10))
	require.Equal(t, analysis.MaxTimeBudget, Seconds(math.Inf(1)))
}

func TestNewHealthResponse(t *testing.T) {
	tests := []struct {
		name    string
		health  supervisor.Health
		status  string
		message string
	}{
		{
			name:    "healthy",
			health:  supervisor.Health{Status: supervisor.StatusHealthy, SampleMove: "e2e4"},
			status:  "healthy",
			message: "Engine working",
		},
		{
			name:    "degraded",
			health:  supervisor.Health{Status: supervisor.StatusDegraded, Failure: analysis.FailureTimeout},
			status:  "degraded",
			message: "Engine responding slowly or incorrectly: Analysis timed out",
		},
		{
			name:    "unhealthy",
			health:  supervisor.Health{Status: supervisor.StatusUnhealthy, Failure: analysis.FailureSpawn},
			status:  "unhealthy",
			message: "Engine test failed: Engine unavailable",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := NewHealthResponse(tc.health, "/usr/bin/stockfish")
			require.Equal(t, tc.status, resp.Status)
			require.Equal(t, tc.message, resp.Message)
			require.Equal(t, "/usr/bin/stockfish", resp.EnginePath)
			require.Equal(t, tc.health.SampleMove, resp.TestMove)
		})
	}
}
