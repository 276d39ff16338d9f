package api

import (
	"math"
	"time"

	"github.com/wagiedev/uci-service-go/internal/analysis"
	"github.com/wagiedev/uci-service-go/internal/supervisor"
)

// BestMoveResponse is the body of GET /get_best_move and of the best_move tool.
type BestMoveResponse struct {
	Success  bool   `json:"success"`
	BestMove string `json:"best_move,omitempty"`
	Ponder   string `json:"ponder,omitempty"`
	FEN      string `json:"fen,omitempty"`
	Depth    int    `json:"depth,omitempty"`
	// MoveTimeMS is set for time-budgeted searches.
	MoveTimeMS int64 `json:"movetime_ms,omitempty"`
	// AnalysisTime is in seconds, rounded to two decimals.
	AnalysisTime float64 `json:"analysis_time"`
	Engine       string  `json:"engine,omitempty"`

	// Search details from the engine's last progress report. ScoreCP and
	// Mate are from the side to move; at most one is set.
	ScoreCP *int     `json:"score_cp,omitempty"`
	Mate    *int     `json:"mate,omitempty"`
	PV      []string `json:"pv,omitempty"`
	Nodes   int64    `json:"nodes,omitempty"`

	Error   string `json:"error,omitempty"`
	Failure string `json:"failure,omitempty"`
}

// HealthResponse is the body of GET /health and of the engine_health tool.
type HealthResponse struct {
	Status     string `json:"status"`
	TestMove   string `json:"test_move,omitempty"`
	Message    string `json:"message"`
	EnginePath string `json:"engine_path,omitempty"`
	Failure    string `json:"failure,omitempty"`
}

// AnalyzeRequest is the websocket analysis request.
type AnalyzeRequest struct {
	// ID is echoed back in the response.
	ID    string `json:"id,omitempty"`
	FEN   string `json:"fen"`
	Depth int    `json:"depth,omitempty"`
	// TimeLimit is in seconds.
	TimeLimit float64 `json:"time_limit,omitempty"`
}

// AnalyzeResponse is the websocket analysis response.
type AnalyzeResponse struct {
	ID string `json:"id,omitempty"`
	BestMoveResponse
}

// ErrorResponse is returned for malformed requests.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Request converts the websocket request to an analysis request.
func (r AnalyzeRequest) Request() analysis.Request {
	return analysis.Request{
		Position:   r.FEN,
		Depth:      r.Depth,
		TimeBudget: Seconds(r.TimeLimit),
	}
}

// Seconds converts a client-supplied number of seconds to a duration.
// Non-positive values and NaN yield zero; large values are capped at
// analysis.MaxTimeBudget.
func Seconds(s float64) time.Duration {
	if s <= 0 || math.IsNaN(s) {
		return 0
	}

	if s >= analysis.MaxTimeBudget.Seconds() {
		return analysis.MaxTimeBudget
	}

	return time.Duration(s * float64(time.Second))
}

// RoundSeconds reports d in seconds with two decimals.
func RoundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*100) / 100
}

// NewBestMoveResponse converts an analysis result.
func NewBestMoveResponse(fen string, result analysis.Result) BestMoveResponse {
	resp := BestMoveResponse{
		Success:      result.Success(),
		FEN:          fen,
		AnalysisTime: RoundSeconds(result.Elapsed),
	}

	if !result.Success() {
		resp.Failure = string(result.Failure)
		resp.Error = FailureMessage(result.Failure)

		return resp
	}

	resp.BestMove = result.Move
	resp.Ponder = result.Ponder
	resp.Depth = result.Depth
	resp.MoveTimeMS = result.MoveTime.Milliseconds()

	if info := result.Info; info != nil {
		resp.PV = info.PV
		resp.Nodes = info.Nodes

		if score := info.Score; score != nil {
			if score.Mate {
				resp.Mate = &score.MateIn
			} else {
				resp.ScoreCP = &score.Centipawns
			}
		}
	}

	return resp
}

// FailureMessage is the human-readable text of a failure kind.
func FailureMessage(kind analysis.FailureKind) string {
	switch kind {
	case analysis.FailureTimeout:
		return "Analysis timed out"
	case analysis.FailureNoLegalMove:
		return "No legal moves in this position"
	case analysis.FailureProcessDeath:
		return "Engine process died during analysis"
	case analysis.FailureProtocolError:
		return "Engine returned a malformed reply"
	case analysis.FailureSpawn:
		return "Engine unavailable"
	case analysis.FailureNotReady:
		return "Engine not ready"
	case analysis.FailureCanceled:
		return "Analysis canceled"
	default:
		return "Analysis failed"
	}
}

// NewHealthResponse converts a probe result.
func NewHealthResponse(health supervisor.Health, enginePath string) HealthResponse {
	resp := HealthResponse{
		Status:     string(health.Status),
		TestMove:   health.SampleMove,
		EnginePath: enginePath,
		Failure:    string(health.Failure),
	}

	switch health.Status {
	case supervisor.StatusHealthy:
		resp.Message = "Engine working"
	case supervisor.StatusDegraded:
		resp.Message = "Engine responding slowly or incorrectly: " + FailureMessage(health.Failure)
	default:
		resp.Message = "Engine test failed: " + FailureMessage(health.Failure)
	}

	return resp
}
