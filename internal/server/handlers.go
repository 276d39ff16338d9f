package server

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"github.com/wagiedev/uci-service-go/internal/analysis"
	"github.com/wagiedev/uci-service-go/internal/api"
	"github.com/wagiedev/uci-service-go/internal/supervisor"
)

const exampleFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR%20w%20KQkq%20-%200%201"

type banner struct {
	Message   string            `json:"message"`
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Engine    string            `json:"engine,omitempty"`
	Endpoints map[string]string `json:"endpoints"`
	Example   string            `json:"example"`
}

func (s *Server) home(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	stats := s.engine.Stats()

	writeJSON(w, http.StatusOK, banner{
		Message: "UCI analysis server online",
		Status:  stats.State.String(),
		Version: s.version,
		Engine:  stats.EngineName,
		Endpoints: map[string]string{
			"analyze": "/get_best_move?fen=<fen>&depth=<depth>&time_limit=<seconds>",
			"health":  "/health",
			"stats":   "/stats",
			"restart": "POST /engine/restart",
			"stream":  "/ws",
			"mcp":     "/mcp",
		},
		Example: "/get_best_move?fen=" + exampleFEN + "&depth=" + strconv.Itoa(analysis.DefaultDepth),
	})
}

func (s *Server) bestMove(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	fen := query.Get("fen")
	if fen == "" {
		writeError(w, http.StatusBadRequest, "Missing FEN parameter")

		return
	}

	req := analysis.Request{Position: fen, Depth: analysis.DefaultDepth}

	if v := query.Get("depth"); v != "" {
		depth, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "depth must be an integer")

			return
		}

		req.Depth = analysis.ClampDepth(depth)
	}

	if v := query.Get("time_limit"); v != "" {
		seconds, err := strconv.ParseFloat(v, 64)
		if err != nil || seconds < 0 || math.IsInf(seconds, 0) || math.IsNaN(seconds) {
			writeError(w, http.StatusBadRequest, "time_limit must be a non-negative number of seconds")

			return
		}

		req.TimeBudget = api.Seconds(seconds)
	}

	result := s.engine.Analyze(r.Context(), req)

	resp := api.NewBestMoveResponse(fen, result)
	if result.Success() {
		resp.Engine = s.engine.Stats().EngineName
	}

	status := http.StatusOK
	if result.Failure.Unavailable() {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, resp)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	health := s.engine.Probe(r.Context())

	resp := api.NewHealthResponse(health, s.engine.EnginePath())

	// The probe outcome is in the body; load balancers that only read the
	// status code still see an engine that cannot serve.
	status := http.StatusOK
	if health.Status == supervisor.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, resp)
}

func (s *Server) stats(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, s.engine.Stats())
}

func (s *Server) restart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := s.engine.Restart(r.Context()); err != nil {
		s.log.Error("Engine restart failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "Engine restart failed: "+err.Error())

		return
	}

	writeJSON(w, http.StatusOK, s.engine.Stats())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, api.ErrorResponse{Success: false, Error: message})
}
