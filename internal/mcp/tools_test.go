package mcp

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	mcpgo "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/wagiedev/uci-service-go/internal/analysis"
	"github.com/wagiedev/uci-service-go/internal/api"
	"github.com/wagiedev/uci-service-go/internal/supervisor"
)

// mockEngine records requests and answers with canned results.
type mockEngine struct {
	mu       sync.Mutex
	requests []analysis.Request
	result   analysis.Result
	health   supervisor.Health
}

func (m *mockEngine) Analyze(_ context.Context, req analysis.Request) analysis.Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)

	return m.result
}

func (m *mockEngine) Probe(context.Context) supervisor.Health {
	return m.health
}

func (m *mockEngine) EnginePath() string {
	return "/usr/games/stockfish"
}

func (m *mockEngine) lastRequest() analysis.Request {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.requests[len(m.requests)-1]
}

func decodeBestMove(t *testing.T, result *mcpgo.CallToolResult) api.BestMoveResponse {
	t.Helper()

	var resp api.BestMoveResponse
	require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &resp))

	return resp
}

func TestBestMoveTool(t *testing.T) {
	engine := &mockEngine{result: analysis.Result{Move: "e2e4", Depth: 10, Elapsed: time.Second}}
	tools := EngineTools(engine, "test")

	result := invoke(t, tools, ToolBestMove, map[string]any{
		"fen":   "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		"depth": 10,
	})
	require.False(t, result.IsError)

	resp := decodeBestMove(t, result)
	require.True(t, resp.Success)
	require.Equal(t, "e2e4", resp.BestMove)
	require.Equal(t, 10, resp.Depth)

	req := engine.lastRequest()
	require.Equal(t, 10, req.Depth)
	require.Zero(t, req.TimeBudget)
}

func TestBestMoveTool_TimeLimit(t *testing.T) {
	engine := &mockEngine{result: analysis.Result{Move: "d2d4"}}
	tools := EngineTools(engine, "test")

	result := invoke(t, tools, ToolBestMove, map[string]any{
		"fen":        "fen",
		"time_limit": 2.5,
	})
	require.False(t, result.IsError)
	require.Equal(t, 2500*time.Millisecond, engine.lastRequest().TimeBudget)
}

func TestBestMoveTool_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input map[string]any
		want  string
	}{
		{name: "missing fen", input: map[string]any{}, want: "Missing FEN parameter"},
		{name: "bad depth", input: map[string]any{"fen": "x", "depth": "deep"}, want: "depth must be a number, got string"},
		{name: "bad time limit", input: map[string]any{"fen": "x", "time_limit": true}, want: "time_limit must be a number, got bool"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			engine := &mockEngine{}
			result := invoke(t, EngineTools(engine, "test"), ToolBestMove, tc.input)

			require.True(t, result.IsError)
			require.Equal(t, tc.want, textOf(t, result))
			require.Empty(t, engine.requests)
		})
	}
}

func TestBestMoveTool_AnalysisFailure(t *testing.T) {
	engine := &mockEngine{result: analysis.Failed(analysis.FailureNoLegalMove, nil, time.Millisecond)}

	result := invoke(t, EngineTools(engine, "test"), ToolBestMove, map[string]any{"fen": "x"})
	require.True(t, result.IsError)

	resp := decodeBestMove(t, result)
	require.False(t, resp.Success)
	require.Equal(t, "no_legal_move", resp.Failure)
}

func TestEngineHealthTool(t *testing.T) {
	engine := &mockEngine{health: supervisor.Health{Status: supervisor.StatusHealthy, SampleMove: "e2e4"}}

	result := invoke(t, EngineTools(engine, "test"), ToolEngineHealth, nil)
	require.False(t, result.IsError)

	var resp api.HealthResponse
	require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &resp))
	require.Equal(t, "healthy", resp.Status)
	require.Equal(t, "e2e4", resp.TestMove)
	require.Equal(t, "/usr/games/stockfish", resp.EnginePath)

	engine.health = supervisor.Health{Status: supervisor.StatusUnhealthy, Failure: analysis.FailureSpawn}
	result = invoke(t, EngineTools(engine, "test"), ToolEngineHealth, nil)
	require.True(t, result.IsError)
}

func connect(t *testing.T, transport mcpgo.Transport) *mcpgo.ClientSession {
	t.Helper()

	client := mcpgo.NewClient(&mcpgo.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)

	session, err := client.Connect(context.Background(), transport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })

	return session
}

func TestBestMoveSchema(t *testing.T) {
	tools := EngineTools(&mockEngine{}, "test").Tools()
	require.Len(t, tools, 2)
	require.Equal(t, ToolBestMove, tools[0].Name)

	schema, ok := tools[0].InputSchema.(*jsonschema.Schema)
	require.True(t, ok)
	require.Equal(t, []string{"fen"}, schema.Required)
	require.Equal(t, "string", schema.Properties["fen"].Type)
	require.Equal(t, "integer", schema.Properties["depth"].Type)
	require.Equal(t, "number", schema.Properties["time_limit"].Type)
	require.True(t, tools[0].Annotations.ReadOnlyHint)
}

func TestServer_InMemory(t *testing.T) {
	engine := &mockEngine{result: analysis.Result{Move: "g1f3", Depth: 5}}
	tools := EngineTools(engine, "1.0.0")

	clientTransport, serverTransport := mcpgo.NewInMemoryTransports()

	serverSession, err := tools.Server().Connect(context.Background(), serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	session := connect(t, clientTransport)

	listed, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, listed.Tools, 2)

	result, err := session.CallTool(context.Background(), &mcpgo.CallToolParams{
		Name:      ToolBestMove,
		Arguments: map[string]any{"fen": "fen", "depth": 5},
	})
	require.NoError(t, err)
	require.False(t, result.IsError)
	require.Equal(t, "g1f3", decodeBestMove(t, result).BestMove)
}

func TestHTTPHandler(t *testing.T) {
	engine := &mockEngine{health: supervisor.Health{Status: supervisor.StatusHealthy, SampleMove: "e2e4"}}

	srv := httptest.NewServer(HTTPHandler(EngineTools(engine, "1.0.0")))
	t.Cleanup(srv.Close)

	session := connect(t, &mcpgo.StreamableClientTransport{Endpoint: srv.URL})

	result, err := session.CallTool(context.Background(), &mcpgo.CallToolParams{Name: ToolEngineHealth})
	require.NoError(t, err)
	require.False(t, result.IsError)
	require.Contains(t, textOf(t, result), `"status":"healthy"`)
}
