package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagiedev/uci-service-go/internal/analysis"
	"github.com/wagiedev/uci-service-go/internal/api"
	"github.com/wagiedev/uci-service-go/internal/supervisor"
)

// ServerName is the MCP implementation name.
const ServerName = "ucisvc"

// Tool names.
const (
	ToolBestMove     = "best_move"
	ToolEngineHealth = "engine_health"
)

// Engine is the analysis surface the tools call into.
// It is satisfied by *supervisor.Supervisor.
type Engine interface {
	Analyze(ctx context.Context, req analysis.Request) analysis.Result
	Probe(ctx context.Context) supervisor.Health
	EnginePath() string
}

// EngineTools builds the toolset for engine.
func EngineTools(engine Engine, version string) *Toolset {
	tools := NewToolset(ServerName, version)

	bestMove := NewTool(ToolBestMove,
		"Find the best move for a chess position given as FEN. Searches to a fixed depth (5-25) or for a time limit in seconds.",
		ObjectSchema(
			Param{Name: "fen", Type: "string", Description: "Position in Forsyth-Edwards Notation", Required: true},
			Param{Name: "depth", Type: "int", Description: "Search depth, clamped to 5-25"},
			Param{Name: "time_limit", Type: "float64", Description: "Search time in seconds; overrides depth"},
		),
	)
	bestMove.Annotations = &mcp.ToolAnnotations{ReadOnlyHint: true}

	tools.AddTool(bestMove, bestMoveHandler(engine))

	tools.AddTool(
		NewTool(ToolEngineHealth, "Check that the engine answers a shallow search of the starting position.", ObjectSchema()),
		healthHandler(engine),
	)

	return tools
}

func bestMoveHandler(engine Engine) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := ParseArguments(req)
		if err != nil {
			return ErrorResult(err.Error()), nil
		}

		fen, _ := args["fen"].(string)
		if fen == "" {
			return ErrorResult("Missing FEN parameter"), nil
		}

		request := analysis.Request{Position: fen}

		if v, ok := args["depth"]; ok {
			depth, ok := v.(float64)
			if !ok {
				return ErrorResult(fmt.Sprintf("depth must be a number, got %T", v)), nil
			}

			request.Depth = int(depth)
		}

		if v, ok := args["time_limit"]; ok {
			seconds, ok := v.(float64)
			if !ok {
				return ErrorResult(fmt.Sprintf("time_limit must be a number, got %T", v)), nil
			}

			request.TimeBudget = api.Seconds(seconds)
		}

		result := engine.Analyze(ctx, request)

		return JSONResult(api.NewBestMoveResponse(fen, result), !result.Success()), nil
	}
}

func healthHandler(engine Engine) mcp.ToolHandler {
	return func(ctx context.Context, _ *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		health := engine.Probe(ctx)

		return JSONResult(api.NewHealthResponse(health, engine.EnginePath()), health.Status == supervisor.StatusUnhealthy), nil
	}
}

// HTTPHandler serves the toolset over MCP streamable HTTP.
func HTTPHandler(tools *Toolset) http.Handler {
	server := tools.Server()

	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)
}

// ServeStdio serves the toolset over stdin/stdout until ctx is done or the
// client disconnects.
func ServeStdio(ctx context.Context, log *slog.Logger, tools *Toolset) error {
	log.Info("Serving MCP over stdio", "server", tools.Name(), "version", tools.Version(), "tools", len(tools.Tools()))

	if err := tools.Server().Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("serve mcp over stdio: %w", err)
	}

	return nil
}
