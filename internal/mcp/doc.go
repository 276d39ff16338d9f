// Package mcp exposes engine analysis as Model Context Protocol tools.
//
// A Toolset keeps a thread-safe registry of tools that can be invoked
// directly (CallTool) or published on an MCP server from the official SDK.
// EngineTools builds the standard toolset:
//
//   - best_move: best move for a FEN position, by depth or time limit
//   - engine_health: runs the health probe
//
// The same toolset is served over streamable HTTP (HTTPHandler) and over
// stdio (ServeStdio).
package mcp
