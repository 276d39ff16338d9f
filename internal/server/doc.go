// Package server is the HTTP front of the analysis service.
//
// Routes:
//
//	GET  /                 service banner
//	GET  /get_best_move    ?fen=<fen>&depth=<5-25>&time_limit=<seconds>
//	GET  /health           shallow probe of the engine
//	GET  /stats            supervisor counters
//	POST /engine/restart   replace the engine process
//	GET  /ws               websocket: api.AnalyzeRequest in, api.AnalyzeResponse out
//	*    /mcp              MCP streamable HTTP endpoint
//
// Every response allows any origin. Search timeouts and other per-request
// failures are reported with status 200 and success=false; only an engine
// that cannot serve at all yields 503.
package server
