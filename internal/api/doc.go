// Package api defines the JSON bodies shared by the HTTP server, the MCP tools
// and the HTTP client.
package api
