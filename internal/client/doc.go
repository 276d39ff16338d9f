// Package client is an HTTP client for the analysis service.
//
// Requests go through a retrying transport: connection errors and 5xx
// responses are retried with backoff, and the final response is decoded
// even when every attempt failed, so a 503 still yields the service's
// failure kind.
package client
