//go:build integration

package integration

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	ucisvc "github.com/wagiedev/uci-service-go"
)

// uciMove matches a move in long algebraic notation, e.g. e2e4 or e7e8q.
var uciMove = regexp.MustCompile(`^[a-h][1-8][a-h][1-8][qrbn]?$`)

// Positions used across the suite.
const (
	mateInOne  = "6k1/5ppp/8/8/8/8/5PPP/3R2K1 w - - 0 1"
	checkmated = "7k/6Q1/6K1/8/8/8/8/8 b - - 0 1"
	stalemate  = "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1"
)

// startEngine starts a supervisor on an installed engine, skipping the test if
// none is found.
func startEngine(t *testing.T, opts ...ucisvc.Option) *ucisvc.Supervisor {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := ucisvc.Start(ctx, opts...)
	if err != nil {
		skipIfEngineNotInstalled(t, err)
		t.Fatalf("Start failed: %v", err)
	}

	t.Cleanup(func() { _ = s.Close() })

	return s
}

// skipIfEngineNotInstalled skips the test if the error indicates no engine was found.
func skipIfEngineNotInstalled(t *testing.T, err error) {
	t.Helper()

	if _, ok := errors.AsType[*ucisvc.BinaryNotFoundError](err); ok {
		t.Skip("stockfish not installed")
	}
}
