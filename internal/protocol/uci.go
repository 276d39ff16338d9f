package protocol

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/wagiedev/uci-service-go/internal/config"
	"github.com/wagiedev/uci-service-go/internal/errors"
)

// UCI commands and reply tokens.
const (
	CmdUCI     = "uci"
	CmdIsReady = "isready"
	CmdStop    = "stop"
	CmdQuit    = "quit"

	TokenUCIOK    = "uciok"
	TokenReadyOK  = "readyok"
	TokenBestMove = "bestmove"
	TokenIDName   = "id name "
	TokenPonder   = "ponder"

	// NoMove is the bestmove sentinel for positions without a legal move.
	NoMove = "(none)"
)

// SetOption builds a setoption command.
func SetOption(name, value string) string {
	if value == "" {
		return "setoption name " + name
	}

	return "setoption name " + name + " value " + value
}

// Position builds the position command for a FEN descriptor. The descriptor
// is passed through verbatim.
func Position(fen string) string {
	return "position fen " + fen
}

// GoDepth builds a depth-bounded search command.
func GoDepth(depth int) string {
	return "go depth " + strconv.Itoa(depth)
}

// GoMoveTime builds a fixed-time search command.
func GoMoveTime(d time.Duration) string {
	return "go movetime " + strconv.FormatInt(d.Milliseconds(), 10)
}

// BestMove is a parsed bestmove reply.
type BestMove struct {
	Move   string
	Ponder string
}

// NoMove reports whether the engine found no legal move.
func (b BestMove) NoMove() bool {
	return b.Move == NoMove
}

// ParseBestMove parses "bestmove <move> [ponder <move>]".
func ParseBestMove(line string) (BestMove, error) {
	fields := strings.Fields(line)

	if len(fields) == 0 || fields[0] != TokenBestMove {
		return BestMove{}, &errors.ProtocolError{Line: line, Reason: "not a bestmove line"}
	}

	if len(fields) < 2 {
		return BestMove{}, &errors.ProtocolError{Line: line, Reason: "bestmove without a move"}
	}

	b := BestMove{Move: fields[1]}

	if len(fields) >= 4 && fields[2] == TokenPonder {
		b.Ponder = fields[3]
	}

	return b, nil
}

// Identity is what the engine reported about itself during the handshake.
type Identity struct {
	Name string
}

// Handshake runs the UCI start-up exchange:
// uci until uciok, the given setoption commands without waiting for any
// acknowledgement, then isready until readyok. Each wait is bounded by timeout.
func Handshake(ctx context.Context, d *Driver, options []config.EngineOption, timeout time.Duration) (Identity, error) {
	var id Identity

	if err := d.Send(CmdUCI); err != nil {
		return id, fmt.Errorf("send uci: %w", err)
	}

	idName := func(line string) bool {
		if name, ok := strings.CutPrefix(line, TokenIDName); ok {
			id.Name = strings.TrimSpace(name)
		}

		return line == TokenUCIOK
	}

	if _, err := d.WaitFor(ctx, idName, timeout); err != nil {
		return id, fmt.Errorf("wait for uciok: %w", err)
	}

	for _, opt := range options {
		if err := d.Send(SetOption(opt.Name, opt.Value)); err != nil {
			return id, fmt.Errorf("send setoption %s: %w", opt.Name, err)
		}
	}

	if err := d.Send(CmdIsReady); err != nil {
		return id, fmt.Errorf("send isready: %w", err)
	}

	if _, err := d.WaitFor(ctx, Contains(TokenReadyOK), timeout); err != nil {
		return id, fmt.Errorf("wait for readyok: %w", err)
	}

	return id, nil
}
