package fakeengine

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Search scripts the reply to one go command.
type Search struct {
	// Move is the reply move. Empty uses Behavior.Move.
	Move string `json:"move,omitempty"`
	// Ponder is an optional ponder move appended to the reply.
	Ponder string `json:"ponder,omitempty"`
	// Delay postpones the reply.
	Delay time.Duration `json:"delay,omitempty"`
	// Silent never replies.
	Silent bool `json:"silent,omitempty"`
	// Raw replaces the whole bestmove line.
	Raw string `json:"raw,omitempty"`
	// Info lines are written before the reply.
	Info []string `json:"info,omitempty"`
	// Exit terminates the engine instead of replying.
	Exit bool `json:"exit,omitempty"`
}

// Behavior configures a fake engine.
type Behavior struct {
	// Name is reported as "id name". Defaults to "Fakefish".
	Name string `json:"name,omitempty"`
	// Move is the default reply move. Defaults to "e2e4".
	Move string `json:"move,omitempty"`
	// SkipUCIOK never acknowledges uci.
	SkipUCIOK bool `json:"skip_uciok,omitempty"`
	// SkipReadyOK never acknowledges isready.
	SkipReadyOK bool `json:"skip_readyok,omitempty"`
	// FailStart makes the in-memory Process fail to start.
	FailStart bool `json:"fail_start,omitempty"`
	// Searches script successive go commands. Once exhausted, every search
	// replies immediately with Move.
	Searches []Search `json:"searches,omitempty"`
}

func (b Behavior) name() string {
	if b.Name == "" {
		return "Fakefish"
	}

	return b.Name
}

func (b Behavior) move() string {
	if b.Move == "" {
		return "e2e4"
	}

	return b.Move
}

// engine is one running fake.
type engine struct {
	behavior Behavior

	outMu sync.Mutex
	out   io.Writer

	searches int
	pending  *pendingReply
}

type pendingReply struct {
	timer *time.Timer
	line  string
	once  sync.Once
}

// Run speaks UCI on in/out following b until quit, an exit search, or the end
// of input.
func Run(in io.Reader, out io.Writer, b Behavior) error {
	e := &engine{behavior: b, out: out}

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		cmd, _, _ := strings.Cut(line, " ")

		switch cmd {
		case "uci":
			e.writeLine("id name " + b.name())
			e.writeLine("id author wagiedev")
			e.writeLine("option name Threads type spin default 1 min 1 max 1024")
			e.writeLine("option name Hash type spin default 16 min 1 max 33554432")

			if !b.SkipUCIOK {
				e.writeLine("uciok")
			}

		case "isready":
			if !b.SkipReadyOK {
				e.writeLine("readyok")
			}

		case "go":
			if exit := e.search(); exit {
				return nil
			}

		case "stop":
			e.flushPending()

		case "quit":
			return nil
		}
	}

	return scanner.Err()
}

// search handles one go command and reports whether the engine should exit.
func (e *engine) search() bool {
	s := Search{}
	if e.searches < len(e.behavior.Searches) {
		s = e.behavior.Searches[e.searches]
	}

	e.searches++

	if s.Exit {
		return true
	}

	if s.Silent {
		return false
	}

	for _, info := range s.Info {
		e.writeLine(info)
	}

	line := s.Raw
	if line == "" {
		move := s.Move
		if move == "" {
			move = e.behavior.move()
		}

		line = "bestmove " + move
		if s.Ponder != "" {
			line += " ponder " + s.Ponder
		}
	}

	if s.Delay <= 0 {
		e.writeLine(line)

		return false
	}

	p := &pendingReply{line: line}
	p.timer = time.AfterFunc(s.Delay, func() {
		p.once.Do(func() { e.writeLine(p.line) })
	})
	e.pending = p

	return false
}

// flushPending answers a stop by emitting the pending reply immediately.
func (e *engine) flushPending() {
	p := e.pending
	if p == nil {
		return
	}

	e.pending = nil
	p.timer.Stop()
	p.once.Do(func() { e.writeLine(p.line) })
}

func (e *engine) writeLine(line string) {
	e.outMu.Lock()
	defer e.outMu.Unlock()

	_, _ = fmt.Fprintln(e.out, line)
}
