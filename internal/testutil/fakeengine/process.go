package fakeengine

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/wagiedev/uci-service-go/internal/config"
	internalerrors "github.com/wagiedev/uci-service-go/internal/errors"
	"github.com/wagiedev/uci-service-go/internal/subprocess"
)

// ErrFakeStart is returned by Start when Behavior.FailStart is set.
var ErrFakeStart = errors.New("fake engine refused to start")

// Compile-time verification that Process implements config.Process.
var _ config.Process = (*Process)(nil)

// Process is an in-memory config.Process running a fake engine on io.Pipes.
type Process struct {
	behavior Behavior
	pid      int
	output   *subprocess.LineQueue

	mu       sync.Mutex
	started  bool
	commands []string
	inR      *io.PipeReader
	inW      *io.PipeWriter
	outW     *io.PipeWriter

	exited    chan struct{}
	closeOnce sync.Once
}

// NewProcess creates an unstarted in-memory engine.
func NewProcess(b Behavior) *Process {
	return &Process{
		behavior: b,
		output:   subprocess.NewLineQueue(),
		exited:   make(chan struct{}),
	}
}

// Start launches the fake engine goroutines.
func (p *Process) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if p.behavior.FailStart {
		return &internalerrors.SpawnError{Path: "fake", Stage: "start", Err: ErrFakeStart}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	inR, inW := io.Pipe()
	outR, outW := io.Pipe()

	p.inR, p.inW, p.outW = inR, inW, outW
	p.started = true

	go func() {
		_ = Run(inR, outW, p.behavior)
		_ = inR.Close()
		_ = outW.Close()
	}()

	go func() {
		// exited closes before the queue, so a reader that sees the end of
		// the stream also sees a dead process.
		defer p.output.Close()
		defer close(p.exited)

		scanner := bufio.NewScanner(outR)
		for scanner.Scan() {
			p.output.Push(strings.TrimSpace(scanner.Text()))
		}
	}()

	return nil
}

// WriteLine records the command and writes it to the fake engine.
func (p *Process) WriteLine(line string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return &internalerrors.WriteError{Command: line, Err: internalerrors.ErrProcessNotStarted}
	}

	p.commands = append(p.commands, line)

	if _, err := io.WriteString(p.inW, line+"\n"); err != nil {
		return &internalerrors.WriteError{Command: line, Err: err}
	}

	return nil
}

// Output returns the ordered line stream.
func (p *Process) Output() config.LineSource {
	return p.output
}

// Alive reports whether the fake is running.
func (p *Process) Alive() bool {
	p.mu.Lock()
	started := p.started
	p.mu.Unlock()

	if !started {
		return false
	}

	select {
	case <-p.exited:
		return false
	default:
		return true
	}
}

// Exited is closed once the fake has stopped and its output is drained.
func (p *Process) Exited() <-chan struct{} {
	return p.exited
}

// Err always returns nil.
func (p *Process) Err() error {
	return nil
}

// Pid returns a synthetic process id.
func (p *Process) Pid() int {
	return p.pid
}

// Kill simulates the engine dying: both pipes are torn down.
func (p *Process) Kill() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		inR, outW := p.inR, p.outW
		p.mu.Unlock()

		if inR == nil {
			p.output.Close()

			return
		}

		_ = inR.CloseWithError(io.ErrClosedPipe)
		_ = outW.Close()
	})
}

// Close terminates the fake and waits for its output to drain.
func (p *Process) Close() error {
	p.Kill()

	p.mu.Lock()
	started := p.started
	p.mu.Unlock()

	if started {
		<-p.exited
	}

	return nil
}

// Commands returns every command written so far.
func (p *Process) Commands() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]string(nil), p.commands...)
}

// Launcher hands out fake processes in order, one per factory call.
// Once the behaviors are exhausted the last one is reused.
type Launcher struct {
	mu        sync.Mutex
	behaviors []Behavior
	launched  []*Process
}

// NewLauncher creates a launcher for the given behaviors.
func NewLauncher(behaviors ...Behavior) *Launcher {
	if len(behaviors) == 0 {
		behaviors = []Behavior{{}}
	}

	return &Launcher{behaviors: behaviors}
}

// Factory returns a config.ProcessFactory backed by the launcher.
func (l *Launcher) Factory() config.ProcessFactory {
	return func(_ *slog.Logger, _ string, _ *config.Options) config.Process {
		l.mu.Lock()
		defer l.mu.Unlock()

		b := l.behaviors[min(len(l.launched), len(l.behaviors)-1)]
		p := NewProcess(b)
		p.pid = 1000 + len(l.launched)
		l.launched = append(l.launched, p)

		return p
	}
}

// Launched returns every process created so far.
func (l *Launcher) Launched() []*Process {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]*Process(nil), l.launched...)
}

// Last returns the most recently created process, or nil.
func (l *Launcher) Last() *Process {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.launched) == 0 {
		return nil
	}

	return l.launched[len(l.launched)-1]
}
