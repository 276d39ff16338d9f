package subprocess

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wagiedev/uci-service-go/internal/config"
	"github.com/wagiedev/uci-service-go/internal/errors"
)

const (
	// maxScanTokenSize is the maximum buffer size for reading engine output lines.
	maxScanTokenSize = 1024 * 1024 // 1MB
	// maxStderrBufferSize is the maximum size for the stderr buffer.
	// Stderr reading continues indefinitely (callback receives all lines),
	// but the buffer stops growing after this limit.
	maxStderrBufferSize = 64 * 1024 // 64KB
	// reapTimeout bounds how long Close waits for the killed process to be reaped.
	reapTimeout = 5 * time.Second
)

// Process implements config.Process by spawning an engine subprocess.
type Process struct {
	log     *slog.Logger
	path    string
	options *config.Options

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	output *LineQueue

	mu          sync.Mutex // Protects stdin writes and lifecycle fields
	started     bool
	stdinClosed bool
	closing     atomic.Bool // Close() has been called (intentional shutdown)

	exited  chan struct{}
	exitErr error

	stderrMu  sync.Mutex
	stderrBuf strings.Builder
}

// Compile-time verification that Process implements the config.Process interface.
var _ config.Process = (*Process)(nil)

// New creates an unstarted process handle for the engine at path.
// It has the config.ProcessFactory signature.
func New(log *slog.Logger, path string, options *config.Options) config.Process {
	return NewProcess(log, path, options)
}

// NewProcess creates an unstarted process handle for the engine at path.
func NewProcess(log *slog.Logger, path string, options *config.Options) *Process {
	if options == nil {
		options = &config.Options{}
	}

	return &Process{
		log:     log.With("component", "engine_process"),
		path:    path,
		options: options,
		output:  NewLineQueue(),
		exited:  make(chan struct{}),
	}
}

// Start spawns the engine process and starts the output reader.
//
// The process is deliberately not bound to ctx: a restart triggered from a
// request must outlive that request. ctx is only checked before spawning.
//
// Returns SpawnError if the pipes cannot be created or the binary cannot run.
func (p *Process) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return &errors.SpawnError{Path: p.path, Stage: "start", Err: fmt.Errorf("process already started")}
	}

	p.log.Info("Starting engine subprocess", "path", p.path)

	//nolint:gosec // G204: the engine path is operator configuration
	cmd := exec.Command(p.path, p.options.Args...)
	cmd.Dir = p.options.Dir

	if len(p.options.Env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range p.options.Env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		p.log.Error("Failed to create stdin pipe", "error", err)

		return &errors.SpawnError{Path: p.path, Stage: "start", Err: fmt.Errorf("stdin pipe: %w", err)}
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		p.log.Error("Failed to create stdout pipe", "error", err)

		return &errors.SpawnError{Path: p.path, Stage: "start", Err: fmt.Errorf("stdout pipe: %w", err)}
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		p.log.Error("Failed to create stderr pipe", "error", err)

		return &errors.SpawnError{Path: p.path, Stage: "start", Err: fmt.Errorf("stderr pipe: %w", err)}
	}

	if err := cmd.Start(); err != nil {
		p.log.Error("Failed to start engine process", "error", err)

		return &errors.SpawnError{Path: p.path, Stage: "start", Err: fmt.Errorf("start process: %w", err)}
	}

	p.cmd = cmd
	p.stdin = stdin
	p.started = true
	p.log = p.log.With("pid", cmd.Process.Pid)

	var readers sync.WaitGroup

	readers.Go(func() { p.readOutput(stdout) })
	readers.Go(func() { p.readStderr(stderr) })

	go p.wait(&readers)

	p.log.Info("Engine subprocess started")

	return nil
}

// readOutput is the output demultiplexer: it frames stdout into trimmed lines
// and pushes them, unfiltered and in order, onto the output queue. The queue
// is closed when the stream ends.
func (p *Process) readOutput(stdout io.Reader) {
	defer p.output.Close()
	defer p.log.Debug("Output reader stopped")

	scanner := bufio.NewScanner(stdout)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, maxScanTokenSize)

	for scanner.Scan() {
		p.output.Push(strings.TrimSpace(scanner.Text()))
	}

	if err := scanner.Err(); err != nil && !p.closing.Load() {
		p.log.Warn("Error reading engine output", "error", err)
	}
}

// readStderr buffers stderr for error reporting and forwards it to the callback.
func (p *Process) readStderr(stderr io.Reader) {
	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		line := scanner.Text()

		p.stderrMu.Lock()

		if p.stderrBuf.Len() < maxStderrBufferSize {
			if p.stderrBuf.Len() > 0 {
				p.stderrBuf.WriteString("\n")
			}

			p.stderrBuf.WriteString(line)
		}

		p.stderrMu.Unlock()

		if p.options.Stderr != nil {
			p.options.Stderr(line)
		}
	}

	if err := scanner.Err(); err != nil {
		p.log.Debug("Stderr scanner error", "error", err)
	}
}

// wait reaps the process once both pipes are drained.
// See: https://pkg.go.dev/os/exec#Cmd.StdoutPipe
func (p *Process) wait(readers *sync.WaitGroup) {
	readers.Wait()

	err := p.cmd.Wait()

	switch {
	case err == nil:
		p.log.Info("Engine process exited")
	case p.closing.Load():
		p.log.Debug("Engine process terminated during shutdown")

		err = nil
	default:
		exitCode := -1
		if exitErr, ok := stderrors.AsType[*exec.ExitError](err); ok {
			exitCode = exitErr.ExitCode()
		}

		p.log.Error("Engine process exited with error", "exit_code", exitCode, "stderr", p.Stderr())

		err = &errors.ProcessError{ExitCode: exitCode, Stderr: p.Stderr(), Err: err}
	}

	p.mu.Lock()
	p.exitErr = err
	p.stdinClosed = true
	p.mu.Unlock()

	close(p.exited)
}

// WriteLine writes one command line to the engine stdin.
//
// Exactly one newline terminator is appended and the write goes straight to
// the pipe with no buffering. This method is safe for concurrent use.
func (p *Process) WriteLine(line string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return &errors.WriteError{Command: line, Err: errors.ErrProcessNotStarted}
	}

	if p.stdinClosed {
		return &errors.WriteError{Command: line, Err: errors.ErrStdinClosed}
	}

	p.log.Debug("Sending command to engine", "command", line)

	if _, err := io.WriteString(p.stdin, line+"\n"); err != nil {
		p.log.Warn("Failed to write command to engine", "command", line, "error", err)

		return &errors.WriteError{Command: line, Err: err}
	}

	return nil
}

// Output returns the ordered line stream of this process instance.
func (p *Process) Output() config.LineSource {
	return p.output
}

// Alive reports whether the process has been started and not yet reaped.
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

// Exited returns a channel that is closed once the process has been reaped.
func (p *Process) Exited() <-chan struct{} {
	return p.exited
}

// Err returns the exit error. It is nil while the process runs, after a clean
// exit, and after Close.
func (p *Process) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.exitErr
}

// Pid returns the OS process id, or 0 if the process was never started.
func (p *Process) Pid() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cmd == nil || p.cmd.Process == nil {
		return 0
	}

	return p.cmd.Process.Pid
}

// Stderr returns the buffered stderr output.
func (p *Process) Stderr() string {
	p.stderrMu.Lock()
	defer p.stderrMu.Unlock()

	return strings.TrimSpace(p.stderrBuf.String())
}

// Close terminates the engine process.
//
// This forcefully kills the process and waits for it to be reaped. It's safe
// to call Close multiple times or on an already-terminated process.
func (p *Process) Close() error {
	p.closing.Store(true)

	p.mu.Lock()

	if !p.started {
		p.mu.Unlock()
		p.output.Close()

		return nil
	}

	if p.stdin != nil && !p.stdinClosed {
		_ = p.stdin.Close()
		p.stdinClosed = true
	}

	proc := p.cmd.Process
	p.mu.Unlock()

	p.log.Debug("Killing engine process")

	if err := proc.Kill(); err != nil && !stderrors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("kill engine process (pid %d): %w", proc.Pid, err)
	}

	select {
	case <-p.exited:
	case <-time.After(reapTimeout):
		p.log.Warn("Engine process not reaped after kill", "timeout", reapTimeout)
	}

	return nil
}
