package subprocess_test

import (
	"context"
	stderrors "errors"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wagiedev/uci-service-go/internal/config"
	"github.com/wagiedev/uci-service-go/internal/errors"
	"github.com/wagiedev/uci-service-go/internal/subprocess"
	"github.com/wagiedev/uci-service-go/internal/testutil/fakeengine"
)

func TestMain(m *testing.M) {
	if fakeengine.Main() {
		return
	}

	os.Exit(m.Run())
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// startFake re-executes the test binary as a fake engine.
func startFake(t *testing.T, b fakeengine.Behavior) *subprocess.Process {
	t.Helper()

	p := subprocess.NewProcess(discardLogger(), os.Args[0], &config.Options{
		Env: fakeengine.Env(b),
	})

	require.NoError(t, p.Start(context.Background()))
	t.Cleanup(func() { _ = p.Close() })

	return p
}

func popLine(t *testing.T, p *subprocess.Process) string {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	line, err := p.Output().Pop(ctx)
	require.NoError(t, err)

	return line
}

func TestProcess_Handshake(t *testing.T) {
	p := startFake(t, fakeengine.Behavior{Name: "Helperfish"})

	require.True(t, p.Alive())
	require.NotZero(t, p.Pid())

	require.NoError(t, p.WriteLine("uci"))
	require.Equal(t, "id name Helperfish", popLine(t, p))

	for {
		if popLine(t, p) == "uciok" {
			break
		}
	}

	require.NoError(t, p.WriteLine("isready"))
	require.Equal(t, "readyok", popLine(t, p))

	require.NoError(t, p.WriteLine("position fen 8/8/8/8/8/8/8/K6k w - - 0 1"))
	require.NoError(t, p.WriteLine("go depth 5"))
	require.Equal(t, "bestmove e2e4", popLine(t, p))
}

func TestProcess_OutputClosedOnExit(t *testing.T) {
	p := startFake(t, fakeengine.Behavior{
		Searches: []fakeengine.Search{{Exit: true}},
	})

	require.NoError(t, p.WriteLine("go depth 5"))

	select {
	case <-p.Exited():
	case <-time.After(5 * time.Second):
		t.Fatal("process did not exit")
	}

	require.False(t, p.Alive())
	require.NoError(t, p.Err())

	_, err := p.Output().Pop(context.Background())
	require.ErrorIs(t, err, errors.ErrOutputClosed)

	err = p.WriteLine("isready")
	require.ErrorIs(t, err, errors.ErrStdinClosed)
}

func TestProcess_CloseKills(t *testing.T) {
	p := startFake(t, fakeengine.Behavior{})

	require.NoError(t, p.Close())
	require.False(t, p.Alive())

	// Intentional shutdown is not reported as a failure.
	require.NoError(t, p.Err())

	require.NoError(t, p.Close())
}

func TestProcess_KilledExternally(t *testing.T) {
	p := startFake(t, fakeengine.Behavior{})

	proc, err := os.FindProcess(p.Pid())
	require.NoError(t, err)
	require.NoError(t, proc.Kill())

	select {
	case <-p.Exited():
	case <-time.After(5 * time.Second):
		t.Fatal("process did not exit")
	}

	perr, ok := stderrors.AsType[*errors.ProcessError](p.Err())
	require.True(t, ok, "expected ProcessError, got %v", p.Err())
	require.Equal(t, -1, perr.ExitCode)
}

func TestProcess_StartErrors(t *testing.T) {
	t.Run("missing binary", func(t *testing.T) {
		p := subprocess.NewProcess(discardLogger(), "/nonexistent/stockfish", nil)

		err := p.Start(context.Background())
		require.Error(t, err)

		spawnErr, ok := stderrors.AsType[*errors.SpawnError](err)
		require.True(t, ok)
		require.Equal(t, "start", spawnErr.Stage)
		require.False(t, p.Alive())
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		p := subprocess.NewProcess(discardLogger(), os.Args[0], nil)
		require.ErrorIs(t, p.Start(ctx), context.Canceled)
	})

	t.Run("started twice", func(t *testing.T) {
		p := startFake(t, fakeengine.Behavior{})
		require.Error(t, p.Start(context.Background()))
	})
}

func TestProcess_BeforeStart(t *testing.T) {
	p := subprocess.NewProcess(discardLogger(), os.Args[0], nil)

	require.False(t, p.Alive())
	require.Zero(t, p.Pid())

	err := p.WriteLine("uci")
	require.ErrorIs(t, err, errors.ErrProcessNotStarted)

	require.NoError(t, p.Close())

	_, err = p.Output().Pop(context.Background())
	require.ErrorIs(t, err, errors.ErrOutputClosed)
}

func TestProcess_StderrAndExitCode(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}

	var (
		mu    sync.Mutex
		lines []string
	)

	p := subprocess.NewProcess(discardLogger(), sh, &config.Options{
		Args: []string{"-c", "echo 'Unknown option: x' >&2; echo '  readyok  '; exit 3"},
		Stderr: func(line string) {
			mu.Lock()
			defer mu.Unlock()

			lines = append(lines, line)
		},
	})
	require.NoError(t, p.Start(context.Background()))

	t.Cleanup(func() { _ = p.Close() })

	// Lines are trimmed before queuing.
	require.Equal(t, "readyok", popLine(t, p))

	select {
	case <-p.Exited():
	case <-time.After(5 * time.Second):
		t.Fatal("process did not exit")
	}

	perr, ok := stderrors.AsType[*errors.ProcessError](p.Err())
	require.True(t, ok)
	require.Equal(t, 3, perr.ExitCode)
	require.Contains(t, perr.Stderr, "Unknown option")
	require.Equal(t, "Unknown option: x", p.Stderr())

	mu.Lock()
	defer mu.Unlock()

	require.Equal(t, []string{"Unknown option: x"}, lines)
}

func TestProcess_ConcurrentWrites(t *testing.T) {
	p := startFake(t, fakeengine.Behavior{})

	var wg sync.WaitGroup

	for range 20 {
		wg.Go(func() {
			_ = p.WriteLine("isready")
		})
	}

	wg.Wait()

	for range 20 {
		require.Equal(t, "readyok", popLine(t, p))
	}
}

func TestNew_HasFactorySignature(t *testing.T) {
	var factory config.ProcessFactory = subprocess.New

	p := factory(discardLogger(), os.Args[0], nil)
	require.False(t, p.Alive())
	require.Zero(t, p.Pid())
}
