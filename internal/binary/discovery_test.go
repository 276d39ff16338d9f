package binary

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wagiedev/uci-service-go/internal/errors"
)

func writeFile(t *testing.T, path string, mode os.FileMode) {
	t.Helper()

	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), mode))
	// WriteFile is subject to the umask; pin the mode.
	require.NoError(t, os.Chmod(path, mode))
}

func TestDiscoverer_ExplicitPath(t *testing.T) {
	engine := filepath.Join(t.TempDir(), "stockfish")
	writeFile(t, engine, 0o755)

	path, err := NewDiscoverer(&Config{EnginePath: engine}).Discover(context.Background())

	require.NoError(t, err)
	require.Equal(t, engine, path)
}

func TestDiscoverer_ExplicitPathNotFound(t *testing.T) {
	_, err := NewDiscoverer(&Config{
		EnginePath: "/nonexistent/path/to/stockfish",
	}).Discover(context.Background())

	notFound, ok := stderrors.AsType[*errors.BinaryNotFoundError](err)
	require.True(t, ok, "expected BinaryNotFoundError, got %v", err)
	require.Equal(t, []string{"/nonexistent/path/to/stockfish"}, notFound.SearchedPaths)
}

func TestDiscoverer_LocalCopyMadeExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("Test requires Unix permission bits")
	}

	dir := t.TempDir()
	engine := filepath.Join(dir, "stockfish")
	writeFile(t, engine, 0o644)

	path, err := NewDiscoverer(&Config{Dir: dir, SystemDirs: []string{}}).Discover(context.Background())
	require.NoError(t, err)
	require.Equal(t, engine, path)

	info, err := os.Stat(engine)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

func TestDiscoverer_SystemDir(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("Test requires Unix permission bits")
	}

	system := t.TempDir()
	engine := filepath.Join(system, "fakefish-test-engine")
	writeFile(t, engine, 0o755)

	path, err := NewDiscoverer(&Config{
		Name:       "fakefish-test-engine",
		Dir:        t.TempDir(),
		SystemDirs: []string{filepath.Join(system, "missing"), system},
	}).Discover(context.Background())

	require.NoError(t, err)
	require.Equal(t, engine, path)
}

func TestDiscoverer_NotFound(t *testing.T) {
	dir := t.TempDir()

	_, err := NewDiscoverer(&Config{
		Name:       "fakefish-not-installed",
		Dir:        dir,
		SystemDirs: []string{"/nonexistent"},
	}).Discover(context.Background())

	notFound, ok := stderrors.AsType[*errors.BinaryNotFoundError](err)
	require.True(t, ok)
	require.Equal(t, []string{
		filepath.Join(dir, "fakefish-not-installed"),
		"$PATH",
		"/nonexistent/fakefish-not-installed",
	}, notFound.SearchedPaths)
}

func TestDiscoverer_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDiscoverer(nil).Discover(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestEnsureExecutable_Directory(t *testing.T) {
	require.Error(t, EnsureExecutable(t.TempDir()))
}
