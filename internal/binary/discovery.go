package binary

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/wagiedev/uci-service-go/internal/errors"
)

const (
	// DefaultName is the engine executable name searched for.
	DefaultName = "stockfish"

	// executableMode is applied to local engine copies.
	executableMode = 0o755
)

// Config holds configuration for engine discovery.
type Config struct {
	// EnginePath is an explicit path that skips the search.
	EnginePath string

	// Name is the executable name. Defaults to DefaultName.
	Name string

	// Dir is searched for a local copy first. Defaults to the working directory.
	Dir string

	// SystemDirs overrides the common installation directories.
	SystemDirs []string

	// Logger is an optional logger for discovery operations.
	// If nil, a no-op logger is used.
	Logger *slog.Logger
}

// Discoverer locates the engine binary.
type Discoverer interface {
	// Discover returns the absolute path of a runnable engine binary.
	Discover(ctx context.Context) (string, error)
}

type discoverer struct {
	cfg *Config
	log *slog.Logger
}

// Compile-time verification that discoverer implements Discoverer.
var _ Discoverer = (*discoverer)(nil)

// NewDiscoverer creates a new engine discoverer with the given configuration.
func NewDiscoverer(cfg *Config) Discoverer {
	if cfg == nil {
		cfg = &Config{}
	}

	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return &discoverer{
		cfg: cfg,
		log: log.With("component", "binary"),
	}
}

func (d *discoverer) name() string {
	if d.cfg.Name == "" {
		return DefaultName
	}

	return d.cfg.Name
}

func (d *discoverer) systemDirs() []string {
	if d.cfg.SystemDirs != nil {
		return d.cfg.SystemDirs
	}

	return []string{"/usr/local/bin", "/usr/bin", "/usr/games"}
}

// Discover locates the engine binary and ensures it is executable.
func (d *discoverer) Discover(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	d.log.Debug("Discovering engine binary", "name", d.name())

	path, err := d.find()
	if err != nil {
		d.log.Error("Failed to find engine binary", "error", err)

		return "", err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve engine path %s: %w", path, err)
	}

	d.log.Info("Found engine binary", "path", abs)

	return abs, nil
}

func (d *discoverer) find() (string, error) {
	// If explicit path provided, use it and only it
	if d.cfg.EnginePath != "" {
		d.log.Debug("Using explicit engine path", "path", d.cfg.EnginePath)

		if err := EnsureExecutable(d.cfg.EnginePath); err != nil {
			d.log.Debug("Explicit engine path unusable", "path", d.cfg.EnginePath, "error", err)

			return "", &errors.BinaryNotFoundError{SearchedPaths: []string{d.cfg.EnginePath}}
		}

		return d.cfg.EnginePath, nil
	}

	searchedPaths := make([]string, 0, 5)

	local := filepath.Join(d.cfg.Dir, d.name())
	if d.cfg.Dir == "" {
		local = "." + string(filepath.Separator) + d.name()
	}

	searchedPaths = append(searchedPaths, local)

	if err := EnsureExecutable(local); err == nil {
		d.log.Debug("Found local engine copy", "path", local)

		return local, nil
	}

	if path, err := exec.LookPath(d.name()); err == nil {
		d.log.Debug("Found engine in PATH", "path", path)

		return path, nil
	}

	searchedPaths = append(searchedPaths, "$PATH")

	for _, dir := range d.systemDirs() {
		path := filepath.Join(dir, d.name())
		searchedPaths = append(searchedPaths, path)

		if isExecutableFile(path) {
			d.log.Debug("Found engine at common path", "path", path)

			return path, nil
		}
	}

	d.log.Warn("Engine binary not found in any searched paths", "searched_paths", searchedPaths)

	return "", &errors.BinaryNotFoundError{SearchedPaths: searchedPaths}
}

// EnsureExecutable checks that path is a regular file and sets mode 0755 on it
// when any execute bit is missing.
func EnsureExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", path)
	}

	if info.Mode().Perm()&0o111 == 0o111 {
		return nil
	}

	if err := os.Chmod(path, executableMode); err != nil {
		return fmt.Errorf("make %s executable: %w", path, err)
	}

	return nil
}

func isExecutableFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	return info.Mode().IsRegular() && info.Mode().Perm()&0o111 != 0
}
