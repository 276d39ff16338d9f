package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/wagiedev/uci-service-go/internal/errors"
)

// EnvPrefix prefixes every environment variable read by LoadService.
const EnvPrefix = "UCISVC_"

// ServiceConfig is the configuration of the HTTP service binary.
//
// Values are layered: defaults, then the optional TOML file, then environment
// variables. Command-line flags are applied on top by the caller.
type ServiceConfig struct {
	ListenAddr string `toml:"listen_addr"`
	LogLevel   string `toml:"log_level"`
	LogFormat  string `toml:"log_format"`

	Engine EngineConfig `toml:"engine"`
}

// EngineConfig is the [engine] section of the service configuration.
type EngineConfig struct {
	// Path is an explicit engine binary path. Empty means search.
	Path string `toml:"path"`

	Threads int `toml:"threads"`
	HashMB  int `toml:"hash_mb"`

	// HandshakeTimeout is a Go duration string, e.g. "10s".
	HandshakeTimeout string `toml:"handshake_timeout"`

	StopOnTimeout bool `toml:"stop_on_timeout"`

	// Options are extra setoption name/value pairs.
	Options map[string]string `toml:"options"`
}

// DefaultServiceConfig returns the configuration used when nothing is set.
func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		ListenAddr: "0.0.0.0:5000",
		LogLevel:   "info",
		LogFormat:  "text",
	}
}

// LoadService loads the service configuration.
//
// An empty path skips the file layer. A non-empty path that cannot be read or
// parsed is an error.
func LoadService(path string) (*ServiceConfig, error) {
	cfg := DefaultServiceConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &errors.ConfigError{Path: path, Err: err}
		}

		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, &errors.ConfigError{Path: path, Err: err}
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, &errors.ConfigError{Path: "environment", Err: err}
	}

	return cfg, nil
}

// applyEnv overlays environment variables. PORT is honoured for hosting
// platforms that inject it.
func (c *ServiceConfig) applyEnv(lookup func(string) (string, bool)) error {
	if port, ok := lookup("PORT"); ok && port != "" {
		host := "0.0.0.0"
		if i := strings.LastIndex(c.ListenAddr, ":"); i >= 0 {
			host = c.ListenAddr[:i]
		}

		c.ListenAddr = host + ":" + port
	}

	if v, ok := lookup(EnvPrefix + "LISTEN_ADDR"); ok {
		c.ListenAddr = v
	}

	if v, ok := lookup(EnvPrefix + "LOG_LEVEL"); ok {
		c.LogLevel = v
	}

	if v, ok := lookup(EnvPrefix + "LOG_FORMAT"); ok {
		c.LogFormat = v
	}

	if v, ok := lookup(EnvPrefix + "ENGINE_PATH"); ok {
		c.Engine.Path = v
	}

	if v, ok := lookup(EnvPrefix + "HANDSHAKE_TIMEOUT"); ok {
		c.Engine.HandshakeTimeout = v
	}

	for name, dst := range map[string]*int{
		"THREADS": &c.Engine.Threads,
		"HASH_MB": &c.Engine.HashMB,
	} {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			continue
		}

		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}

		*dst = n
	}

	if v, ok := lookup(EnvPrefix + "STOP_ON_TIMEOUT"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sSTOP_ON_TIMEOUT: %w", EnvPrefix, err)
		}

		c.Engine.StopOnTimeout = b
	}

	return nil
}

// HandshakeTimeoutDuration parses the handshake timeout, returning zero when unset.
func (e EngineConfig) HandshakeTimeoutDuration() (time.Duration, error) {
	if e.HandshakeTimeout == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(e.HandshakeTimeout)
	if err != nil {
		return 0, fmt.Errorf("parse handshake_timeout: %w", err)
	}

	return d, nil
}

// EngineOptions returns the setoption commands implied by the section:
// Threads, then Hash, then the free-form options sorted by name.
func (e EngineConfig) EngineOptions() []EngineOption {
	opts := make([]EngineOption, 0, len(e.Options)+2)

	if e.Threads > 0 {
		opts = append(opts, EngineOption{Name: "Threads", Value: strconv.Itoa(e.Threads)})
	}

	if e.HashMB > 0 {
		opts = append(opts, EngineOption{Name: "Hash", Value: strconv.Itoa(e.HashMB)})
	}

	names := make([]string, 0, len(e.Options))
	for name := range e.Options {
		names = append(names, name)
	}

	slices.Sort(names)

	for _, name := range names {
		opts = append(opts, EngineOption{Name: name, Value: e.Options[name]})
	}

	return opts
}
