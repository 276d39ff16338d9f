package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/wagiedev/uci-service-go/internal/config"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		level, format string
		wantErr       bool
	}{
		{"info", "text", false},
		{"debug", "json", false},
		{"WARN", "", false},
		{"loud", "text", true},
		{"info", "xml", true},
	}

	for _, tt := range tests {
		t.Run(tt.level+"/"+tt.format, func(t *testing.T) {
			var buf bytes.Buffer

			log, err := newLogger(&buf, tt.level, tt.format)
			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			log.Error("hello")
			require.Contains(t, buf.String(), "hello")
		})
	}
}

func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer

	log, err := newLogger(&buf, "warn", "json")
	require.NoError(t, err)

	log.Info("hidden")
	log.Warn("shown", slog.Int("n", 1))

	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), `"msg":"shown"`)
}

// runWithConfig runs the serve command line with an action that captures the
// layered configuration instead of serving.
func runWithConfig(t *testing.T, args ...string) *config.ServiceConfig {
	t.Helper()

	var cfg *config.ServiceConfig

	cmd := serveCommand()
	cmd.Action = func(c *cli.Context) error {
		var err error

		cfg, err = loadConfig(c)

		return err
	}

	app := &cli.App{
		Name: "ucisvc",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config"},
			&cli.StringFlag{Name: "log-level"},
			&cli.StringFlag{Name: "log-format"},
		},
		Commands: []*cli.Command{cmd},
	}

	require.NoError(t, app.Run(append([]string{"ucisvc"}, args...)))
	require.NotNil(t, cfg)

	return cfg
}

func TestLoadConfig_Layers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ucisvc.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen_addr = "127.0.0.1:7000"
log_level = "debug"

[engine]
path = "/opt/stockfish"
threads = 2
hash_mb = 64
`), 0o600))

	t.Setenv("UCISVC_HASH_MB", "128")

	cfg := runWithConfig(t,
		"--config", path,
		"--log-format", "json",
		"serve",
		"--threads", "8",
		"--handshake-timeout", "3s",
		"--stop-on-timeout",
	)

	require.Equal(t, "127.0.0.1:7000", cfg.ListenAddr)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "json", cfg.LogFormat)
	require.Equal(t, "/opt/stockfish", cfg.Engine.Path)
	require.Equal(t, 8, cfg.Engine.Threads)
	require.Equal(t, 128, cfg.Engine.HashMB)
	require.True(t, cfg.Engine.StopOnTimeout)

	timeout, err := cfg.Engine.HandshakeTimeoutDuration()
	require.NoError(t, err)
	require.Equal(t, 3*time.Second, timeout)
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := runWithConfig(t, "serve")

	require.Equal(t, config.DefaultServiceConfig().ListenAddr, cfg.ListenAddr)
	require.Zero(t, cfg.Engine.Threads)
	require.False(t, cfg.Engine.StopOnTimeout)
}
