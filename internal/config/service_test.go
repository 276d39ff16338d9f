package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wagiedev/uci-service-go/internal/errors"
)

func TestLoadService_Defaults(t *testing.T) {
	cfg, err := LoadService("")
	require.NoError(t, err)

	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "text", cfg.LogFormat)
	require.Empty(t, cfg.Engine.EngineOptions())
}

func TestLoadService_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ucisvc.toml")

	err := os.WriteFile(path, []byte(`
listen_addr = "127.0.0.1:9000"
log_level = "debug"

[engine]
path = "/opt/stockfish"
threads = 2
hash_mb = 64
handshake_timeout = "3s"
stop_on_timeout = true

[engine.options]
MultiPV = "1"
"Skill Level" = "20"
`), 0o600)
	require.NoError(t, err)

	cfg, err := LoadService(path)
	require.NoError(t, err)

	require.Equal(t, "127.0.0.1:9000", cfg.ListenAddr)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "/opt/stockfish", cfg.Engine.Path)
	require.True(t, cfg.Engine.StopOnTimeout)

	timeout, err := cfg.Engine.HandshakeTimeoutDuration()
	require.NoError(t, err)
	require.Equal(t, 3*time.Second, timeout)

	require.Equal(t, []EngineOption{
		{Name: "Threads", Value: "2"},
		{Name: "Hash", Value: "64"},
		{Name: "MultiPV", Value: "1"},
		{Name: "Skill Level", Value: "20"},
	}, cfg.Engine.EngineOptions())
}

func TestLoadService_MissingFile(t *testing.T) {
	_, err := LoadService(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)

	_, ok := stderrors.AsType[*errors.ConfigError](err)
	require.True(t, ok)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadService_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("listen_addr = "), 0o600))

	_, err := LoadService(path)
	require.Error(t, err)

	_, ok := stderrors.AsType[*errors.ConfigError](err)
	require.True(t, ok)
}

func TestApplyEnv(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		check   func(t *testing.T, cfg *ServiceConfig)
		wantErr bool
	}{
		{
			name: "PORT keeps host",
			env:  map[string]string{"PORT": "8080"},
			check: func(t *testing.T, cfg *ServiceConfig) {
				require.Equal(t, "0.0.0.0:8080", cfg.ListenAddr)
			},
		},
		{
			name: "explicit listen addr wins over PORT",
			env: map[string]string{
				"PORT":               "8080",
				"UCISVC_LISTEN_ADDR": "127.0.0.1:7000",
			},
			check: func(t *testing.T, cfg *ServiceConfig) {
				require.Equal(t, "127.0.0.1:7000", cfg.ListenAddr)
			},
		},
		{
			name: "engine settings",
			env: map[string]string{
				"UCISVC_ENGINE_PATH":     "/usr/games/stockfish",
				"UCISVC_THREADS":         "4",
				"UCISVC_HASH_MB":         "128",
				"UCISVC_STOP_ON_TIMEOUT": "true",
			},
			check: func(t *testing.T, cfg *ServiceConfig) {
				require.Equal(t, "/usr/games/stockfish", cfg.Engine.Path)
				require.Equal(t, 4, cfg.Engine.Threads)
				require.Equal(t, 128, cfg.Engine.HashMB)
				require.True(t, cfg.Engine.StopOnTimeout)
			},
		},
		{
			name:    "malformed integer",
			env:     map[string]string{"UCISVC_THREADS": "many"},
			wantErr: true,
		},
		{
			name:    "malformed bool",
			env:     map[string]string{"UCISVC_STOP_ON_TIMEOUT": "sometimes"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultServiceConfig()
			err := cfg.applyEnv(func(key string) (string, bool) {
				v, ok := tt.env[key]

				return v, ok
			})

			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestHandshakeTimeoutDuration_Invalid(t *testing.T) {
	_, err := EngineConfig{HandshakeTimeout: "ten seconds"}.HandshakeTimeoutDuration()
	require.Error(t, err)
}

func TestOptions_Defaults(t *testing.T) {
	var nilOpts *Options

	require.Equal(t, DefaultHandshakeTimeout, nilOpts.HandshakeTimeoutOrDefault())
	require.Equal(t, DefaultStopGrace, (&Options{}).StopGraceOrDefault())
	require.Equal(t, time.Second, (&Options{HandshakeTimeout: time.Second}).HandshakeTimeoutOrDefault())
}
