package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/wagiedev/uci-service-go/internal/binary"
	"github.com/wagiedev/uci-service-go/internal/config"
	"github.com/wagiedev/uci-service-go/internal/supervisor"
)

// engineFlags configure the supervised engine. They override the config file.
func engineFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "engine-path",
			Usage: "Engine executable. If unset, stockfish is searched for.",
		},
		&cli.IntFlag{
			Name:  "threads",
			Usage: "Engine Threads option.",
		},
		&cli.IntFlag{
			Name:  "hash",
			Usage: "Engine Hash option in megabytes.",
		},
		&cli.DurationFlag{
			Name:  "handshake-timeout",
			Usage: "Bound on each handshake acknowledgement.",
		},
		&cli.BoolFlag{
			Name:  "stop-on-timeout",
			Usage: "Send stop when a search overruns its deadline.",
		},
	}
}

// loadConfig layers the config file, the environment and the flags.
func loadConfig(c *cli.Context) (*config.ServiceConfig, error) {
	cfg, err := config.LoadService(c.String("config"))
	if err != nil {
		return nil, err
	}

	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}

	if c.IsSet("log-format") {
		cfg.LogFormat = c.String("log-format")
	}

	if c.IsSet("listen-addr") {
		cfg.ListenAddr = c.String("listen-addr")
	}

	if c.IsSet("engine-path") {
		cfg.Engine.Path = c.String("engine-path")
	}

	if c.IsSet("threads") {
		cfg.Engine.Threads = c.Int("threads")
	}

	if c.IsSet("hash") {
		cfg.Engine.HashMB = c.Int("hash")
	}

	if c.IsSet("handshake-timeout") {
		cfg.Engine.HandshakeTimeout = c.Duration("handshake-timeout").String()
	}

	if c.IsSet("stop-on-timeout") {
		cfg.Engine.StopOnTimeout = c.Bool("stop-on-timeout")
	}

	return cfg, nil
}

// newSupervisor locates the engine and builds an unstarted supervisor.
func newSupervisor(ctx context.Context, log *slog.Logger, cfg *config.ServiceConfig) (*supervisor.Supervisor, error) {
	handshakeTimeout, err := cfg.Engine.HandshakeTimeoutDuration()
	if err != nil {
		return nil, err
	}

	path, err := binary.NewDiscoverer(&binary.Config{
		EnginePath: cfg.Engine.Path,
		Logger:     log,
	}).Discover(ctx)
	if err != nil {
		return nil, fmt.Errorf("locate engine: %w", err)
	}

	return supervisor.New(&config.Options{
		Logger:           log,
		EnginePath:       path,
		HandshakeTimeout: handshakeTimeout,
		EngineOptions:    cfg.Engine.EngineOptions(),
		StopOnTimeout:    cfg.Engine.StopOnTimeout,
		Stderr: func(line string) {
			log.Debug("Engine stderr", "line", line)
		},
	}), nil
}

// startEngine starts sup. A failed start is logged, not returned: the
// supervisor stays in the failed state and POST /engine/restart can recover.
func startEngine(ctx context.Context, log *slog.Logger, sup *supervisor.Supervisor) {
	start := time.Now()

	if err := sup.Start(ctx); err != nil {
		log.Error("Engine failed to start; serving in unavailable state", "error", err)

		return
	}

	stats := sup.Stats()
	log.Info("Engine started", "engine", stats.EngineName, "path", stats.EnginePath, "duration", time.Since(start))
}
