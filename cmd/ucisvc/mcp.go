package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	ucisvc "github.com/wagiedev/uci-service-go"
	"github.com/wagiedev/uci-service-go/internal/mcp"
)

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:   "mcp",
		Usage:  "serve the analysis tools over MCP on stdin/stdout",
		Flags:  engineFlags(),
		Action: serveMCP,
	}
}

// serveMCP owns stdout for the protocol; logs go to stderr.
func serveMCP(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	log, err := newLogger(c.App.ErrWriter, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sup, err := newSupervisor(ctx, log, cfg)
	if err != nil {
		return err
	}

	defer func() {
		if err := sup.Close(); err != nil {
			log.Warn("Failed to close supervisor", "error", err)
		}
	}()

	startEngine(ctx, log, sup)

	return mcp.ServeStdio(ctx, log, mcp.EngineTools(sup, ucisvc.Version))
}
