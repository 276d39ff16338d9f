package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	ucisvc "github.com/wagiedev/uci-service-go"
	"github.com/wagiedev/uci-service-go/internal/server"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP service",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:  "listen-addr",
				Usage: "The address for the HTTP server to listen on.",
			},
		}, engineFlags()...),
		Action: serve,
	}
}

func serve(c *cli.Context) error {
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

	srv := server.New(log, sup, server.WithVersion(ucisvc.Version))

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.ListenAndServe(ctx, cfg.ListenAddr)
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info("Shutting down", "cause", context.Cause(ctx))

		return nil
	})

	return g.Wait()
}
