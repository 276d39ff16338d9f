package main

import (
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/wagiedev/uci-service-go/internal/api"
	"github.com/wagiedev/uci-service-go/internal/client"
)

func queryCommand() *cli.Command {
	return &cli.Command{
		Name:      "query",
		Usage:     "ask a running service for the best move of a position",
		ArgsUsage: "<fen>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "url",
				Usage:   "Base URL of the service.",
				Value:   "http://localhost:5000",
				EnvVars: []string{"UCISVC_URL"},
			},
			&cli.IntFlag{
				Name:  "depth",
				Usage: "Search depth (5-25).",
			},
			&cli.Float64Flag{
				Name:  "time-limit",
				Usage: "Search time in seconds; overrides depth.",
			},
			&cli.BoolFlag{
				Name:  "health",
				Usage: "Run the health probe instead of an analysis.",
			},
			&cli.IntFlag{
				Name:  "retries",
				Usage: "Retries on connection errors and 5xx responses.",
				Value: 3,
			},
		},
		Action: query,
	}
}

func query(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	log, err := newLogger(c.App.ErrWriter, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	cl, err := client.New(c.String("url"),
		client.WithLogger(log),
		client.WithRetry(c.Int("retries"), 0, 0),
	)
	if err != nil {
		return err
	}

	var out any

	if c.Bool("health") {
		var health *api.HealthResponse

		health, err = cl.Health(c.Context)
		if health != nil {
			out = health
		}
	} else {
		if c.NArg() != 1 {
			return cli.Exit("query needs exactly one FEN argument (quote it)", 2)
		}

		var resp *api.BestMoveResponse

		resp, err = cl.BestMove(c.Context, api.AnalyzeRequest{
			FEN:       c.Args().First(),
			Depth:     c.Int("depth"),
			TimeLimit: c.Float64("time-limit"),
		})
		if resp != nil {
			out = resp

			if !resp.Success {
				err = cli.Exit(fmt.Sprintf("analysis failed: %s", resp.Error), 1)
			}
		}
	}

	if out != nil {
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")

		if encErr := enc.Encode(out); encErr != nil {
			return encErr
		}
	}

	return err
}
