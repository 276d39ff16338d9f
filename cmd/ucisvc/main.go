// Command ucisvc serves best-move analysis from a supervised UCI engine.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	ucisvc "github.com/wagiedev/uci-service-go"
)

func main() {
	app := &cli.App{
		Name:    "ucisvc",
		Usage:   "best-move analysis over HTTP, websocket and MCP, backed by a UCI engine",
		Version: ucisvc.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a TOML configuration file.",
				EnvVars: []string{"UCISVC_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "One of [debug,info,warn,error]. Overrides the config file.",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "One of [text,json]. Overrides the config file.",
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			mcpCommand(),
			queryCommand(),
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "ucisvc:", err)
		os.Exit(1)
	}
}
