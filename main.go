package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "quotescrapper",
		Usage: "Extract quote summary and key statistics tables for a ticker",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML config file",
				EnvVars: []string{"QUOTE_CONFIG"},
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable development logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "fetch",
				Usage:     "Fetch and extract one ticker",
				ArgsUsage: "TICKER",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Output file (default out/<TICKER>.<format>, - for stdout only)"},
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "json", Usage: "Output format: json or yaml"},
					&cli.StringFlag{Name: "db", Usage: "Also store a snapshot in this SQLite database"},
					&cli.BoolFlag{Name: "browser", Usage: "Render pages with headless Chrome"},
				},
				Action: fetchAction,
			},
			{
				Name:  "serve",
				Usage: "Serve GET /ticker/{symbol} over HTTP",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "port", Aliases: []string{"p"}, Usage: "Listen port (default from config, 8000)"},
					&cli.BoolFlag{Name: "browser", Usage: "Render pages with headless Chrome"},
				},
				Action: serveAction,
			},
			{
				Name:      "history",
				Usage:     "List stored snapshots of a ticker, newest first",
				ArgsUsage: "TICKER",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "db", Usage: "SQLite database (default from config, quotes.db)"},
					&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 10, Usage: "Maximum snapshots to list"},
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "json", Usage: "Output format: json or yaml"},
				},
				Action: historyAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
