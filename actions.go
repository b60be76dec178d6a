package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"quotescrapper/browser"
	"quotescrapper/cache"
	"quotescrapper/config"
	"quotescrapper/scraper"
	"quotescrapper/server"
	"quotescrapper/stock"
	"quotescrapper/store"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// setup loads the config named by the global flags and builds the logger.
func setup(c *cli.Context) (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cfg, nil, err
	}
	if c.Bool("debug") {
		cfg.Debug = true
	}

	logger, err := config.NewLogger(cfg.Debug)
	if err != nil {
		return cfg, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, logger, nil
}

// newClient returns a ticker client and a function releasing its fetcher.
func newClient(c *cli.Context, cfg config.Config, logger *zap.Logger) (*stock.Client, func()) {
	var fetcher stock.Fetcher = scraper.NewHTTPFetcher(cfg.FetchTimeout, logger)
	release := func() {}

	if c.Bool("browser") {
		pool := browser.New(cfg.BrowserPoolSize, cfg.UserAgent, logger)
		fetcher = pool
		release = pool.Shutdown
	}

	return stock.NewClient(fetcher, cfg.BaseURL, cfg.UserAgent, logger), release
}

func tickerArg(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", cli.Exit(fmt.Sprintf("usage: %s %s", c.Command.FullName(), c.Command.ArgsUsage), 2)
	}
	return stock.NormalizeTicker(c.Args().First())
}

func fetchAction(c *cli.Context) error {
	ticker, err := tickerArg(c)
	if err != nil {
		return err
	}

	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	defer logger.Sync()

	client, release := newClient(c, cfg, logger)
	defer release()

	ctx, cancel := context.WithTimeout(c.Context, cfg.FetchTimeout)
	defer cancel()

	data, err := client.GetTickerData(ctx, ticker)
	if err != nil {
		return err
	}

	format := c.String("format")
	encoded, err := store.Encode(data, format)
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))

	if out := c.String("out"); out != "-" {
		if out == "" {
			out = store.DefaultPath(cfg.OutDir, data.Ticker, format)
		}
		if err := store.SaveFile(out, data, format); err != nil {
			return err
		}
		logger.Info("data saved", zap.String("path", out))
	}

	if path := c.String("db"); path != "" {
		db, err := store.Open(path, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		if _, err := db.Save(c.Context, data); err != nil {
			return err
		}
	}

	return nil
}

func serveAction(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	defer logger.Sync()

	port := cfg.Port
	if c.IsSet("port") {
		port = c.String("port")
	}

	client, release := newClient(c, cfg, logger)
	defer release()

	var memo *cache.Cache
	if cfg.RedisAddr != "" {
		memo = cache.New(cfg.RedisAddr, logger)
		defer memo.Close()
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler := server.NewRouter(stock.NewHandler(client, memo, cfg.CacheTTL, logger), logger)
	return server.ListenAndServe(ctx, port, handler, logger)
}

func historyAction(c *cli.Context) error {
	ticker, err := tickerArg(c)
	if err != nil {
		return err
	}

	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	defer logger.Sync()

	path := cfg.DBPath
	if c.IsSet("db") {
		path = c.String("db")
	}
	db, err := store.Open(path, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	snapshots, err := db.History(c.Context, ticker, c.Int("limit"))
	if err != nil {
		return err
	}
	if len(snapshots) == 0 {
		return cli.Exit(fmt.Sprintf("no snapshots stored for %s", ticker), 1)
	}

	encoded, err := store.Encode(snapshots, c.String("format"))
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}
