package stock

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"quotescrapper/finance"
	"quotescrapper/scraper"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidTicker is returned for an empty or malformed symbol.
var ErrInvalidTicker = errors.New("invalid ticker symbol")

var tickerPattern = regexp.MustCompile(`^[A-Z0-9.\-^=]{1,16}$`)

// Fetcher returns the HTML text of a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string, header http.Header) (string, error)
}

// TickerData is everything extracted for one symbol.
type TickerData struct {
	Ticker    string                   `json:"ticker" yaml:"ticker"`
	Summary   finance.SummaryRecord    `json:"summary" yaml:"summary"`
	Stats     finance.StatisticsRecord `json:"stats" yaml:"stats"`
	Valuation []finance.ValuationRow   `json:"valuation" yaml:"valuation"`
	FetchedAt time.Time                `json:"fetchedAt" yaml:"fetchedAt"`
}

// Client fetches and extracts ticker pages.
type Client struct {
	fetcher Fetcher
	baseURL string
	header  http.Header
	logger  *zap.Logger
}

// NewClient creates a client for the site at baseURL.
func NewClient(fetcher Fetcher, baseURL, userAgent string, logger *zap.Logger) *Client {
	return &Client{
		fetcher: fetcher,
		baseURL: strings.TrimRight(baseURL, "/"),
		header:  DefaultHeaders(userAgent),
		logger:  logger,
	}
}

// TickerURL is the quote summary page of ticker.
func TickerURL(baseURL, ticker string) string {
	return fmt.Sprintf("%s/quote/%s", baseURL, url.PathEscape(ticker))
}

// TickerStatsURL is the key-statistics page of ticker.
func TickerStatsURL(baseURL, ticker string) string {
	return fmt.Sprintf("%s/key-statistics?p=%s", TickerURL(baseURL, ticker), url.QueryEscape(ticker))
}

// DefaultHeaders is a browser-like header set; the site is more likely to
// serve the full page to it than to a bare client.
func DefaultHeaders(userAgent string) http.Header {
	h := http.Header{}
	h.Set("User-Agent", userAgent)
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	h.Set("Accept-Language", "en-US,en;q=0.5")
	h.Set("Accept-Encoding", scraper.AcceptEncoding)
	h.Set("Connection", "keep-alive")
	h.Set("Upgrade-Insecure-Requests", "1")
	h.Set("Sec-Fetch-Dest", "document")
	h.Set("Sec-Fetch-Mode", "navigate")
	h.Set("Sec-Fetch-Site", "none")
	h.Set("Sec-Fetch-User", "?1")
	h.Set("Pragma", "no-cache")
	h.Set("Cache-Control", "no-cache")
	return h
}

// NormalizeTicker trims and upper-cases a symbol and checks its characters.
func NormalizeTicker(ticker string) (string, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if !tickerPattern.MatchString(ticker) {
		return "", fmt.Errorf("%w: %q", ErrInvalidTicker, ticker)
	}
	return ticker, nil
}

// GetTickerData fetches the summary and statistics pages of ticker
// concurrently and extracts both. Any fetch or extraction error fails the
// whole call.
func (c *Client) GetTickerData(ctx context.Context, ticker string) (*TickerData, error) {
	ticker, err := NormalizeTicker(ticker)
	if err != nil {
		return nil, err
	}

	summaryURL := TickerURL(c.baseURL, ticker)
	statsURL := TickerStatsURL(c.baseURL, ticker)

	var summaryHTML, statsHTML string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summaryHTML, err = c.fetcher.Fetch(gctx, summaryURL, c.header.Clone())
		return err
	})
	g.Go(func() error {
		var err error
		statsHTML, err = c.fetcher.Fetch(gctx, statsURL, c.header.Clone())
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary, err := finance.ExtractSummary(summaryHTML)
	if err != nil {
		return nil, fmt.Errorf("summary page of %s: %w", ticker, err)
	}

	stats, valuation, err := finance.ExtractStatistics(statsHTML)
	if err != nil {
		return nil, fmt.Errorf("statistics page of %s: %w", ticker, err)
	}

	c.logger.Info("extracted ticker data",
		zap.String("ticker", ticker),
		zap.Int("summary", len(summary)),
		zap.Int("stats", len(stats)),
		zap.Int("valuationColumns", len(valuation)),
	)

	return &TickerData{
		Ticker:    ticker,
		Summary:   summary,
		Stats:     stats,
		Valuation: valuation,
		FetchedAt: time.Now().UTC(),
	}, nil
}
