// Package scraper retrieves raw page HTML over HTTP.
package scraper

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// HTTPFetcher downloads pages with a plain HTTP client.
type HTTPFetcher struct {
	client *http.Client
	logger *zap.Logger
}

// NewHTTPFetcher creates a fetcher whose requests give up after timeout.
func NewHTTPFetcher(timeout time.Duration, logger *zap.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Fetch GETs url with the given headers and returns the decoded body text.
// Transport failures and non-2xx answers are reported as *FetchError.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string, header http.Header) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	f.logger.Info("fetching url", zap.String("url", url))
	start := time.Now()

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Warn("fetch failed", zap.String("url", url), zap.Error(err))
		return "", &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		f.logger.Warn("fetch rejected",
			zap.String("url", url),
			zap.Int("status", resp.StatusCode),
		)
		return "", &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := readBody(resp)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}

	f.logger.Debug("fetched url",
		zap.String("url", url),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return string(body), nil
}
