package stock

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"quotescrapper/finance"
	"quotescrapper/scraper"

	"go.uber.org/zap"
)

const testBase = "https://finance.example.com"

// fakeFetcher serves canned pages by URL and records the requests it saw.
type fakeFetcher struct {
	mu      sync.Mutex
	pages   map[string]string
	errs    map[string]error
	headers map[string]http.Header
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string, header http.Header) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.headers == nil {
		f.headers = make(map[string]http.Header)
	}
	f.headers[url] = header

	if err, ok := f.errs[url]; ok {
		return "", err
	}
	page, ok := f.pages[url]
	if !ok {
		return "", &scraper.FetchError{URL: url, StatusCode: http.StatusNotFound}
	}
	return page, nil
}

func readFixture(t *testing.T, name string) string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join("..", "finance", "testdata", name))
	if err != nil {
		t.Fatalf("failed to read fixture %s: %v", name, err)
	}
	return string(data)
}

func fixtureFetcher(t *testing.T, ticker string) *fakeFetcher {
	t.Helper()

	return &fakeFetcher{
		pages: map[string]string{
			TickerURL(testBase, ticker):      readFixture(t, "summary.html"),
			TickerStatsURL(testBase, ticker): readFixture(t, "statistics.html"),
		},
	}
}

func TestTickerURLs(t *testing.T) {
	tests := []struct {
		ticker    string
		summary   string
		statistic string
	}{
		{ticker: "GOOG", summary: testBase + "/quote/GOOG", statistic: testBase + "/quote/GOOG/key-statistics?p=GOOG"},
		{ticker: "BRK-B", summary: testBase + "/quote/BRK-B", statistic: testBase + "/quote/BRK-B/key-statistics?p=BRK-B"},
		{ticker: "EURUSD=X", summary: testBase + "/quote/EURUSD=X", statistic: testBase + "/quote/EURUSD=X/key-statistics?p=EURUSD%3DX"},
	}

	for _, tt := range tests {
		if got := TickerURL(testBase, tt.ticker); got != tt.summary {
			t.Errorf("TickerURL(%q) = %q, want %q", tt.ticker, got, tt.summary)
		}
		if got := TickerStatsURL(testBase, tt.ticker); got != tt.statistic {
			t.Errorf("TickerStatsURL(%q) = %q, want %q", tt.ticker, got, tt.statistic)
		}
	}
}

func TestNormalizeTicker(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "grwg", want: "GRWG"},
		{in: "  goog ", want: "GOOG"},
		{in: "^GSPC", want: "^GSPC"},
		{in: "", wantErr: true},
		{in: "GO OG", wantErr: true},
		{in: "../etc", wantErr: true},
	}

	for _, tt := range tests {
		got, err := NormalizeTicker(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidTicker) {
				t.Errorf("NormalizeTicker(%q) err = %v, want ErrInvalidTicker", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("NormalizeTicker(%q) = %q, %v, want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestGetTickerData(t *testing.T) {
	fetcher := fixtureFetcher(t, "GRWG")
	client := NewClient(fetcher, testBase+"/", "Mozilla/5.0 test", zap.NewNop())

	data, err := client.GetTickerData(context.Background(), "grwg")
	if err != nil {
		t.Fatalf("GetTickerData: %v", err)
	}

	if data.Ticker != "GRWG" {
		t.Errorf("Ticker = %q", data.Ticker)
	}
	if got := data.Summary["Previous Close"]; got != finance.NumberValue(136.2) {
		t.Errorf("Previous Close = %+v, want 136.2", got)
	}
	if got := data.Summary["Ask"]; got != finance.TextValue("137.57 x 800") {
		t.Errorf("Ask = %+v", got)
	}
	for _, label := range []string{"EPS (TTM)", "Market Cap"} {
		if _, ok := data.Summary[label]; !ok {
			t.Errorf("summary missing %q", label)
		}
	}
	for _, label := range []string{"Fiscal Year Ends", "Most Recent Quarter (mrq)", "Profit Margin"} {
		if _, ok := data.Stats[label]; !ok {
			t.Errorf("stats missing %q", label)
		}
	}
	if len(data.Valuation) != 6 || data.Valuation[0].Quarter != "Current" {
		t.Errorf("valuation = %+v", data.Valuation)
	}
	if data.FetchedAt.IsZero() {
		t.Error("FetchedAt not set")
	}

	for url, header := range fetcher.headers {
		if header.Get("User-Agent") != "Mozilla/5.0 test" {
			t.Errorf("%s: User-Agent = %q", url, header.Get("User-Agent"))
		}
		if header.Get("Accept-Encoding") != scraper.AcceptEncoding {
			t.Errorf("%s: Accept-Encoding = %q", url, header.Get("Accept-Encoding"))
		}
	}
	if len(fetcher.headers) != 2 {
		t.Errorf("fetched %d urls, want 2", len(fetcher.headers))
	}
}

func TestGetTickerDataFetchError(t *testing.T) {
	fetcher := fixtureFetcher(t, "GOOG")
	statsURL := TickerStatsURL(testBase, "GOOG")
	fetcher.errs = map[string]error{
		statsURL: &scraper.FetchError{URL: statsURL, StatusCode: http.StatusServiceUnavailable},
	}
	client := NewClient(fetcher, testBase, "ua", zap.NewNop())

	_, err := client.GetTickerData(context.Background(), "GOOG")
	var fetchErr *scraper.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("err = %v, want *scraper.FetchError", err)
	}
	if fetchErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d", fetchErr.StatusCode)
	}
}

func TestGetTickerDataExtractionError(t *testing.T) {
	fetcher := &fakeFetcher{
		pages: map[string]string{
			TickerURL(testBase, "GOOG"):      readFixture(t, "summary.html"),
			TickerStatsURL(testBase, "GOOG"): readFixture(t, "summary.html"),
		},
	}
	client := NewClient(fetcher, testBase, "ua", zap.NewNop())

	data, err := client.GetTickerData(context.Background(), "GOOG")
	var missing *finance.MissingSectionError
	if !errors.As(err, &missing) {
		t.Fatalf("err = %v, want *finance.MissingSectionError", err)
	}
	if data != nil {
		t.Error("no partial data expected")
	}
}

func TestGetTickerDataInvalidTicker(t *testing.T) {
	fetcher := &fakeFetcher{}
	client := NewClient(fetcher, testBase, "ua", zap.NewNop())

	if _, err := client.GetTickerData(context.Background(), " "); !errors.Is(err, ErrInvalidTicker) {
		t.Errorf("err = %v, want ErrInvalidTicker", err)
	}
	if len(fetcher.headers) != 0 {
		t.Error("nothing should be fetched for an invalid ticker")
	}
}
