// Package browser fetches pages through a pool of headless Chrome tabs, for
// pages that only render their tables after running scripts.
package browser

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"quotescrapper/scraper"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

var errPoolClosed = errors.New("browser pool is shut down")

// Pool manages a fixed number of browser tabs for reuse
type Pool struct {
	contexts    chan context.Context
	cancelFuncs map[context.Context]context.CancelFunc
	size        int
	userAgent   string
	settle      time.Duration
	logger      *zap.Logger

	// startTab readies a freshly created tab.
	startTab func(ctx context.Context) error

	mu          sync.Mutex
	ready       bool
	closed      bool
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

func startBlankTab(ctx context.Context) error {
	return chromedp.Run(ctx, chromedp.Navigate("about:blank"))
}

// New creates a pool of size tabs. Chrome is started on first use.
func New(size int, userAgent string, logger *zap.Logger) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{
		contexts:    make(chan context.Context, size),
		cancelFuncs: make(map[context.Context]context.CancelFunc),
		size:        size,
		userAgent:   userAgent,
		settle:      time.Second,
		logger:      logger,
		startTab:    startBlankTab,
	}
}

// initialize starts the browser and its tabs on first use. A failed start
// closes whatever was opened, so the next call tries again.
func (pool *Pool) initialize() error {
	pool.mu.Lock()
	defer pool.mu.Unlock()

	if pool.closed {
		return errPoolClosed
	}
	if pool.ready {
		return nil
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(pool.userAgent),
	)
	pool.allocCtx, pool.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)

	for i := 0; i < pool.size; i++ {
		ctx, cancel := chromedp.NewContext(pool.allocCtx, chromedp.WithLogf(func(format string, args ...interface{}) {
			pool.logger.Debug(fmt.Sprintf(format, args...))
		}))

		// Start the tab now so the first fetch does not pay for it
		if err := pool.startTab(ctx); err != nil {
			cancel()
			pool.teardown()
			pool.logger.Error("browser start failed", zap.Int("tab", i), zap.Error(err))
			return fmt.Errorf("failed to start browser: %w", err)
		}

		pool.cancelFuncs[ctx] = cancel
		pool.contexts <- ctx
	}

	pool.ready = true
	pool.logger.Info("browser pool initialized", zap.Int("size", pool.size))
	return nil
}

// teardown closes every tab and the browser. pool.mu must be held.
func (pool *Pool) teardown() {
	for ctx, cancel := range pool.cancelFuncs {
		cancel()
		delete(pool.cancelFuncs, ctx)
	}
	if pool.allocCancel != nil {
		pool.allocCancel()
		pool.allocCancel = nil
	}
	for len(pool.contexts) > 0 {
		<-pool.contexts
	}
	pool.ready = false
}

// acquire waits for a free tab and returns it with a release function that
// resets the tab and puts it back.
func (pool *Pool) acquire(ctx context.Context) (context.Context, func(), error) {
	if err := pool.initialize(); err != nil {
		return nil, nil, err
	}

	select {
	case tab := <-pool.contexts:
		release := func() {
			resetCtx, cancel := context.WithTimeout(tab, 3*time.Second)
			defer cancel()

			// Navigate to blank page to clear state and reduce memory
			_ = chromedp.Run(resetCtx,
				network.ClearBrowserCookies(),
				chromedp.Navigate("about:blank"),
			)
			pool.contexts <- tab
		}
		return tab, release, nil
	case <-ctx.Done():
		return nil, nil, fmt.Errorf("timeout getting browser context from pool: %w", ctx.Err())
	}
}

// Fetch renders url in a pooled tab and returns the page's outer HTML. The
// User-Agent is fixed by the pool; other headers are sent as extra headers.
func (pool *Pool) Fetch(ctx context.Context, url string, header http.Header) (string, error) {
	tab, release, err := pool.acquire(ctx)
	if err != nil {
		return "", &scraper.FetchError{URL: url, Err: err}
	}
	defer release()

	runCtx, cancel := context.WithCancel(tab)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	pool.logger.Info("fetching url", zap.String("url", url), zap.String("via", "browser"))

	var htmlContent string
	err = chromedp.Run(runCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(extraHeaders(header)),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(pool.settle),
		chromedp.OuterHTML("html", &htmlContent, chromedp.ByQuery),
	)
	if err != nil {
		return "", &scraper.FetchError{URL: url, Err: err}
	}

	return htmlContent, nil
}

// extraHeaders drops the headers the browser manages itself.
func extraHeaders(header http.Header) network.Headers {
	out := network.Headers{}
	for key, values := range header {
		switch http.CanonicalHeaderKey(key) {
		case "User-Agent", "Accept-Encoding", "Connection":
			continue
		}
		out[key] = strings.Join(values, ", ")
	}
	return out
}

// Shutdown closes all browser tabs and the browser process. The pool cannot
// be used afterwards.
func (pool *Pool) Shutdown() {
	pool.mu.Lock()
	defer pool.mu.Unlock()

	pool.closed = true
	pool.teardown()
	pool.logger.Info("browser pool shut down")
}
