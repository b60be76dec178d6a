package stock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"quotescrapper/cache"
	"quotescrapper/finance"
	"quotescrapper/scraper"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Handler serves ticker data over HTTP, memoizing results for ttl.
type Handler struct {
	client *Client
	cache  *cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewHandler creates a handler. c may be nil to disable caching.
func NewHandler(client *Client, c *cache.Cache, ttl time.Duration, logger *zap.Logger) *Handler {
	return &Handler{
		client: client,
		cache:  c,
		ttl:    ttl,
		logger: logger,
	}
}

// GetTickerDataHandler handles GET /ticker/{symbol}.
func (h *Handler) GetTickerDataHandler(w http.ResponseWriter, r *http.Request) {
	ticker, err := NormalizeTicker(mux.Vars(r)["symbol"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	cacheKey := fmt.Sprintf("ticker-data:%s", ticker)
	data, err := cache.Memoize(r.Context(), h.cache, cacheKey, h.ttl, func() (*TickerData, error) {
		return h.client.GetTickerData(r.Context(), ticker)
	})
	if err != nil {
		status := statusFor(err)
		h.logger.Warn("ticker data failed",
			zap.String("ticker", ticker),
			zap.Int("status", status),
			zap.Error(err),
		)
		writeError(w, status, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

// statusFor maps extraction and fetch failures to a response status.
func statusFor(err error) int {
	var fetchErr *scraper.FetchError
	var missing *finance.MissingSectionError
	var noLabel *finance.LabelMissingError

	switch {
	case errors.Is(err, ErrInvalidTicker):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &fetchErr):
		if fetchErr.StatusCode == http.StatusNotFound {
			return http.StatusNotFound
		}
		return http.StatusBadGateway
	case errors.As(err, &missing), errors.As(err, &noLabel):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
