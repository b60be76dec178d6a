// Package server wires the ticker handler into an HTTP router.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"quotescrapper/stock"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

// NewRouter returns the routes with logging, recovery, compression and CORS
// applied.
func NewRouter(h *stock.Handler, logger *zap.Logger) http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/ticker/{symbol}", h.GetTickerDataHandler).Methods(http.MethodGet)
	router.HandleFunc("/healthz", healthz).Methods(http.MethodGet)
	router.Use(requestLogger(logger))

	var handler http.Handler = router
	handler = handlers.CompressHandler(handler)
	handler = handlers.CORS(
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodOptions}),
		handlers.AllowedOrigins([]string{"*"}),
	)(handler)
	return recoverWith(logger)(handler)
}

// recoverWith turns handler panics into 500 responses and logs them.
func recoverWith(logger *zap.Logger) func(http.Handler) http.Handler {
	return handlers.RecoveryHandler(handlers.RecoveryLogger(zapRecoveryLogger{logger}))
}

func healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// statusRecorder captures the status written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

// requestLogger tags every request with an id and logs it once served.
func requestLogger(logger *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(requestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, id)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, r)

			logger.Info("request",
				zap.String("id", id),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("elapsed", time.Since(start)),
			)
		})
	}
}

type zapRecoveryLogger struct {
	logger *zap.Logger
}

func (l zapRecoveryLogger) Println(v ...interface{}) {
	l.logger.Error("recovered from panic", zap.Any("panic", v))
}

// ListenAndServe serves handler on port until ctx is canceled, then shuts
// down gracefully.
func ListenAndServe(ctx context.Context, port string, handler http.Handler, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server is running", zap.String("port", port), zap.Int("pid", os.Getpid()))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("shutting down server")
		return srv.Shutdown(shutdownCtx)
	}
}
