package browser

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"go.uber.org/zap"
)

func TestExtraHeaders(t *testing.T) {
	header := http.Header{}
	header.Set("User-Agent", "Mozilla/5.0")
	header.Set("Accept-Encoding", "gzip, br")
	header.Set("Connection", "keep-alive")
	header.Set("Accept-Language", "en-US,en;q=0.5")
	header.Add("Cache-Control", "no-cache")
	header.Add("Cache-Control", "no-store")

	got := extraHeaders(header)

	if len(got) != 2 {
		t.Fatalf("extraHeaders = %v, want 2 entries", got)
	}
	if got["Accept-Language"] != "en-US,en;q=0.5" {
		t.Errorf("Accept-Language = %v", got["Accept-Language"])
	}
	if got["Cache-Control"] != "no-cache, no-store" {
		t.Errorf("Cache-Control = %v", got["Cache-Control"])
	}
}

func TestNewClampsSize(t *testing.T) {
	pool := New(0, "ua", zap.NewNop())
	if pool.size != 1 || cap(pool.contexts) != 1 {
		t.Errorf("size = %d, cap = %d, want 1", pool.size, cap(pool.contexts))
	}
}

func TestShutdownBeforeUse(t *testing.T) {
	pool := New(2, "ua", zap.NewNop())
	pool.Shutdown()
	pool.Shutdown()
}

func TestInitializeFailureClosesStartedTabs(t *testing.T) {
	pool := New(3, "ua", zap.NewNop())

	var started []context.Context
	pool.startTab = func(ctx context.Context) error {
		if len(started) == 1 {
			return errors.New("chrome crashed")
		}
		started = append(started, ctx)
		return nil
	}

	if err := pool.initialize(); err == nil {
		t.Fatal("expected an error when a tab fails to start")
	}
	if len(pool.contexts) != 0 || len(pool.cancelFuncs) != 0 {
		t.Errorf("contexts = %d, cancelFuncs = %d, want none left", len(pool.contexts), len(pool.cancelFuncs))
	}
	if started[0].Err() == nil {
		t.Error("first tab should be canceled")
	}
	if pool.allocCancel != nil {
		t.Error("allocator should be released")
	}

	// a later call starts over
	pool.startTab = func(ctx context.Context) error { return nil }
	if err := pool.initialize(); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if len(pool.contexts) != 3 {
		t.Errorf("contexts = %d, want 3", len(pool.contexts))
	}
	pool.Shutdown()
}

func TestInitializeAfterShutdown(t *testing.T) {
	pool := New(1, "ua", zap.NewNop())
	pool.startTab = func(ctx context.Context) error { return nil }
	pool.Shutdown()

	if err := pool.initialize(); !errors.Is(err, errPoolClosed) {
		t.Errorf("err = %v, want errPoolClosed", err)
	}
}
