package lifecycle_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JaimeStill/brief/pkg/lifecycle"
)

func TestStartup(t *testing.T) {
	lc := lifecycle.New()

	var ran atomic.Int32
	for range 4 {
		lc.OnStartup(func() { ran.Add(1) })
	}

	if lc.Ready() {
		t.Error("ready before WaitForStartup")
	}

	lc.WaitForStartup()

	if !lc.Ready() {
		t.Error("not ready after WaitForStartup")
	}
	if got := ran.Load(); got != 4 {
		t.Errorf("startup hooks ran %d times, want 4", got)
	}
}

func TestShutdown(t *testing.T) {
	t.Run("hooks observe cancellation", func(t *testing.T) {
		lc := lifecycle.New()

		var closed atomic.Bool
		lc.OnShutdown(func() {
			<-lc.Context().Done()
			closed.Store(true)
		})

		if err := lc.Shutdown(time.Second); err != nil {
			t.Fatalf("Shutdown: %v", err)
		}
		if !closed.Load() {
			t.Error("shutdown hook did not run")
		}
		if lc.Context().Err() == nil {
			t.Error("context not cancelled")
		}
	})

	t.Run("slow hook times out", func(t *testing.T) {
		lc := lifecycle.New()
		release := make(chan struct{})
		defer close(release)

		lc.OnShutdown(func() {
			<-lc.Context().Done()
			<-release
		})

		if err := lc.Shutdown(20 * time.Millisecond); err == nil {
			t.Error("expected timeout error")
		}
	})
}

func TestCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("not ready before startup", func(t *testing.T) {
		lc := lifecycle.New()
		lc.AddCheck("database", func(context.Context) error { return nil })

		report := lc.Check(ctx)
		if report.Ready {
			t.Error("report ready before startup finished")
		}
		if report.Checks["database"] != "ok" {
			t.Errorf("database = %q, want ok", report.Checks["database"])
		}
	})

	t.Run("all probes pass", func(t *testing.T) {
		lc := lifecycle.New()
		lc.AddCheck("database", func(context.Context) error { return nil })
		lc.AddCheck("storage", func(context.Context) error { return nil })
		lc.WaitForStartup()

		report := lc.Check(ctx)
		if !report.Ready || len(report.Checks) != 2 {
			t.Errorf("report = %+v", report)
		}
	})

	t.Run("failing probe", func(t *testing.T) {
		lc := lifecycle.New()
		lc.AddCheck("database", func(context.Context) error { return errors.New("connection refused") })
		lc.AddCheck("storage", func(context.Context) error { return nil })
		lc.WaitForStartup()

		report := lc.Check(ctx)
		if report.Ready {
			t.Error("report ready with failing probe")
		}
		if got := report.Checks["database"]; got != "connection refused" {
			t.Errorf("database = %q", got)
		}
		if got := report.Checks["storage"]; got != "ok" {
			t.Errorf("storage = %q", got)
		}
	})
}
