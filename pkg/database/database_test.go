package database_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/JaimeStill/brief/pkg/database"
	"github.com/JaimeStill/brief/pkg/lifecycle"
)

func unreachable() *database.Config {
	cfg := &database.Config{
		Host:        "127.0.0.1",
		Port:        1,
		Name:        "brief",
		User:        "brief",
		ConnTimeout: "200ms",
		ConnRetries: 1,
	}
	if err := cfg.Finalize(nil); err != nil {
		panic(err)
	}
	return cfg
}

func TestNewConfiguresPool(t *testing.T) {
	cfg := unreachable()
	cfg.MaxOpenConns = 42

	sys, err := database.New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer sys.Connection().Close()

	if got := sys.Connection().Stats().MaxOpenConnections; got != 42 {
		t.Errorf("MaxOpenConnections = %d, want 42", got)
	}
}

func TestPingUnreachable(t *testing.T) {
	sys, err := database.New(unreachable(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer sys.Connection().Close()

	if err := sys.Ping(context.Background()); !errors.Is(err, database.ErrNotReady) {
		t.Errorf("Ping() = %v, want ErrNotReady", err)
	}
}

func TestStartRegistersReadiness(t *testing.T) {
	sys, err := database.New(unreachable(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	lc := lifecycle.New()
	if err := sys.Start(lc); err != nil {
		t.Fatalf("Start: %v", err)
	}
	lc.WaitForStartup()

	report := lc.Check(context.Background())
	if report.Ready {
		t.Error("report ready with unreachable database")
	}
	if report.Checks["database"] == "ok" {
		t.Error("database check should fail")
	}

	if err := lc.Shutdown(2 * time.Second); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}
