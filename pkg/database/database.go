// Package database opens the PostgreSQL pool and ties it to the process lifecycle.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/JaimeStill/brief/pkg/lifecycle"
)

// ErrNotReady reports that the database could not be reached.
var ErrNotReady = errors.New("database not ready")

// System owns the connection pool.
type System interface {
	Connection() *sql.DB
	// Ping verifies connectivity within the configured connection timeout.
	Ping(ctx context.Context) error
	Start(lc *lifecycle.Coordinator) error
}

type database struct {
	conn        *sql.DB
	logger      *slog.Logger
	connTimeout time.Duration
	retries     uint
}

// New configures the pool. No connection is made until Start.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	db, err := sql.Open("pgx", cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	return &database{
		conn:        db,
		logger:      logger.With("system", "database"),
		connTimeout: cfg.ConnTimeoutDuration(),
		retries:     uint(max(cfg.ConnRetries, 1)),
	}, nil
}

func (d *database) Connection() *sql.DB {
	return d.conn
}

func (d *database) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, d.connTimeout)
	defer cancel()

	if err := d.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrNotReady, err)
	}
	return nil
}

// Start pings with exponential backoff during startup, registers the
// "database" readiness check, and closes the pool on shutdown.
func (d *database) Start(lc *lifecycle.Coordinator) error {
	lc.OnStartup(func() {
		attempt := 0
		_, err := backoff.Retry(lc.Context(), func() (struct{}, error) {
			attempt++
			err := d.Ping(lc.Context())
			if err != nil {
				d.logger.Warn("database ping failed", "attempt", attempt, "error", err)
			}
			return struct{}{}, err
		},
			backoff.WithBackOff(backoff.NewExponentialBackOff()),
			backoff.WithMaxTries(d.retries),
		)
		if err != nil {
			d.logger.Error("database unreachable", "attempts", attempt, "error", err)
			return
		}
		d.logger.Info("database connection established")
	})

	lc.AddCheck("database", d.Ping)

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		if err := d.conn.Close(); err != nil {
			d.logger.Error("database close failed", "error", err)
			return
		}
		d.logger.Info("database connection closed")
	})

	return nil
}
