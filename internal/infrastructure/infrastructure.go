// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, database, storage, tracing, and the
// pipeline engine) that domain systems require.
package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/JaimeStill/brief/internal/config"
	"github.com/JaimeStill/brief/internal/dispatch"
	"github.com/JaimeStill/brief/internal/extract"
	"github.com/JaimeStill/brief/internal/pipeline"
	"github.com/JaimeStill/brief/internal/summarize"
	"github.com/JaimeStill/brief/pkg/database"
	"github.com/JaimeStill/brief/pkg/lifecycle"
	"github.com/JaimeStill/brief/pkg/storage"
	"github.com/JaimeStill/brief/pkg/telemetry"
)

// Infrastructure holds the core systems required by all domain modules.
// It provides a single point of initialization for lifecycle coordination,
// logging, database access, file storage, tracing, and pipeline execution.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
	Telemetry telemetry.System
	Engine    *pipeline.Engine
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	tel, err := telemetry.New(context.Background(), &cfg.Telemetry, cfg.Version, logger)
	if err != nil {
		return nil, fmt.Errorf("telemetry init failed: %w", err)
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Storage:   store,
		Telemetry: tel,
		Engine:    NewEngine(&cfg.Pipeline, logger),
	}, nil
}

// NewEngine assembles the pipeline engine from the pipeline configuration.
// Dispatch is left unconfigured when no relay URL is set.
func NewEngine(cfg *config.PipelineConfig, logger *slog.Logger) *pipeline.Engine {
	client := &http.Client{Timeout: cfg.RequestTimeoutDuration()}

	extractor := extract.NewDefaultRegistry(logger, cfg.ExtractWorkers)
	summarizer := summarize.New(&cfg.Summarize, client, logger)

	var dispatcher pipeline.Dispatcher
	if cfg.Dispatch.Enabled() {
		dispatcher = dispatch.New(&cfg.Dispatch, client, logger)
	}

	return pipeline.New(extractor, summarizer, dispatcher, logger)
}

// Start registers all infrastructure systems with the lifecycle coordinator.
// Database, storage, and telemetry hooks are registered for startup and shutdown coordination.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	if err := i.Telemetry.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("telemetry start failed: %w", err)
	}
	return nil
}
