package main

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JaimeStill/brief/internal/api"
	"github.com/JaimeStill/brief/internal/config"
	"github.com/JaimeStill/brief/internal/infrastructure"
	"github.com/JaimeStill/brief/pkg/handlers"
	"github.com/JaimeStill/brief/pkg/module"
)

const readinessTimeout = 3 * time.Second

// Modules holds the mounted application modules.
type Modules struct {
	API *module.Module
}

// NewModules builds every module from the shared infrastructure.
func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}
	return &Modules{API: apiModule}, nil
}

// Mount attaches every module to router.
func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
}

// buildRouter serves the probes and the Prometheus scrape endpoint outside
// any module so they bypass API middleware.
func buildRouter(infra *infrastructure.Infrastructure) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		report := infra.Lifecycle.Check(ctx)
		status := http.StatusOK
		if !report.Ready {
			status = http.StatusServiceUnavailable
		}
		handlers.RespondJSON(w, status, report)
	})

	router.HandleNative("GET /metrics", promhttp.Handler().ServeHTTP)

	return router
}
