// Package api assembles the API module: domain systems, routes, and the
// middleware every API request passes through.
package api

import (
	"net/http"

	"github.com/JaimeStill/brief/internal/config"
	"github.com/JaimeStill/brief/internal/infrastructure"
	"github.com/JaimeStill/brief/internal/metrics"
	"github.com/JaimeStill/brief/pkg/middleware"
	"github.com/JaimeStill/brief/pkg/module"
)

// NewModule builds the API module mounted at cfg.API.BasePath. The sessions
// system registers its shutdown hook before the module is returned.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	if err := domain.Sessions.Start(runtime.Lifecycle); err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	registerRoutes(mux, domain, runtime)

	m := module.New(runtime.BasePath, mux)
	m.Use(middleware.Observe(observe))
	m.Use(middleware.Logger(runtime.Logger))
	m.Use(middleware.CORS(&cfg.API.CORS))
	return m, nil
}

func observe(o middleware.Observation) {
	metrics.ObserveHTTP(o.Method, o.Pattern, o.Status, o.Duration)
}
