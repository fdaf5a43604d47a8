package api

import (
	"net/http"

	"github.com/JaimeStill/brief/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain, runtime *Runtime) {
	groups := []routes.Group{
		domain.Sessions.Handler(runtime.MaxUploadSize).Routes(),
		domain.Runs.Handler().Routes(),
		newDocumentsHandler(runtime.Storage, runtime.Logger, runtime.MaxListSize).routes(),
		newGraphsHandler(runtime.Logger).routes(),
	}

	routes.Register(mux, groups...)

	for _, g := range groups {
		for _, p := range g.Patterns() {
			runtime.Logger.Debug("route registered", "pattern", p, "base", runtime.BasePath)
		}
	}
}
