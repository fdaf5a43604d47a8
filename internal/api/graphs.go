package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/brief/internal/pipeline"
	"github.com/JaimeStill/brief/pkg/graph"
	"github.com/JaimeStill/brief/pkg/handlers"
	"github.com/JaimeStill/brief/pkg/routes"
)

type graphsHandler struct {
	logger *slog.Logger
}

func newGraphsHandler(logger *slog.Logger) *graphsHandler {
	return &graphsHandler{logger: logger.With("handler", "graphs")}
}

func (h *graphsHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/graphs",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/validate", Handler: h.validate},
		},
	}
}

// validate reports the execution order, detected stages, and runnability of a graph.
// A graph that fails a pipeline rule is still a successful validation; only
// malformed input is rejected.
func (h *graphsHandler) validate(w http.ResponseWriter, r *http.Request) {
	var g graph.Graph
	if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, graph.ErrInvalidGraph)
		return
	}

	report, err := pipeline.Validate(&g)
	if err != nil && !errors.Is(err, pipeline.ErrValidation) {
		handlers.RespondError(w, h.logger, pipeline.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, report)
}
