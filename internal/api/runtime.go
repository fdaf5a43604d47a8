package api

import (
	"github.com/JaimeStill/brief/internal/config"
	"github.com/JaimeStill/brief/internal/infrastructure"
	"github.com/JaimeStill/brief/pkg/pagination"
)

// Runtime is the infrastructure as seen by the API module: a logger scoped
// to the module plus the request limits handlers enforce.
type Runtime struct {
	*infrastructure.Infrastructure
	BasePath      string
	Pagination    pagination.Config
	MaxListSize   int32
	MaxUploadSize int64
}

// NewRuntime scopes infra to the API module. The shared systems are not
// copied, only the struct that points at them.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	scoped := *infra
	scoped.Logger = infra.Logger.With("module", "api")

	return &Runtime{
		Infrastructure: &scoped,
		BasePath:       cfg.API.BasePath,
		Pagination:     cfg.API.Pagination,
		MaxListSize:    cfg.Storage.MaxListSize,
		MaxUploadSize:  cfg.API.MaxUploadSizeBytes(),
	}
}
