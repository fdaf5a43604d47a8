package config

import (
	"fmt"

	"github.com/JaimeStill/brief/pkg/formatting"
	"github.com/JaimeStill/brief/pkg/middleware"
	"github.com/JaimeStill/brief/pkg/pagination"
)

const (
	EnvAPIBasePath      = "BRIEF_API_BASE_PATH"
	EnvAPIMaxUploadSize = "BRIEF_API_MAX_UPLOAD_SIZE"

	defaultMaxUploadSize = "50MB"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "BRIEF_CORS_ENABLED",
	Origins:          "BRIEF_CORS_ORIGINS",
	AllowedMethods:   "BRIEF_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "BRIEF_CORS_ALLOWED_HEADERS",
	ExposedHeaders:   "BRIEF_CORS_EXPOSED_HEADERS",
	AllowCredentials: "BRIEF_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "BRIEF_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "BRIEF_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "BRIEF_PAGINATION_MAX_PAGE_SIZE",
}

// APIConfig holds the API mount path, upload limit, CORS policy, and
// list pagination bounds. MaxUploadSize accepts sizes like "50MB".
type APIConfig struct {
	BasePath      string                `toml:"base_path"`
	MaxUploadSize string                `toml:"max_upload_size"`
	CORS          middleware.CORSConfig `toml:"cors"`
	Pagination    pagination.Config     `toml:"pagination"`
}

// MaxUploadSizeBytes returns the upload limit in bytes, falling back to
// 50MB when MaxUploadSize does not parse.
func (c *APIConfig) MaxUploadSizeBytes() int64 {
	if size, err := formatting.ParseBytes(c.MaxUploadSize); err == nil {
		return size
	}
	size, _ := formatting.ParseBytes(defaultMaxUploadSize)
	return size
}

// Finalize fills defaults, applies overrides, and validates the API config
// along with its CORS and pagination sections.
func (c *APIConfig) Finalize() error {
	defaultString(&c.BasePath, "/api")
	defaultString(&c.MaxUploadSize, defaultMaxUploadSize)
	envString(EnvAPIBasePath, &c.BasePath)
	envString(EnvAPIMaxUploadSize, &c.MaxUploadSize)

	if size, err := formatting.ParseBytes(c.MaxUploadSize); err != nil || size <= 0 {
		return fmt.Errorf("invalid max_upload_size %q", c.MaxUploadSize)
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	return nil
}

// Merge copies the non-zero fields of overlay onto c.
func (c *APIConfig) Merge(overlay *APIConfig) {
	mergeString(&c.BasePath, overlay.BasePath)
	mergeString(&c.MaxUploadSize, overlay.MaxUploadSize)
	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
}
