package sessions

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/brief/internal/pipeline"
)

// Domain errors for session operations.
var (
	ErrNotFound      = errors.New("session not found")
	ErrRunInProgress = errors.New("run in progress")
	ErrInvalidFile   = errors.New("invalid file")
	ErrFileTooLarge  = errors.New("file exceeds maximum upload size")
	ErrInvalidInput  = errors.New("invalid input")
)

// MapHTTPStatus maps session and pipeline errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrRunInProgress):
		return http.StatusConflict
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrInvalidFile),
		errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	}
	return pipeline.MapHTTPStatus(err)
}
