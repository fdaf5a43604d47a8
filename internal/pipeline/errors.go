package pipeline

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/brief/internal/extract"
	"github.com/JaimeStill/brief/pkg/graph"
)

var (
	// ErrValidation is the parent of every error that stops a run before any stage executes.
	ErrValidation = errors.New("pipeline validation failed")
	// ErrMissingRequiredStages indicates the reachable order lacks a required stage kind.
	ErrMissingRequiredStages = errors.New("missing required stages")
	// ErrNoDocument indicates no document has been selected for the session.
	ErrNoDocument = errors.New("no document selected")
	// ErrDispatchUnavailable indicates the latest run cannot be dispatched.
	ErrDispatchUnavailable = errors.New("dispatch unavailable")
	// ErrNoRecipient indicates an empty recipient address.
	ErrNoRecipient = errors.New("recipient required")
)

// MapHTTPStatus maps pipeline errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNoRecipient),
		errors.Is(err, graph.ErrInvalidGraph):
		return http.StatusBadRequest
	case errors.Is(err, ErrValidation),
		errors.Is(err, extract.ErrDecode):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrDispatchUnavailable):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
