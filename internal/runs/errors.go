package runs

import (
	"errors"
	"net/http"
)

// Domain errors for run history operations.
var (
	ErrNotFound     = errors.New("run not found")
	ErrDuplicate    = errors.New("run already recorded")
	ErrInvalidInput = errors.New("invalid input")
)

// MapHTTPStatus maps run domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidInput) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
