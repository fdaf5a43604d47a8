package storage

import (
	"errors"
	"net/http"
	"strings"
)

var (
	ErrNotFound        = errors.New("blob not found")
	ErrEmptyKey        = errors.New("storage key must not be empty")
	ErrInvalidKey      = errors.New("storage key contains invalid path segment")
	ErrInvalidListSize = errors.New("invalid list size")
)

// MapHTTPStatus maps storage errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrEmptyKey), errors.Is(err, ErrInvalidKey), errors.Is(err, ErrInvalidListSize):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// validateKey rejects empty keys, absolute keys, and keys with a ".."
// segment.
func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.HasPrefix(key, "/") {
		return ErrInvalidKey
	}
	for seg := range strings.SplitSeq(key, "/") {
		if seg == ".." {
			return ErrInvalidKey
		}
	}
	return nil
}
