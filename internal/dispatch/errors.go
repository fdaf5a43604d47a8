package dispatch

import "errors"

var (
	// ErrDispatch indicates the relay could not be reached or answered with a non-2xx status.
	ErrDispatch = errors.New("dispatch failed")
	// ErrNotConfigured indicates no relay URL is configured.
	ErrNotConfigured = errors.New("dispatch relay not configured")
)
