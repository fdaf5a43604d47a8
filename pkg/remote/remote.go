// Package remote provides the JSON-over-HTTP request helper shared by the
// clients that call external inference and relay endpoints.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"unicode/utf8"
)

// DefaultMaxResponse caps a response body when Request.MaxResponse is zero.
const DefaultMaxResponse int64 = 1 << 20

// maxErrorBody bounds how much of a failed response body is kept on a StatusError.
const maxErrorBody = 512

// ErrResponseTooLarge reports a successful response whose body exceeds the cap.
var ErrResponseTooLarge = errors.New("response body too large")

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// Request describes a JSON POST. MaxResponse bounds the bytes read from the
// response body; zero means DefaultMaxResponse.
type Request struct {
	URL         string
	Headers     map[string]string
	Body        any
	MaxResponse int64
}

// PostJSON encodes req.Body as JSON, posts it to req.URL, and returns the response body.
// A non-2xx status returns a *StatusError. No retries are attempted.
func PostJSON(ctx context.Context, client *http.Client, req Request) ([]byte, error) {
	payload, err := json.Marshal(req.Body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	limit := req.MaxResponse
	if limit <= 0 {
		limit = DefaultMaxResponse
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       truncate(string(body), maxErrorBody),
		}
	}

	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%w: exceeds %d bytes", ErrResponseTooLarge, limit)
	}

	return body, nil
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
