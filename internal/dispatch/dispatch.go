// Package dispatch sends a produced summary to a recipient through a remote mail relay.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/JaimeStill/brief/pkg/remote"
)

// Status is the dispatch state machine: Idle, then Sending, then Sent or Error.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusSending Status = "sending"
	StatusSent    Status = "sent"
	StatusError   Status = "error"
)

// Settled reports whether s is a terminal dispatch status.
func (s Status) Settled() bool {
	return s == StatusSent || s == StatusError
}

type message struct {
	Message string `json:"message"`
}

// Client posts messages to the relay. Calls are never retried.
type Client struct {
	http           *http.Client
	endpoint       string
	recipientParam string
	limiter        *rate.Limiter
	logger         *slog.Logger
}

// New creates a Client from cfg. A nil httpClient uses http.DefaultClient.
func New(cfg *Config, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	c := &Client{
		http:           httpClient,
		endpoint:       cfg.URL,
		recipientParam: cfg.RecipientParam,
		logger:         logger.With("system", "dispatch"),
	}

	if cfg.RatePerMinute > 0 {
		c.limiter = rate.NewLimiter(
			rate.Every(time.Minute/time.Duration(cfg.RatePerMinute)),
			max(cfg.Burst, 1),
		)
	}

	return c
}

// Send posts message to the relay addressed to recipient.
// Transport failures and non-2xx responses both return ErrDispatch.
func (c *Client) Send(ctx context.Context, recipient, msg string) error {
	if c.endpoint == "" {
		return fmt.Errorf("%w: %w", ErrDispatch, ErrNotConfigured)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: rate limit: %w", ErrDispatch, err)
		}
	}

	target, err := c.target(recipient)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDispatch, err)
	}

	if _, err := remote.PostJSON(ctx, c.http, remote.Request{
		URL:  target,
		Body: message{Message: msg},
	}); err != nil {
		return fmt.Errorf("%w: %w", ErrDispatch, err)
	}

	c.logger.InfoContext(ctx, "summary dispatched", "message_chars", len([]rune(msg)))
	return nil
}

func (c *Client) target(recipient string) (string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("parse relay url: %w", err)
	}

	q := u.Query()
	q.Set(c.recipientParam, recipient)
	u.RawQuery = q.Encode()

	return u.String(), nil
}
