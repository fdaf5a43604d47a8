// Package summarize calls the remote inference endpoints that produce
// document summaries, selecting the endpoint by detected language.
package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/brief/internal/language"
	"github.com/JaimeStill/brief/pkg/remote"
)

// MaxInputChars is the hard cap on characters submitted for summarization.
const MaxInputChars = 2000

// Result is a produced summary and the label of the model that produced it.
type Result struct {
	Summary string `json:"summary"`
	Model   string `json:"model"`
}

// Endpoint is a single inference target.
type Endpoint struct {
	URL   string
	Model string
}

type request struct {
	Inputs string `json:"inputs"`
}

type summary struct {
	SummaryText *string `json:"summary_text"`
}

// Client submits text to the endpoint configured for its language.
type Client struct {
	http        *http.Client
	endpoints   map[language.Language]Endpoint
	token       string
	maxResponse int64
	logger      *slog.Logger
}

// New creates a Client from cfg. A nil httpClient uses http.DefaultClient.
func New(cfg *Config, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		http: httpClient,
		endpoints: map[language.Language]Endpoint{
			language.English: {URL: cfg.EnglishURL, Model: cfg.EnglishModel},
			language.Arabic:  {URL: cfg.ArabicURL, Model: cfg.ArabicModel},
		},
		token:       cfg.Token,
		maxResponse: cfg.MaxResponseBytes(),
		logger:      logger.With("system", "summarize"),
	}
}

// Endpoint returns the endpoint configured for lang.
func (c *Client) Endpoint(lang language.Language) (Endpoint, bool) {
	ep, ok := c.endpoints[lang]
	return ep, ok
}

// Summarize submits the first MaxInputChars characters of text to the endpoint
// for lang and returns the first summary of the response.
func (c *Client) Summarize(ctx context.Context, text string, lang language.Language) (*Result, error) {
	ep, ok := c.Endpoint(lang)
	if !ok {
		return nil, fmt.Errorf("%w: %w: %s", ErrSummarization, ErrUnsupportedLanguage, lang)
	}

	input := Truncate(text, MaxInputChars)

	body, err := remote.PostJSON(ctx, c.http, remote.Request{
		URL:         ep.URL,
		Headers:     map[string]string{"Authorization": "Bearer " + c.token},
		Body:        request{Inputs: input},
		MaxResponse: c.maxResponse,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSummarization, ep.Model, err)
	}

	out, err := parseSummary(body)
	if err != nil {
		return nil, err
	}

	c.logger.DebugContext(
		ctx, "summary received",
		"model", ep.Model,
		"input_chars", len([]rune(input)),
		"summary_chars", len([]rune(out)),
	)

	return &Result{Summary: out, Model: ep.Model}, nil
}

// Truncate returns the first n characters of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}

	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// parseSummary requires the body to be exactly one JSON list of summary
// objects. Surrounding text or trailing data is rejected.
func parseSummary(body []byte) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(body))

	var results []summary
	if err := dec.Decode(&results); err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnexpectedResponseShape, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return "", fmt.Errorf("%w: trailing data after result list", ErrUnexpectedResponseShape)
	}

	if len(results) == 0 {
		return "", fmt.Errorf("%w: empty result list", ErrUnexpectedResponseShape)
	}

	if results[0].SummaryText == nil {
		return "", fmt.Errorf("%w: missing summary_text", ErrUnexpectedResponseShape)
	}

	return *results[0].SummaryText, nil
}
