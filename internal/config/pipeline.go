package config

import (
	"fmt"
	"time"

	"github.com/JaimeStill/brief/internal/dispatch"
	"github.com/JaimeStill/brief/internal/summarize"
)

const (
	EnvPipelineExtractWorkers = "BRIEF_PIPELINE_EXTRACT_WORKERS"
	EnvPipelineRequestTimeout = "BRIEF_PIPELINE_REQUEST_TIMEOUT"
)

var summarizeEnv = &summarize.Env{
	EnglishURL:   "BRIEF_SUMMARIZE_ENGLISH_URL",
	EnglishModel: "BRIEF_SUMMARIZE_ENGLISH_MODEL",
	ArabicURL:    "BRIEF_SUMMARIZE_ARABIC_URL",
	ArabicModel:  "BRIEF_SUMMARIZE_ARABIC_MODEL",
	Token:        "BRIEF_SUMMARIZE_TOKEN",

	MaxResponseSize: "BRIEF_SUMMARIZE_MAX_RESPONSE_SIZE",
}

var dispatchEnv = &dispatch.Env{
	URL:            "BRIEF_DISPATCH_URL",
	RecipientParam: "BRIEF_DISPATCH_RECIPIENT_PARAM",
	RatePerMinute:  "BRIEF_DISPATCH_RATE_PER_MINUTE",
	Burst:          "BRIEF_DISPATCH_BURST",
}

// SummarizeEnv returns the environment mapping for summarizer settings.
func SummarizeEnv() *summarize.Env {
	return summarizeEnv
}

// DispatchEnv returns the environment mapping for dispatch settings.
func DispatchEnv() *dispatch.Env {
	return dispatchEnv
}

// PipelineConfig holds extraction, summarization, and dispatch settings.
// RequestTimeout bounds each outbound summarize or dispatch request.
type PipelineConfig struct {
	ExtractWorkers int              `toml:"extract_workers"`
	RequestTimeout string           `toml:"request_timeout"`
	Summarize      summarize.Config `toml:"summarize"`
	Dispatch       dispatch.Config  `toml:"dispatch"`
}

// RequestTimeoutDuration returns RequestTimeout as a time.Duration.
func (c *PipelineConfig) RequestTimeoutDuration() time.Duration {
	return duration(c.RequestTimeout)
}

// Finalize applies defaults, environment variable overrides, and validation
// for the pipeline config and its nested summarize and dispatch configs.
func (c *PipelineConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Summarize.Finalize(summarizeEnv); err != nil {
		return fmt.Errorf("summarize: %w", err)
	}
	if err := c.Dispatch.Finalize(dispatchEnv); err != nil {
		return fmt.Errorf("dispatch: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *PipelineConfig) Merge(overlay *PipelineConfig) {
	if overlay.ExtractWorkers != 0 {
		c.ExtractWorkers = overlay.ExtractWorkers
	}
	if overlay.RequestTimeout != "" {
		c.RequestTimeout = overlay.RequestTimeout
	}

	c.Summarize.Merge(&overlay.Summarize)
	c.Dispatch.Merge(&overlay.Dispatch)
}

func (c *PipelineConfig) loadDefaults() {
	if c.ExtractWorkers == 0 {
		c.ExtractWorkers = 4
	}
	if c.RequestTimeout == "" {
		c.RequestTimeout = "2m"
	}
}

func (c *PipelineConfig) loadEnv() {
	envInt(EnvPipelineExtractWorkers, &c.ExtractWorkers)
	envString(EnvPipelineRequestTimeout, &c.RequestTimeout)
}

func (c *PipelineConfig) validate() error {
	if c.ExtractWorkers < 1 {
		return fmt.Errorf("extract_workers must be positive")
	}
	return checkDurations([2]string{"request_timeout", c.RequestTimeout})
}
