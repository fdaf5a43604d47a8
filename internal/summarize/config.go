package summarize

import (
	"fmt"
	"os"

	"github.com/JaimeStill/brief/pkg/formatting"
)

const (
	defaultBaseURL         = "https://api-inference.huggingface.co/models/"
	defaultMaxResponseSize = "1MB"
)

// Config holds the inference endpoints used for each language.
// Model values are labels reported alongside a summary.
type Config struct {
	EnglishURL   string `toml:"english_url"`
	EnglishModel string `toml:"english_model"`
	ArabicURL    string `toml:"arabic_url"`
	ArabicModel  string `toml:"arabic_model"`
	Token        string `toml:"token"`

	// MaxResponseSize caps a response body, e.g. "1MB".
	MaxResponseSize string `toml:"max_response_size"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	EnglishURL   string
	EnglishModel string
	ArabicURL    string
	ArabicModel  string
	Token        string

	MaxResponseSize string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.EnglishURL != "" {
		c.EnglishURL = overlay.EnglishURL
	}
	if overlay.EnglishModel != "" {
		c.EnglishModel = overlay.EnglishModel
	}
	if overlay.ArabicURL != "" {
		c.ArabicURL = overlay.ArabicURL
	}
	if overlay.ArabicModel != "" {
		c.ArabicModel = overlay.ArabicModel
	}
	if overlay.Token != "" {
		c.Token = overlay.Token
	}
	if overlay.MaxResponseSize != "" {
		c.MaxResponseSize = overlay.MaxResponseSize
	}
}

// MaxResponseBytes returns MaxResponseSize in bytes, or zero when unset or
// malformed.
func (c *Config) MaxResponseBytes() int64 {
	n, err := formatting.ParseBytes(c.MaxResponseSize)
	if err != nil {
		return 0
	}
	return n
}

func (c *Config) loadDefaults() {
	if c.EnglishModel == "" {
		c.EnglishModel = "facebook/bart-large-cnn"
	}
	if c.ArabicModel == "" {
		c.ArabicModel = "csebuetnlp/mT5_multilingual_XLSum"
	}
	if c.EnglishURL == "" {
		c.EnglishURL = defaultBaseURL + c.EnglishModel
	}
	if c.ArabicURL == "" {
		c.ArabicURL = defaultBaseURL + c.ArabicModel
	}
	if c.MaxResponseSize == "" {
		c.MaxResponseSize = defaultMaxResponseSize
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.EnglishURL != "" {
		if v := os.Getenv(env.EnglishURL); v != "" {
			c.EnglishURL = v
		}
	}
	if env.EnglishModel != "" {
		if v := os.Getenv(env.EnglishModel); v != "" {
			c.EnglishModel = v
		}
	}
	if env.ArabicURL != "" {
		if v := os.Getenv(env.ArabicURL); v != "" {
			c.ArabicURL = v
		}
	}
	if env.ArabicModel != "" {
		if v := os.Getenv(env.ArabicModel); v != "" {
			c.ArabicModel = v
		}
	}
	if env.Token != "" {
		if v := os.Getenv(env.Token); v != "" {
			c.Token = v
		}
	}
	if env.MaxResponseSize != "" {
		if v := os.Getenv(env.MaxResponseSize); v != "" {
			c.MaxResponseSize = v
		}
	}
}

func (c *Config) validate() error {
	if c.Token == "" {
		return fmt.Errorf("token required")
	}
	if n, err := formatting.ParseBytes(c.MaxResponseSize); err != nil || n <= 0 {
		return fmt.Errorf("invalid max_response_size %q", c.MaxResponseSize)
	}
	return nil
}
