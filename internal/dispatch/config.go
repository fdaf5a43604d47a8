package dispatch

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
)

// Config holds the mail relay endpoint and client-side rate limit.
// RatePerMinute of zero disables rate limiting.
type Config struct {
	URL            string `toml:"url"`
	RecipientParam string `toml:"recipient_param"`
	RatePerMinute  int    `toml:"rate_per_minute"`
	Burst          int    `toml:"burst"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	URL            string
	RecipientParam string
	RatePerMinute  string
	Burst          string
}

// Enabled reports whether a relay URL is configured.
func (c *Config) Enabled() bool {
	return c.URL != ""
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
	if overlay.URL != "" {
		c.URL = overlay.URL
	}
	if overlay.RecipientParam != "" {
		c.RecipientParam = overlay.RecipientParam
	}
	if overlay.RatePerMinute != 0 {
		c.RatePerMinute = overlay.RatePerMinute
	}
	if overlay.Burst != 0 {
		c.Burst = overlay.Burst
	}
}

func (c *Config) loadDefaults() {
	if c.RecipientParam == "" {
		c.RecipientParam = "to"
	}
	if c.Burst == 0 {
		c.Burst = 1
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.URL != "" {
		if v := os.Getenv(env.URL); v != "" {
			c.URL = v
		}
	}
	if env.RecipientParam != "" {
		if v := os.Getenv(env.RecipientParam); v != "" {
			c.RecipientParam = v
		}
	}
	if env.RatePerMinute != "" {
		if v := os.Getenv(env.RatePerMinute); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.RatePerMinute = n
			}
		}
	}
	if env.Burst != "" {
		if v := os.Getenv(env.Burst); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.Burst = n
			}
		}
	}
}

func (c *Config) validate() error {
	if c.URL != "" {
		u, err := url.Parse(c.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid url: %q", c.URL)
		}
	}
	if c.RatePerMinute < 0 {
		return fmt.Errorf("rate_per_minute must not be negative")
	}
	if c.Burst < 1 {
		return fmt.Errorf("burst must be positive")
	}
	return nil
}
