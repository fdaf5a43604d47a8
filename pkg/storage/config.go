package storage

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

// MaxListCap bounds the blobs returned by one List call.
const MaxListCap int32 = 5000

const (
	defaultContainer  = "documents"
	defaultListSize   = 50
	defaultMaxRetries = 3
)

// Config selects the blob account and container. A connection string wins
// over ServiceURL, which authenticates through the ambient Azure credential
// chain.
type Config struct {
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
	ServiceURL       string `toml:"service_url"`
	MaxListSize      int32  `toml:"max_list_size"`
	MaxRetries       int32  `toml:"max_retries"`
}

// Env names the environment variables that override Config fields.
type Env struct {
	ContainerName    string
	ConnectionString string
	ServiceURL       string
	MaxListSize      string
	MaxRetries       string
}

// Finalize fills defaults, applies env overrides when env is non-nil, and
// validates.
func (c *Config) Finalize(env *Env) error {
	if c.ContainerName == "" {
		c.ContainerName = defaultContainer
	}
	if c.MaxListSize <= 0 {
		c.MaxListSize = defaultListSize
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = defaultMaxRetries
	}

	if env != nil {
		setString(env.ContainerName, &c.ContainerName)
		setString(env.ConnectionString, &c.ConnectionString)
		setString(env.ServiceURL, &c.ServiceURL)
		setInt32(env.MaxListSize, &c.MaxListSize)
		setInt32(env.MaxRetries, &c.MaxRetries)
	}

	c.MaxListSize = min(c.MaxListSize, MaxListCap)

	switch {
	case c.ContainerName == "":
		return errors.New("container_name required")
	case c.ConnectionString == "" && c.ServiceURL == "":
		return errors.New("connection_string or service_url required")
	case c.MaxRetries < -1:
		return fmt.Errorf("max_retries must be -1 or greater: %d", c.MaxRetries)
	}
	return nil
}

// Merge copies the non-zero fields of overlay onto c.
func (c *Config) Merge(overlay *Config) {
	for dst, src := range map[*string]string{
		&c.ContainerName:    overlay.ContainerName,
		&c.ConnectionString: overlay.ConnectionString,
		&c.ServiceURL:       overlay.ServiceURL,
	} {
		if src != "" {
			*dst = src
		}
	}
	if overlay.MaxListSize > 0 {
		c.MaxListSize = overlay.MaxListSize
	}
	if overlay.MaxRetries != 0 {
		c.MaxRetries = overlay.MaxRetries
	}
}

func setString(name string, dst *string) {
	if name == "" {
		return
	}
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}

func setInt32(name string, dst *int32) {
	if name == "" {
		return
	}
	if n, err := strconv.ParseInt(os.Getenv(name), 10, 32); err == nil && n > 0 {
		*dst = int32(n)
	}
}

// ParseMaxResults reads a max_results query value. Empty input yields
// fallback and values above MaxListCap are clamped.
func ParseMaxResults(s string, fallback int32) (int32, error) {
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: max_results must be a positive integer", ErrInvalidListSize)
	}
	return int32(min(n, int64(MaxListCap))), nil
}
