package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/brief/pkg/database"
	"github.com/JaimeStill/brief/pkg/storage"
	"github.com/JaimeStill/brief/pkg/telemetry"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvBriefEnv             = "BRIEF_ENV"
	EnvBriefShutdownTimeout = "BRIEF_SHUTDOWN_TIMEOUT"
	EnvBriefVersion         = "BRIEF_VERSION"
)

var databaseEnv = &database.Env{
	DSN:             "BRIEF_DB_DSN",
	Host:            "BRIEF_DB_HOST",
	Port:            "BRIEF_DB_PORT",
	Name:            "BRIEF_DB_NAME",
	User:            "BRIEF_DB_USER",
	Password:        "BRIEF_DB_PASSWORD",
	SSLMode:         "BRIEF_DB_SSL_MODE",
	MaxOpenConns:    "BRIEF_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "BRIEF_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "BRIEF_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "BRIEF_DB_CONN_TIMEOUT",
	ConnRetries:     "BRIEF_DB_CONN_RETRIES",
}

var storageEnv = &storage.Env{
	ContainerName:    "BRIEF_STORAGE_CONTAINER_NAME",
	ConnectionString: "BRIEF_STORAGE_CONNECTION_STRING",
	ServiceURL:       "BRIEF_STORAGE_SERVICE_URL",
	MaxListSize:      "BRIEF_STORAGE_MAX_LIST_SIZE",
	MaxRetries:       "BRIEF_STORAGE_MAX_RETRIES",
}

var telemetryEnv = &telemetry.Env{
	Enabled:     "BRIEF_TELEMETRY_ENABLED",
	ServiceName: "BRIEF_TELEMETRY_SERVICE_NAME",
	Endpoint:    "BRIEF_TELEMETRY_ENDPOINT",
	SampleRatio: "BRIEF_TELEMETRY_SAMPLE_RATIO",
}

// Config is the root configuration for the Brief service.
type Config struct {
	Server          ServerConfig     `toml:"server"`
	Database        database.Config  `toml:"database"`
	Storage         storage.Config   `toml:"storage"`
	API             APIConfig        `toml:"api"`
	Pipeline        PipelineConfig   `toml:"pipeline"`
	Telemetry       telemetry.Config `toml:"telemetry"`
	ShutdownTimeout string           `toml:"shutdown_timeout"`
	Version         string           `toml:"version"`
}

// Env returns the BRIEF_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvBriefEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration { return duration(c.ShutdownTimeout) }

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}
	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}
	return cfg, nil
}

// LoadDatabase resolves only the database section, for tools that need a
// connection without the rest of the service configuration.
func LoadDatabase() (*database.Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}
	if err := cfg.Database.Finalize(databaseEnv); err != nil {
		return nil, fmt.Errorf("finalize database config: %w", err)
	}
	return &cfg.Database, nil
}

func read() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	mergeString(&c.ShutdownTimeout, overlay.ShutdownTimeout)
	mergeString(&c.Version, overlay.Version)
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Pipeline.Merge(&overlay.Pipeline)
	c.Telemetry.Merge(&overlay.Telemetry)
}

func (c *Config) finalize() error {
	defaultString(&c.ShutdownTimeout, "30s")
	defaultString(&c.Version, "0.1.0")
	envString(EnvBriefShutdownTimeout, &c.ShutdownTimeout)
	envString(EnvBriefVersion, &c.Version)

	if err := checkDurations([2]string{"shutdown_timeout", c.ShutdownTimeout}); err != nil {
		return err
	}

	sections := []struct {
		name     string
		finalize func() error
	}{
		{"server", c.Server.Finalize},
		{"database", func() error { return c.Database.Finalize(databaseEnv) }},
		{"storage", func() error { return c.Storage.Finalize(storageEnv) }},
		{"api", c.API.Finalize},
		{"pipeline", c.Pipeline.Finalize},
		{"telemetry", func() error { return c.Telemetry.Finalize(telemetryEnv) }},
	}
	for _, s := range sections {
		if err := s.finalize(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvBriefEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
