package config

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

const (
	EnvServerHost              = "BRIEF_SERVER_HOST"
	EnvServerPort              = "BRIEF_SERVER_PORT"
	EnvServerReadTimeout       = "BRIEF_SERVER_READ_TIMEOUT"
	EnvServerReadHeaderTimeout = "BRIEF_SERVER_READ_HEADER_TIMEOUT"
	EnvServerWriteTimeout      = "BRIEF_SERVER_WRITE_TIMEOUT"
	EnvServerIdleTimeout       = "BRIEF_SERVER_IDLE_TIMEOUT"
	EnvServerShutdownTimeout   = "BRIEF_SERVER_SHUTDOWN_TIMEOUT"
)

// ServerConfig holds HTTP listener settings. Durations use time.ParseDuration
// syntax. State streams clear the write timeout for their own connection.
type ServerConfig struct {
	Host              string `toml:"host"`
	Port              int    `toml:"port"`
	ReadTimeout       string `toml:"read_timeout"`
	ReadHeaderTimeout string `toml:"read_header_timeout"`
	WriteTimeout      string `toml:"write_timeout"`
	IdleTimeout       string `toml:"idle_timeout"`
	ShutdownTimeout   string `toml:"shutdown_timeout"`
}

// Addr returns the listen address.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *ServerConfig) ReadTimeoutDuration() time.Duration       { return duration(c.ReadTimeout) }
func (c *ServerConfig) ReadHeaderTimeoutDuration() time.Duration { return duration(c.ReadHeaderTimeout) }
func (c *ServerConfig) WriteTimeoutDuration() time.Duration      { return duration(c.WriteTimeout) }
func (c *ServerConfig) IdleTimeoutDuration() time.Duration       { return duration(c.IdleTimeout) }
func (c *ServerConfig) ShutdownTimeoutDuration() time.Duration   { return duration(c.ShutdownTimeout) }

// Finalize fills defaults, applies BRIEF_SERVER_* overrides, and validates.
func (c *ServerConfig) Finalize() error {
	defaultString(&c.Host, "0.0.0.0")
	defaultString(&c.ReadTimeout, "1m")
	defaultString(&c.ReadHeaderTimeout, "10s")
	defaultString(&c.WriteTimeout, "15m")
	defaultString(&c.IdleTimeout, "2m")
	defaultString(&c.ShutdownTimeout, "30s")
	if c.Port == 0 {
		c.Port = 8080
	}

	envString(EnvServerHost, &c.Host)
	envInt(EnvServerPort, &c.Port)
	envString(EnvServerReadTimeout, &c.ReadTimeout)
	envString(EnvServerReadHeaderTimeout, &c.ReadHeaderTimeout)
	envString(EnvServerWriteTimeout, &c.WriteTimeout)
	envString(EnvServerIdleTimeout, &c.IdleTimeout)
	envString(EnvServerShutdownTimeout, &c.ShutdownTimeout)

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	return checkDurations(
		[2]string{"read_timeout", c.ReadTimeout},
		[2]string{"read_header_timeout", c.ReadHeaderTimeout},
		[2]string{"write_timeout", c.WriteTimeout},
		[2]string{"idle_timeout", c.IdleTimeout},
		[2]string{"shutdown_timeout", c.ShutdownTimeout},
	)
}

// Merge copies the non-zero fields of overlay onto c.
func (c *ServerConfig) Merge(overlay *ServerConfig) {
	mergeString(&c.Host, overlay.Host)
	mergeString(&c.ReadTimeout, overlay.ReadTimeout)
	mergeString(&c.ReadHeaderTimeout, overlay.ReadHeaderTimeout)
	mergeString(&c.WriteTimeout, overlay.WriteTimeout)
	mergeString(&c.IdleTimeout, overlay.IdleTimeout)
	mergeString(&c.ShutdownTimeout, overlay.ShutdownTimeout)
	if overlay.Port != 0 {
		c.Port = overlay.Port
	}
}
