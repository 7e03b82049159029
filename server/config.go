package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/repronet/predict-gateway/server/middleware"
)

const (
	defaultPort        = 3000
	defaultTimeout     = 300 * time.Second
	defaultIdleTimeout = 120 * time.Second
	defaultMaxBodySize = "20MB"
)

// Config holds HTTP server configuration.
type Config struct {
	Host string `yaml:"host" mapstructure:"host"`
	Port int    `yaml:"port" mapstructure:"port"`
	// Timeout bounds reading and writing a whole request, backend calls
	// included.
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
	IdleTimeout time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
	// MaxBodySize is the request body limit, e.g. "20MB".
	MaxBodySize string                `yaml:"max_body_size" mapstructure:"max_body_size"`
	CORS        middleware.CORSConfig `yaml:"cors" mapstructure:"cors"`
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = defaultIdleTimeout
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = defaultMaxBodySize
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"*"}
	}
	if len(c.CORS.AllowedMethods) == 0 {
		c.CORS.AllowedMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	}
	if len(c.CORS.AllowedHeaders) == 0 {
		c.CORS.AllowedHeaders = []string{"Origin", "Content-Type", "Accept", middleware.HeaderRequestID}
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535 (got: %d)", c.Port)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("server.timeout must be non-negative (got: %s)", c.Timeout)
	}
	if middleware.ParseSize(c.MaxBodySize, -1) <= 0 {
		return fmt.Errorf("server.max_body_size is not a size: %q", c.MaxBodySize)
	}
	return nil
}

// MaxBodyBytes returns the parsed body limit.
func (c *Config) MaxBodyBytes() int64 {
	return middleware.ParseSize(c.MaxBodySize, middleware.DefaultMaxBodySize)
}
