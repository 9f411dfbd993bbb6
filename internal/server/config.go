package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/agentstation/dnmerge/pkg/constants"
	"github.com/agentstation/dnmerge/pkg/errors"
)

// Config holds server configuration.
type Config struct {
	// Server settings
	Host string
	Port int

	// API settings
	PathPrefix string

	// CORS settings
	CORSEnabled bool
	CORSOrigins []string

	// Authentication settings
	AuthEnabled bool
	AuthHeader  string
	APIKey      string

	// Performance settings
	RateLimit int // Requests per minute per IP (0 to disable)
	ResultTTL time.Duration

	// Upload settings
	MaxUploadSize int64
	PreviewRows   int

	// HTTP timeouts
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Features
	MetricsEnabled bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Host:           "localhost",
		Port:           8080,
		PathPrefix:     "/api/v1",
		CORSOrigins:    []string{},
		AuthHeader:     "X-API-Key",
		RateLimit:      60,
		ResultTTL:      15 * time.Minute,
		MaxUploadSize:  constants.MaxUploadSize,
		PreviewRows:    constants.PreviewRows,
		ReadTimeout:    constants.DefaultReadTimeout,
		WriteTimeout:   constants.DefaultWriteTimeout,
		IdleTimeout:    constants.DefaultIdleTimeout,
		MetricsEnabled: true,
	}
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate checks the configuration and fills zero values with defaults.
func (c *Config) Validate() error {
	def := DefaultConfig()
	if c.Port < 0 || c.Port > 65535 {
		return &errors.ValidationError{Field: "port", Value: c.Port, Message: "must be between 0 and 65535"}
	}
	if c.PathPrefix != "" && !strings.HasPrefix(c.PathPrefix, "/") {
		return &errors.ValidationError{Field: "prefix", Value: c.PathPrefix, Message: "must start with /"}
	}
	c.PathPrefix = strings.TrimSuffix(c.PathPrefix, "/")
	if c.AuthEnabled && c.APIKey == "" {
		return &errors.ValidationError{Field: "auth", Message: "an API key is required when authentication is enabled"}
	}
	if c.AuthHeader == "" {
		c.AuthHeader = def.AuthHeader
	}
	if c.ResultTTL <= 0 {
		c.ResultTTL = def.ResultTTL
	}
	if c.MaxUploadSize <= 0 {
		c.MaxUploadSize = def.MaxUploadSize
	}
	if c.PreviewRows < 0 {
		return &errors.ValidationError{Field: "preview", Value: c.PreviewRows, Message: "cannot be negative"}
	}
	return nil
}
