// Package api provides the HTTP server for the graphing API. The resource
// endpoints themselves live in the resources subpackage.
package api

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/gommon/bytes"

	"github.com/tphakala/graphing-app/internal/conf"
	"github.com/tphakala/graphing-app/internal/errors"
	"github.com/tphakala/graphing-app/internal/logger"
)

// GetLogger returns the api package logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("api")
}

// Default constants for the HTTP server.
const (
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultHealthTimeout   = 2 * time.Second
)

// Config holds the HTTP server configuration.
type Config struct {
	// Server binding
	Host string // Host to bind to (empty for all interfaces)
	Port int    // Port to listen on, 0 picks a free port

	APIPrefix      string   // Mount point of the resource routes
	AllowedOrigins []string // CORS allowed origins
	Gzip           bool     // Compress responses

	// Timeouts
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Limits
	BodyLimit      string // Maximum request body size (e.g., "1M")
	RateLimit      bool
	RequestsPerSec float64
	RateBurst      int

	// Metrics endpoint, empty path disables it
	MetricsPath string

	Debug bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:            conf.DefaultPort,
		APIPrefix:       conf.DefaultAPIPrefix,
		AllowedOrigins:  []string{"*"},
		Gzip:            true,
		ReadTimeout:     DefaultReadTimeout,
		WriteTimeout:    DefaultWriteTimeout,
		IdleTimeout:     DefaultIdleTimeout,
		ShutdownTimeout: DefaultShutdownTimeout,
		BodyLimit:       conf.DefaultBodyLimit,
	}
}

// ConfigFromSettings creates a Config from the application settings.
// Zero values in settings keep the defaults.
func ConfigFromSettings(settings *conf.Settings) *Config {
	cfg := DefaultConfig()
	ws := settings.WebServer

	cfg.Host = ws.Host
	cfg.Port = ws.Port
	if ws.APIPrefix != "" {
		cfg.APIPrefix = ws.APIPrefix
	}
	if len(ws.CORSOrigins) > 0 {
		cfg.AllowedOrigins = ws.CORSOrigins
	}
	cfg.Gzip = ws.Gzip
	if ws.BodyLimit != "" {
		cfg.BodyLimit = ws.BodyLimit
	}
	if ws.ReadTimeout > 0 {
		cfg.ReadTimeout = ws.ReadTimeout
	}
	if ws.WriteTimeout > 0 {
		cfg.WriteTimeout = ws.WriteTimeout
	}
	if ws.ShutdownTimeout > 0 {
		cfg.ShutdownTimeout = ws.ShutdownTimeout
	}

	cfg.RateLimit = ws.RateLimit.Enabled
	cfg.RequestsPerSec = ws.RateLimit.RequestsPerSecond
	cfg.RateBurst = ws.RateLimit.Burst

	if settings.Telemetry.Metrics.Enabled {
		cfg.MetricsPath = settings.Telemetry.Metrics.Path
	}

	cfg.Debug = ws.Debug || settings.Debug
	return cfg
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return configError(fmt.Sprintf("port %d out of range", c.Port))
	}
	if !strings.HasPrefix(c.APIPrefix, "/") || c.APIPrefix == "/" {
		return configError(fmt.Sprintf("api prefix %q must start with / and name a path", c.APIPrefix))
	}
	if _, err := bytes.Parse(c.BodyLimit); err != nil {
		return configError(fmt.Sprintf("invalid body limit %q: %v", c.BodyLimit, err))
	}
	if c.RateLimit && (c.RequestsPerSec <= 0 || c.RateBurst <= 0) {
		return configError("rate limit requires positive requests per second and burst")
	}
	if c.MetricsPath != "" && strings.HasPrefix(c.MetricsPath, c.APIPrefix+"/") {
		return configError(fmt.Sprintf("metrics path %q collides with api prefix", c.MetricsPath))
	}
	return nil
}

// Address returns the host:port the server listens on.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func configError(msg string) error {
	return errors.Newf("invalid server config: %s", msg).
		Component("api").
		Category(errors.CategoryConfiguration).
		Build()
}
