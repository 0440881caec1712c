// Package conf provides configuration management for the graphing API server.
package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tphakala/graphing-app/internal/errors"
	"github.com/tphakala/graphing-app/internal/logger"
)

// ConfigName is the base name of the configuration file, without extension
const ConfigName = "config"

// WebServerSettings configures the HTTP listener and middleware stack
type WebServerSettings struct {
	Debug           bool          // true to enable echo debug mode
	Host            string        // interface to bind, empty for all
	Port            int           // port for web server
	APIPrefix       string        // path prefix for resource routes, "/api"
	BodyLimit       string        // maximum request body, e.g. "1M"
	CORSOrigins     []string      // allowed CORS origins
	Gzip            bool          // true to gzip responses
	ReadTimeout     time.Duration // http.Server read timeout
	WriteTimeout    time.Duration // http.Server write timeout
	ShutdownTimeout time.Duration // grace period for in-flight requests
	RateLimit       RateLimitSettings
}

// RateLimitSettings configures per-client request throttling
type RateLimitSettings struct {
	Enabled           bool    // true to enable rate limiting
	RequestsPerSecond float64 // sustained rate per client IP
	Burst             int     // short burst allowance
}

// SQLiteSettings configures the SQLite backend
type SQLiteSettings struct {
	Enabled bool   // true to store data in sqlite
	Path    string // path to sqlite database
}

// MySQLSettings configures the MySQL backend
type MySQLSettings struct {
	Enabled  bool   // true to store data in mysql
	Username string // username for mysql database
	Password string // password for mysql database
	Database string // database name for mysql database
	Host     string // host for mysql database
	Port     string // port for mysql database
}

// PostgresSettings configures the PostgreSQL backend
type PostgresSettings struct {
	Enabled  bool   // true to store data in postgres
	Username string // username for postgres database
	Password string // password for postgres database
	Database string // database name
	Host     string // database host
	Port     string // database port
	SSLMode  string // libpq sslmode: disable, require, verify-full
}

// OutputSettings selects and configures the storage backend
type OutputSettings struct {
	SQLite             SQLiteSettings
	MySQL              MySQLSettings
	Postgres           PostgresSettings
	SlowQueryThreshold time.Duration // queries slower than this are logged at WARN
}

// SentrySettings configures error reporting
type SentrySettings struct {
	Enabled     bool   // true to report errors to Sentry
	DSN         string // Sentry project DSN
	Environment string // environment tag for events
}

// MetricsSettings configures the Prometheus endpoint
type MetricsSettings struct {
	Enabled bool   // true to expose Prometheus metrics
	Path    string // HTTP path for the metrics endpoint
}

// TelemetrySettings groups error reporting and metrics
type TelemetrySettings struct {
	Sentry  SentrySettings
	Metrics MetricsSettings
}

// Settings contains all configuration options for the application.
type Settings struct {
	Debug bool // true to enable debug logging

	// Runtime values, not stored in config file
	Version    string `yaml:"-" mapstructure:"-"`
	BuildDate  string `yaml:"-" mapstructure:"-"`
	ConfigFile string `yaml:"-" mapstructure:"-"` // file the settings were read from

	Main struct {
		Name string // instance name reported by the health endpoint
	}

	WebServer WebServerSettings
	Output    OutputSettings
	Logging   logger.LoggingConfig
	Telemetry TelemetrySettings
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads configuration from v into a validated Settings. An explicit
// configFile takes precedence over the default search paths. When no file
// exists in the search paths a default one is written to the first of them.
func Load(v *viper.Viper, configFile string) (*Settings, error) {
	if err := initViper(v, configFile); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, errors.New(fmt.Errorf("error unmarshaling config into struct: %w", err)).
			Category(errors.CategoryConfiguration).
			Component("conf").
			Build()
	}
	settings.ConfigFile = v.ConfigFileUsed()

	if settings.Debug {
		settings.Logging.DefaultLevel = string(logger.LogLevelDebug)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, err
	}

	settingsMutex.Lock()
	settingsInstance = settings
	settingsMutex.Unlock()

	return settings, nil
}

// initViper applies defaults, environment bindings and the config file to v.
func initViper(v *viper.Viper, configFile string) error {
	setDefaultConfig(v)

	if err := bindEnvVars(v); err != nil {
		return err
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return errors.New(fmt.Errorf("error reading config file %s: %w", configFile, err)).
				Category(errors.CategoryConfiguration).
				Context("operation", "read-config").
				Build()
		}
		return nil
	}

	v.SetConfigName(ConfigName)
	v.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return err
	}
	for _, path := range configPaths {
		v.AddConfigPath(path)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return createDefaultConfig(v, filepath.Join(configPaths[0], ConfigName+".yaml"))
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}
	return nil
}

// createDefaultConfig writes the current defaults to path and reads it back.
func createDefaultConfig(v *viper.Viper, path string) error {
	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return fmt.Errorf("error preparing default config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}
	if err := SaveYAMLConfig(path, settings); err != nil {
		return err
	}

	GetLogger().Info("created default config file", logger.String("path", path))

	v.SetConfigFile(path)
	return v.ReadInConfig()
}

// GetSettings returns the most recently loaded settings
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// SaveYAMLConfig writes settings to configPath atomically.
// Comments and layout of an existing file are not preserved.
func SaveYAMLConfig(configPath string, settings *Settings) error {
	yamlData, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling settings to YAML: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(configPath), "config-*.yaml")
	if err != nil {
		return fmt.Errorf("error creating temporary file: %w", err)
	}
	tempFileName := tempFile.Name()
	defer os.Remove(tempFileName)

	if _, err := tempFile.Write(yamlData); err != nil {
		tempFile.Close()
		return fmt.Errorf("error writing to temporary file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("error closing temporary file: %w", err)
	}
	if err := os.Chmod(tempFileName, 0o600); err != nil {
		return fmt.Errorf("error setting config file permissions: %w", err)
	}

	if err := os.Rename(tempFileName, configPath); err != nil {
		return fmt.Errorf("error replacing config file: %w", err)
	}
	return nil
}
