package main

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/spf13/viper"
)

// Supported target backends.
const (
	TargetMySQL    = "mysql"
	TargetPostgres = "postgres"
	TargetSQLite   = "sqlite"
)

// Batch size bounds.
const (
	DefaultBatchSize = 1000
	MaxBatchSize     = 10000
)

// Config holds the configuration for the export tool.
type Config struct {
	SQLitePath string

	TargetType string
	TargetDSN  string

	BatchSize   int
	AutoMigrate bool
	SkipVerify  bool
	Verbose     bool

	// Config file path for fallback
	ConfigPath string
}

// Load validates the configuration, filling missing connection details
// from config.yaml when one is available.
func (c *Config) Load() error {
	if c.SQLitePath == "" || c.TargetDSN == "" {
		if err := c.loadFromConfigFile(); err != nil && c.SQLitePath == "" {
			return fmt.Errorf("--sqlite-path is required (or provide config.yaml): %w", err)
		}
	}

	if _, err := os.Stat(c.SQLitePath); os.IsNotExist(err) {
		return fmt.Errorf("SQLite database not found: %s", c.SQLitePath)
	}

	switch c.TargetType {
	case TargetMySQL, TargetPostgres, TargetSQLite:
	default:
		return fmt.Errorf("unsupported target type %q", c.TargetType)
	}
	if c.TargetDSN == "" {
		return fmt.Errorf("--target-dsn is required (or enable %s in config.yaml)", c.TargetType)
	}

	if c.BatchSize < 1 {
		return fmt.Errorf("batch-size must be at least 1")
	}
	if c.BatchSize > MaxBatchSize {
		return fmt.Errorf("batch-size too large (max %d)", MaxBatchSize)
	}
	return nil
}

// loadFromConfigFile reads output.* settings from config.yaml.
func (c *Config) loadFromConfigFile() error {
	v := viper.New()

	configPath := c.ConfigPath
	if configPath == "" {
		configPath = "config.yaml"
	}
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if c.SQLitePath == "" {
		c.SQLitePath = v.GetString("output.sqlite.path")
	}
	if c.TargetDSN != "" {
		return nil
	}

	switch {
	case c.TargetType == TargetMySQL && v.GetBool("output.mysql.enabled"):
		mc := mysql.NewConfig()
		mc.User = v.GetString("output.mysql.username")
		mc.Passwd = v.GetString("output.mysql.password")
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(v.GetString("output.mysql.host"), portOrDefault(v.GetString("output.mysql.port"), "3306"))
		mc.DBName = v.GetString("output.mysql.database")
		mc.ParseTime = true
		c.TargetDSN = mc.FormatDSN()

	case c.TargetType == TargetPostgres && v.GetBool("output.postgres.enabled"):
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(v.GetString("output.postgres.username"), v.GetString("output.postgres.password")),
			Host:   net.JoinHostPort(v.GetString("output.postgres.host"), portOrDefault(v.GetString("output.postgres.port"), "5432")),
			Path:   "/" + v.GetString("output.postgres.database"),
		}
		if mode := v.GetString("output.postgres.sslmode"); mode != "" {
			u.RawQuery = url.Values{"sslmode": {mode}}.Encode()
		}
		c.TargetDSN = u.String()
	}
	return nil
}

func portOrDefault(port, fallback string) string {
	if port == "" {
		return fallback
	}
	return port
}

// SanitizedTargetDSN returns the target DSN with the password masked for logging.
func (c *Config) SanitizedTargetDSN() string {
	switch c.TargetType {
	case TargetPostgres:
		u, err := url.Parse(c.TargetDSN)
		if err != nil {
			return c.TargetDSN
		}
		return u.Redacted()
	case TargetMySQL:
		// Format: user:password@tcp(host:port)/database
		if idx := strings.Index(c.TargetDSN, ":"); idx != -1 {
			if atIdx := strings.Index(c.TargetDSN, "@"); atIdx != -1 && atIdx > idx {
				return c.TargetDSN[:idx+1] + "****" + c.TargetDSN[atIdx:]
			}
		}
	}
	return c.TargetDSN
}
