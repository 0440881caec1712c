// env.go - Environment variable configuration and validation
package conf

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/tphakala/graphing-app/internal/errors"
	"github.com/tphakala/graphing-app/internal/logger"
)

// EnvPrefix is the prefix of every environment variable read by the server
const EnvPrefix = "GRAPHING"

// envBinding holds metadata for environment variable bindings (internal use)
type envBinding struct {
	ConfigKey string             // Viper config key
	EnvVar    string             // Environment variable name
	Validate  func(string) error // Optional validation function
}

// getEnvBindings returns all environment variable bindings with validation
func getEnvBindings() []envBinding {
	return []envBinding{
		{"debug", "GRAPHING_DEBUG", validateEnvBool},

		// Web server
		{"webserver.host", "GRAPHING_HOST", nil},
		{"webserver.port", "GRAPHING_PORT", validateEnvPort},
		{"webserver.apiprefix", "GRAPHING_API_PREFIX", validateEnvPrefix},
		{"webserver.bodylimit", "GRAPHING_BODY_LIMIT", nil},
		{"webserver.ratelimit.enabled", "GRAPHING_RATELIMIT_ENABLED", validateEnvBool},

		// Storage
		{"output.sqlite.enabled", "GRAPHING_SQLITE_ENABLED", validateEnvBool},
		{"output.sqlite.path", "GRAPHING_SQLITE_PATH", nil},
		{"output.mysql.enabled", "GRAPHING_MYSQL_ENABLED", validateEnvBool},
		{"output.mysql.username", "GRAPHING_MYSQL_USERNAME", nil},
		{"output.mysql.password", "GRAPHING_MYSQL_PASSWORD", nil},
		{"output.mysql.database", "GRAPHING_MYSQL_DATABASE", nil},
		{"output.mysql.host", "GRAPHING_MYSQL_HOST", nil},
		{"output.mysql.port", "GRAPHING_MYSQL_PORT", validateEnvPort},
		{"output.postgres.enabled", "GRAPHING_POSTGRES_ENABLED", validateEnvBool},
		{"output.postgres.username", "GRAPHING_POSTGRES_USERNAME", nil},
		{"output.postgres.password", "GRAPHING_POSTGRES_PASSWORD", nil},
		{"output.postgres.database", "GRAPHING_POSTGRES_DATABASE", nil},
		{"output.postgres.host", "GRAPHING_POSTGRES_HOST", nil},
		{"output.postgres.port", "GRAPHING_POSTGRES_PORT", validateEnvPort},
		{"output.postgres.sslmode", "GRAPHING_POSTGRES_SSLMODE", validateEnvSSLMode},

		// Logging and telemetry
		{"logging.default_level", "GRAPHING_LOG_LEVEL", validateEnvLogLevel},
		{"telemetry.sentry.enabled", "GRAPHING_SENTRY_ENABLED", validateEnvBool},
		{"telemetry.sentry.dsn", "GRAPHING_SENTRY_DSN", nil},
		{"telemetry.metrics.enabled", "GRAPHING_METRICS_ENABLED", validateEnvBool},
	}
}

// bindEnvVars binds every variable and rejects invalid values that are set.
func bindEnvVars(v *viper.Viper) error {
	var problems []string

	for _, binding := range getEnvBindings() {
		if err := v.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			problems = append(problems, fmt.Sprintf("failed to bind %s: %v", binding.EnvVar, err))
			continue
		}
		if binding.Validate == nil {
			continue
		}
		if envValue, ok := os.LookupEnv(binding.EnvVar); ok && envValue != "" {
			if err := binding.Validate(envValue); err != nil {
				problems = append(problems, fmt.Sprintf("invalid %s value %q: %v", binding.EnvVar, envValue, err))
			}
		}
	}

	if len(problems) > 0 {
		return errors.Newf("environment variable issues:\n  - %s", strings.Join(problems, "\n  - ")).
			Category(errors.CategoryConfiguration).
			Component("conf").
			Build()
	}
	return nil
}

func validateEnvBool(value string) error {
	if _, err := strconv.ParseBool(value); err != nil {
		return fmt.Errorf("must be true/false, 1/0, t/f")
	}
	return nil
}

func validateEnvPort(value string) error {
	port, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid port: %w", err)
	}
	return validatePort(port)
}

func validateEnvPrefix(value string) error {
	if !strings.HasPrefix(value, "/") {
		return fmt.Errorf("prefix must start with '/'")
	}
	return nil
}

func validateEnvSSLMode(value string) error {
	switch value {
	case "disable", "allow", "prefer", "require", "verify-ca", "verify-full":
		return nil
	default:
		return fmt.Errorf("unknown sslmode")
	}
}

func validateEnvLogLevel(value string) error {
	if _, ok := logger.ParseLevel(value); !ok {
		return fmt.Errorf("must be one of trace, debug, info, warn, error")
	}
	return nil
}
