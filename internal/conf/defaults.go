// defaults.go default values in viper
package conf

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/tphakala/graphing-app/internal/logger"
)

// Default values shared with flag definitions and tests
const (
	DefaultPort      = 8000
	DefaultAPIPrefix = "/api"
	DefaultBodyLimit = "1M"
	DefaultSQLite    = "graphing.db"
)

// Defaults returns settings holding every default value, without reading
// the environment or any config file.
func Defaults() (*Settings, error) {
	v := viper.New()
	setDefaultConfig(v)
	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error preparing default config: %w", err)
	}
	return settings, nil
}

// setDefaultConfig sets default values for every configuration key
func setDefaultConfig(v *viper.Viper) {
	v.SetDefault("debug", false)
	v.SetDefault("main.name", "graphing-app")

	v.SetDefault("webserver.debug", false)
	v.SetDefault("webserver.host", "")
	v.SetDefault("webserver.port", DefaultPort)
	v.SetDefault("webserver.apiprefix", DefaultAPIPrefix)
	v.SetDefault("webserver.bodylimit", DefaultBodyLimit)
	v.SetDefault("webserver.corsorigins", []string{"*"})
	v.SetDefault("webserver.gzip", true)
	v.SetDefault("webserver.readtimeout", 30*time.Second)
	v.SetDefault("webserver.writetimeout", 30*time.Second)
	v.SetDefault("webserver.shutdowntimeout", 10*time.Second)
	v.SetDefault("webserver.ratelimit.enabled", false)
	v.SetDefault("webserver.ratelimit.requestspersecond", 20.0)
	v.SetDefault("webserver.ratelimit.burst", 40)

	v.SetDefault("output.sqlite.enabled", true)
	v.SetDefault("output.sqlite.path", DefaultSQLite)

	v.SetDefault("output.mysql.enabled", false)
	v.SetDefault("output.mysql.username", "")
	v.SetDefault("output.mysql.password", "")
	v.SetDefault("output.mysql.database", "graphing")
	v.SetDefault("output.mysql.host", "localhost")
	v.SetDefault("output.mysql.port", "3306")

	v.SetDefault("output.postgres.enabled", false)
	v.SetDefault("output.postgres.username", "")
	v.SetDefault("output.postgres.password", "")
	v.SetDefault("output.postgres.database", "graphing")
	v.SetDefault("output.postgres.host", "localhost")
	v.SetDefault("output.postgres.port", "5432")
	v.SetDefault("output.postgres.sslmode", "disable")

	v.SetDefault("output.slowquerythreshold", 200*time.Millisecond)

	v.SetDefault("logging.default_level", logger.DefaultLogLevel)
	v.SetDefault("logging.timezone", "Local")
	v.SetDefault("logging.console.enabled", logger.DefaultConsoleEnabled)
	v.SetDefault("logging.console.level", logger.DefaultLogLevel)
	v.SetDefault("logging.file_output.enabled", logger.DefaultFileEnabled)
	v.SetDefault("logging.file_output.path", logger.DefaultLogPath)
	v.SetDefault("logging.file_output.level", logger.DefaultLogLevel)
	v.SetDefault("logging.modules.access.enabled", false)
	v.SetDefault("logging.modules.access.file_path", logger.DefaultAccessLogPath)

	v.SetDefault("telemetry.sentry.enabled", false)
	v.SetDefault("telemetry.sentry.dsn", "")
	v.SetDefault("telemetry.sentry.environment", "production")
	v.SetDefault("telemetry.metrics.enabled", true)
	v.SetDefault("telemetry.metrics.path", "/metrics")
}
