// validate.go: settings validation
package conf

import (
	"fmt"
	"strings"

	"github.com/labstack/gommon/bytes"

	"github.com/tphakala/graphing-app/internal/errors"
	"github.com/tphakala/graphing-app/internal/logger"
)

// ValidateSettings checks the loaded settings and collects every problem found.
func ValidateSettings(settings *Settings) error {
	var errs []error

	if err := validateWebServerSettings(&settings.WebServer); err != nil {
		errs = append(errs, err)
	}
	if err := validateOutputSettings(&settings.Output); err != nil {
		errs = append(errs, err)
	}
	if err := validateLoggingSettings(&settings.Logging); err != nil {
		errs = append(errs, err)
	}
	if settings.Telemetry.Sentry.Enabled && settings.Telemetry.Sentry.DSN == "" {
		errs = append(errs, fmt.Errorf("telemetry.sentry.dsn is required when sentry is enabled"))
	}
	if settings.Telemetry.Metrics.Enabled && !strings.HasPrefix(settings.Telemetry.Metrics.Path, "/") {
		errs = append(errs, fmt.Errorf("telemetry.metrics.path must start with '/'"))
	}

	if len(errs) == 0 {
		return nil
	}
	return errors.New(errors.Join(errs...)).
		Category(errors.CategoryConfiguration).
		Component("conf").
		Context("problem_count", len(errs)).
		Build()
}

func validatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return nil
}

func validateWebServerSettings(ws *WebServerSettings) error {
	if err := validatePort(ws.Port); err != nil {
		return fmt.Errorf("webserver.port: %w", err)
	}
	if ws.APIPrefix == "" || !strings.HasPrefix(ws.APIPrefix, "/") {
		return fmt.Errorf("webserver.apiprefix must start with '/', got %q", ws.APIPrefix)
	}
	ws.APIPrefix = "/" + strings.Trim(ws.APIPrefix, "/")
	if ws.BodyLimit != "" {
		if _, err := bytes.Parse(ws.BodyLimit); err != nil {
			return fmt.Errorf("webserver.bodylimit %q: %w", ws.BodyLimit, err)
		}
	}
	if ws.RateLimit.Enabled && (ws.RateLimit.RequestsPerSecond <= 0 || ws.RateLimit.Burst < 1) {
		return fmt.Errorf("webserver.ratelimit requires a positive rate and burst")
	}
	if ws.ShutdownTimeout < 0 {
		return fmt.Errorf("webserver.shutdowntimeout must not be negative")
	}
	return nil
}

// validateOutputSettings requires exactly one storage backend.
func validateOutputSettings(out *OutputSettings) error {
	enabled := 0
	if out.SQLite.Enabled {
		enabled++
		if out.SQLite.Path == "" {
			return fmt.Errorf("output.sqlite.path is required")
		}
	}
	if out.MySQL.Enabled {
		enabled++
		if out.MySQL.Host == "" || out.MySQL.Database == "" {
			return fmt.Errorf("output.mysql requires host and database")
		}
	}
	if out.Postgres.Enabled {
		enabled++
		if out.Postgres.Host == "" || out.Postgres.Database == "" {
			return fmt.Errorf("output.postgres requires host and database")
		}
	}

	switch enabled {
	case 0:
		return fmt.Errorf("no storage backend enabled, enable one of output.sqlite, output.mysql, output.postgres")
	case 1:
		return nil
	default:
		return fmt.Errorf("only one storage backend may be enabled, got %d", enabled)
	}
}

func validateLoggingSettings(cfg *logger.LoggingConfig) error {
	levels := map[string]string{"logging.default_level": cfg.DefaultLevel}
	if cfg.Console != nil {
		levels["logging.console.level"] = cfg.Console.Level
	}
	if cfg.FileOutput != nil {
		levels["logging.file_output.level"] = cfg.FileOutput.Level
	}
	for module, level := range cfg.ModuleLevels {
		levels["logging.module_levels."+module] = level
	}

	for key, level := range levels {
		if level == "" {
			continue
		}
		if _, ok := logger.ParseLevel(level); !ok {
			return fmt.Errorf("%s: unknown log level %q", key, level)
		}
	}
	return nil
}
