// Package telemetry wires optional Sentry error reporting into the errors package.
package telemetry

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/tphakala/graphing-app/internal/conf"
	"github.com/tphakala/graphing-app/internal/errors"
	"github.com/tphakala/graphing-app/internal/logger"
)

// DefaultFlushTimeout bounds how long shutdown waits for queued events.
const DefaultFlushTimeout = 2 * time.Second

// GetLogger returns the telemetry module logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("telemetry")
}

// Option adjusts the Sentry client options.
type Option func(*sentry.ClientOptions)

// WithTransport replaces the HTTP transport, mainly for tests.
func WithTransport(t sentry.Transport) Option {
	return func(o *sentry.ClientOptions) {
		o.Transport = t
	}
}

// InitSentry initializes the Sentry SDK and installs it as the errors
// package reporter. Reporting is opt-in; it returns false when disabled.
func InitSentry(settings *conf.Settings, opts ...Option) (bool, error) {
	cfg := settings.Telemetry.Sentry
	if !cfg.Enabled {
		GetLogger().Debug("sentry telemetry is disabled")
		return false, nil
	}
	if cfg.DSN == "" {
		return false, errors.Newf("sentry enabled without a DSN").
			Component("telemetry").
			Category(errors.CategoryConfiguration).
			Build()
	}

	environment := cfg.Environment
	if environment == "" {
		environment = "production"
	}

	options := sentry.ClientOptions{
		Dsn:              cfg.DSN,
		SampleRate:       1.0,
		AttachStacktrace: false,
		Environment:      environment,
		ServerName:       "",
		Release:          fmt.Sprintf("%s@%s", settings.Main.Name, settings.Version),
		BeforeSend:       applyPrivacyFilters,
	}
	for _, opt := range opts {
		opt(&options)
	}

	if err := sentry.Init(options); err != nil {
		return false, errors.New(fmt.Errorf("sentry initialization failed: %w", err)).
			Component("telemetry").
			Category(errors.CategoryConfiguration).
			Build()
	}

	errors.SetTelemetryReporter(errors.NewSentryReporter(true))
	GetLogger().Info("sentry telemetry enabled", logger.String("environment", environment))
	return true, nil
}

// Flush waits up to timeout for buffered events to be sent.
func Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}

// applyPrivacyFilters strips host and user identification from every event
// and redacts credentials from its messages.
func applyPrivacyFilters(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	event.User = sentry.User{}
	event.ServerName = ""
	event.Request = nil

	if event.Contexts != nil {
		delete(event.Contexts, "device")
		delete(event.Contexts, "os")
	}
	if event.Tags != nil {
		delete(event.Tags, "server_name")
		delete(event.Tags, "hostname")
	}

	// Database errors can carry DSN credentials.
	event.Message = logger.RedactSensitiveData(event.Message)
	for i := range event.Exception {
		event.Exception[i].Value = logger.RedactSensitiveData(event.Exception[i].Value)
	}
	return event
}
