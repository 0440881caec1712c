package logger

import (
	"io"
	"log/slog"
	"time"
)

// newTextHandler builds the console handler. Timestamps are omitted because
// the process supervisor (journald, docker) adds its own.
func newTextHandler(w io.Writer, level slog.Leveler) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return renameTraceLevel(a)
		},
	})
}

// newJSONHandler builds a file handler with RFC3339 timestamps in tz.
func newJSONHandler(w io.Writer, level slog.Leveler, tz *time.Location) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey && tz != nil {
				if t, ok := a.Value.Any().(time.Time); ok {
					return slog.String(slog.TimeKey, t.In(tz).Format(time.RFC3339))
				}
			}
			return renameTraceLevel(a)
		},
	})
}

// renameTraceLevel prints TRACE instead of slog's default "DEBUG-4".
func renameTraceLevel(a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if level, ok := a.Value.Any().(slog.Level); ok && level == traceLevelValue {
		return slog.String(slog.LevelKey, "TRACE")
	}
	return a
}
