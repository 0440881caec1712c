package logger

import (
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

var (
	globalLogger   *CentralLogger
	globalLoggerMu sync.Mutex
)

// SetGlobal sets the global CentralLogger instance.
// Call it once during startup after configuration is loaded.
func SetGlobal(cl *CentralLogger) {
	globalLoggerMu.Lock()
	defer globalLoggerMu.Unlock()
	globalLogger = cl
}

// Global returns the global CentralLogger, falling back to an info-level
// console logger when SetGlobal has not been called.
func Global() *CentralLogger {
	globalLoggerMu.Lock()
	defer globalLoggerMu.Unlock()

	if globalLogger == nil {
		cl, err := NewCentralLogger(&LoggingConfig{
			Console:    &ConsoleOutput{Enabled: true},
			FileOutput: &FileOutput{Enabled: false},
		})
		if err != nil {
			// Unreachable with a console-only config
			panic(err)
		}
		globalLogger = cl
	}
	return globalLogger
}

// NewSlogLogger returns a single-output JSON logger writing to w, mainly for tests.
// A nil writer means os.Stderr and a nil timezone means UTC.
func NewSlogLogger(w io.Writer, level LogLevel, tz *time.Location) Logger {
	if w == nil {
		w = os.Stderr
	}
	if tz == nil {
		tz = time.UTC
	}
	lv := parseLogLevel(string(level))
	return &moduleLogger{
		logger: slog.New(newJSONHandler(w, lv, tz)),
		level:  lv,
	}
}

// Discard returns a logger that drops everything.
func Discard() Logger {
	return NewSlogLogger(io.Discard, LogLevelError, time.UTC)
}
