package conf

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tests in this file use t.Setenv and cannot run in parallel.

func TestEnvOverridesConfigFile(t *testing.T) {
	t.Setenv("GRAPHING_PORT", "9999")
	t.Setenv("GRAPHING_SQLITE_PATH", "/data/graphing.db")
	t.Setenv("GRAPHING_LOG_LEVEL", "warn")

	settings, err := Load(viper.New(), writeConfig(t, "webserver:\n  port: 8100\n"))
	require.NoError(t, err)

	assert.Equal(t, 9999, settings.WebServer.Port)
	assert.Equal(t, "/data/graphing.db", settings.Output.SQLite.Path)
	assert.Equal(t, "warn", settings.Logging.DefaultLevel)
}

func TestEnvValidation(t *testing.T) {
	t.Setenv("GRAPHING_PORT", "not-a-port")
	t.Setenv("GRAPHING_DEBUG", "maybe")

	_, err := Load(viper.New(), writeConfig(t, ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GRAPHING_PORT")
	assert.Contains(t, err.Error(), "GRAPHING_DEBUG")
}

func TestEnvValidators(t *testing.T) {
	tests := []struct {
		name    string
		fn      func(string) error
		value   string
		wantErr bool
	}{
		{"bool ok", validateEnvBool, "true", false},
		{"bool bad", validateEnvBool, "yes", true},
		{"port ok", validateEnvPort, "8000", false},
		{"port zero", validateEnvPort, "0", true},
		{"prefix ok", validateEnvPrefix, "/api", false},
		{"prefix bad", validateEnvPrefix, "api", true},
		{"sslmode ok", validateEnvSSLMode, "verify-full", false},
		{"sslmode bad", validateEnvSSLMode, "sometimes", true},
		{"level ok", validateEnvLogLevel, "trace", false},
		{"level bad", validateEnvLogLevel, "loud", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fn(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
