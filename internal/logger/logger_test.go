package logger_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/alkime/radiopanel/internal/config"
	"github.com/alkime/radiopanel/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		env, level string
		want       slog.Level
	}{
		{config.EnvDevelopment, "error", slog.LevelDebug},
		{config.EnvProduction, "info", slog.LevelInfo},
		{config.EnvProduction, "warn", slog.LevelWarn},
		{config.EnvProduction, "DEBUG", slog.LevelDebug},
		{config.EnvProduction, "loud", slog.LevelInfo},
	}

	for _, tt := range tests {
		got := logger.Level(&config.Config{Env: tt.env, LogLevel: tt.level})
		assert.Equal(t, tt.want, got, "%s/%s", tt.env, tt.level)
	}
}

func TestJSONLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	l := logger.JSONLogger(&config.Config{Env: config.EnvProduction, LogLevel: "info"}, &buf)
	l.Debug("hidden")
	l.Info("ws client registered", "clients", 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "ws client registered", rec["msg"])
	assert.Equal(t, "monitor", rec["component"])
	assert.InDelta(t, 1.0, rec["clients"], 1e-9)
}

// Setup functions replace the default logger, so these tests run serially.

func TestSetupTextLogger(t *testing.T) {
	var buf bytes.Buffer

	l := logger.SetupTextLogger(&config.Config{Env: config.EnvProduction, LogLevel: "info"}, &buf)
	l.Debug("hidden")
	slog.Info("shown", "control", "mode")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "control=mode")
}

func TestSetupFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "radiopanel.log")

	l, closer, err := logger.SetupFileLogger(&config.Config{Env: config.EnvDevelopment, LogFile: path})
	require.NoError(t, err)

	l.Debug("gesture started", "control", "volume")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "gesture started")

	_, _, err = logger.SetupFileLogger(&config.Config{LogFile: filepath.Join(t.TempDir(), "missing", "x.log")})
	require.Error(t, err)
}
