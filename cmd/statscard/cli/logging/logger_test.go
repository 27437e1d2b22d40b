package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_WritesJSONToLogFile(t *testing.T) {
	t.Cleanup(resetLogger)
	cacheDir := t.TempDir()

	require.NoError(t, Init(cacheDir, "octocat", "debug"))
	Info(context.Background(), "ledger reconciled", slog.Int("repos", 3))
	Close()

	data, err := os.ReadFile(filepath.Join(cacheDir, "logs", logFileName))
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(data))), &entry))
	assert.Equal(t, "ledger reconciled", entry["msg"])
	assert.Equal(t, "octocat", entry["account"])
	assert.Equal(t, float64(3), entry["repos"])
}

func TestInit_LevelFiltersDebug(t *testing.T) {
	t.Cleanup(resetLogger)
	cacheDir := t.TempDir()

	require.NoError(t, Init(cacheDir, "octocat", "warn"))
	Debug(context.Background(), "should be dropped")
	Warn(context.Background(), "should be kept")
	Close()

	data, err := os.ReadFile(filepath.Join(cacheDir, "logs", logFileName))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "should be dropped")
	assert.Contains(t, string(data), "should be kept")
}

func TestInit_EnvOverridesSettingsLevel(t *testing.T) {
	t.Cleanup(resetLogger)
	t.Setenv(LogLevelEnvVar, "error")
	cacheDir := t.TempDir()

	require.NoError(t, Init(cacheDir, "octocat", "debug"))
	Info(context.Background(), "info suppressed by env")
	Error(context.Background(), "error kept")
	Close()

	data, err := os.ReadFile(filepath.Join(cacheDir, "logs", logFileName))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "info suppressed by env")
	assert.Contains(t, string(data), "error kept")
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLogLevel(" WARNING "))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("bogus"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel(""))
}

func TestClose_SafeToCallTwice(t *testing.T) {
	t.Cleanup(resetLogger)
	require.NoError(t, Init(t.TempDir(), "octocat", "info"))
	Close()
	Close()
}
