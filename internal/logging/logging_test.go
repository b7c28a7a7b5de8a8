package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"info", slog.LevelInfo},
		{"DEBUG", slog.LevelDebug},
		{" warn ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("loud")
	assert.ErrorContains(t, err, `unknown log level "loud"`)
}

func TestLevel(t *testing.T) {
	t.Setenv(EnvLevel, "")
	assert.Equal(t, slog.LevelWarn, Level("warn", false))
	assert.Equal(t, slog.LevelDebug, Level("warn", true))
	assert.Equal(t, slog.LevelInfo, Level("bogus", false))

	t.Setenv(EnvLevel, "error")
	assert.Equal(t, slog.LevelError, Level("debug", false))

	t.Setenv(EnvLevel, "nonsense")
	assert.Equal(t, slog.LevelDebug, Level("debug", false))
}

func TestNewFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelWarn, false)

	logger.Info("hidden")
	logger.Warn("residual balance", "amount", "0.05")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "residual balance")
	assert.Contains(t, out, "amount=0.05")
	assert.NotContains(t, out, "\x1b[", "no ANSI escapes when color is off")
}

func TestSetupInstallsDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger := Setup(&buf, slog.LevelDebug)
	slog.Debug("loaded config", "path", "billsplit.yaml")

	assert.Same(t, logger, slog.Default())
	assert.Contains(t, buf.String(), "loaded config")
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestSetupNoColorForRegularFiles(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	path := filepath.Join(t.TempDir(), "billsplit.log")
	f, err := os.Create(path)
	require.NoError(t, err)

	Setup(f, slog.LevelInfo)
	slog.Warn("balances do not sum to zero", "residual", "0.05")
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "balances do not sum to zero")
	assert.NotContains(t, string(data), "\x1b[")
}
