package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Currency.Symbol = "€"
	cfg.Bill.IDs = "uuid"
	cfg.Settlement.Strict = false
	cfg.Log.Level = "debug"

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "$", cfg.Currency.Symbol)
	assert.Equal(t, "My Bill", cfg.Bill.DefaultName)
	assert.Equal(t, "sequential", cfg.Bill.IDs)
	assert.True(t, cfg.Settlement.Strict)
	assert.Equal(t, "Settlement", cfg.Settlement.DefaultName)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadKeepsDefaultsForMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("currency:\n  symbol: £\n"), 0o644))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "£", got.Currency.Symbol)
	assert.True(t, got.Settlement.Strict)
	assert.Equal(t, "sequential", got.Bill.IDs)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadInvalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "ids.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("bill:\n  ids: snowflake\n"), 0o644))
	_, err := Load(bad)
	assert.ErrorContains(t, err, "bill.ids")

	level := filepath.Join(dir, "level.yaml")
	require.NoError(t, os.WriteFile(level, []byte("log:\n  level: chatty\n"), 0o644))
	_, err = Load(level)
	assert.ErrorContains(t, err, "log.level")

	garbage := filepath.Join(dir, "garbage.yaml")
	require.NoError(t, os.WriteFile(garbage, []byte("currency: [unclosed\n"), 0o644))
	_, err = LoadOrDefault(garbage)
	assert.ErrorContains(t, err, "parsing config")
}

func TestYAMLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "ids: sequential")
	assert.Contains(t, contents, "default_name: My Bill")
	assert.Contains(t, contents, "strict: true")
	assert.Contains(t, contents, "level: info")
}

func TestPath(t *testing.T) {
	t.Setenv(EnvPath, "")
	assert.Equal(t, FileName, Path(""))
	assert.Equal(t, "other.yaml", Path("other.yaml"))

	t.Setenv(EnvPath, "/etc/billsplit.yaml")
	assert.Equal(t, "/etc/billsplit.yaml", Path(""))
	assert.Equal(t, "other.yaml", Path("other.yaml"))
}
