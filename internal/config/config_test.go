package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scryfall/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, config.DefaultAPIBaseURL, cfg.APIBaseURL)
	assert.Equal(t, config.DefaultTimeout, cfg.Timeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, filepath.Join(cfg.DataDir, "scryfall.db"), cfg.DBPath())
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("SCRYFALL_API_BASE_URL", "http://localhost:9999")
	t.Setenv("SCRYFALL_TIMEOUT", "5s")
	t.Setenv("SCRYFALL_LOG_LEVEL", "debug")
	t.Setenv("SCRYFALL_DATA_DIR", "/tmp/scry")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9999/", cfg.APIBaseURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/tmp/scry/scryfall.db", cfg.DBPath())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scryfall.yaml")
	require.NoError(t, os.WriteFile(path, []byte("user_agent: deckbuilder/2.0\ntimeout: 2m\nlog_format: json\n"), 0o644))
	t.Setenv("SCRYFALL_TIMEOUT", "10s")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "deckbuilder/2.0", cfg.UserAgent)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
}

func TestLoad_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scryfall.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timeout: [unclosed\n"), 0o644))

	_, err := config.Load(path)
	assert.Error(t, err)
}
