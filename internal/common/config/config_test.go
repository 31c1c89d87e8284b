package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"CONFIG_FILE", "PORT", "ENV", "READ_TIMEOUT", "WRITE_TIMEOUT", "PREFS_DB_PATH", "PRECISION",
	"HISTORY_LIMIT", "TEXT_DEBOUNCE_MS", "STICKY_RADIUS", "STICKY_BREAK", "SESSION_TTL_MINUTES", "CORS_ORIGINS",
}

func clearEnv(t *testing.T) {
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "editor.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"4000\"\nprecision: 3\nhistoryLimit: 10\n"), 0o644))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "5000")
	t.Setenv("HISTORY_LIMIT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, 3, cfg.Precision)
	assert.Equal(t, 10, cfg.HistoryLimit, "unparsable env keeps the file value")
	assert.Equal(t, 20, cfg.StickyRadius)
}

func TestCORSOriginsFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("CORS_ORIGINS", "http://a.local, ,http://b.local")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"http://a.local", "http://b.local"}, cfg.CORSOrigins)
}

func TestLoadRejectsBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("STICKY_BREAK", "5")

	_, err := Load()
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestMissingConfigFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	assert.Error(t, err)
}
