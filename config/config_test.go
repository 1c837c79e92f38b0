package config

import (
	_ "embed"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//go:embed config.yaml
var defaultYAML []byte

func TestParse_DefaultFile(t *testing.T) {
	cfg, err := Parse(defaultYAML)
	require.NoError(t, err)

	assert.Equal(t, "full", cfg.Tray.Variant)
	assert.Equal(t, 320, cfg.Windows.Dropzone.Width)
	assert.Equal(t, 200, cfg.Windows.Dropzone.Height)
	assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, int64(50*1000*1000), Bytes(cfg.Fetch.MaxBodySize))
}

func TestParse_FillsDefaults(t *testing.T) {
	cfg, err := Parse([]byte("{}"))
	require.NoError(t, err)

	assert.Equal(t, "full", cfg.Tray.Variant)
	assert.Equal(t, "Vault-er", cfg.Tray.Tooltip)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 5, cfg.Logging.MaxFiles)
	assert.Equal(t, 1024, cfg.Windows.Main.Width)
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"variant":   "tray:\n  variant: compact\n",
		"level":     "logging:\n  level: verbose\n",
		"size":      "fetch:\n  max_body_size: lots\n",
		"negative":  "windows:\n  dropzone:\n    width: -1\n",
		"malformed": "tray: [",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(body))
			assert.Error(t, err)
		})
	}
}

func TestEnsureConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	created, err := EnsureConfigFile(path, defaultYAML)
	require.NoError(t, err)
	assert.True(t, created)

	require.NoError(t, os.WriteFile(path, []byte("tray:\n  variant: menu_only\n"), 0644))
	created, err = EnsureConfigFile(path, defaultYAML)
	require.NoError(t, err)
	assert.False(t, created)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "menu_only", cfg.Tray.Variant)
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	cfg, err := Parse(defaultYAML)
	require.NoError(t, err)
	cfg.Logging.Level = "debug"

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", loaded.Logging.Level)
}

func TestConfigWatcher_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, defaultYAML, 0644))
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(path, past, past))

	cw, err := NewConfigWatcher(path, slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = cw.Close() })

	var reloaded atomic.Int32
	cw.AddReloadCallback(func(c *Config) {
		if c.Logging.Level == "debug" {
			reloaded.Add(1)
		}
	})

	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: debug\n"), 0644))

	require.Eventually(t, func() bool { return reloaded.Load() > 0 }, 5*time.Second, 50*time.Millisecond)
	assert.Equal(t, "debug", cw.GetConfig().Logging.Level)
}
