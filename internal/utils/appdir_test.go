package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureAppDirs_WithOverride(t *testing.T) {
	root := filepath.Join(t.TempDir(), "vault")
	SetAppDataDir(root)
	t.Cleanup(func() { SetAppDataDir("") })

	require.NoError(t, EnsureAppDirs())

	for _, dir := range []string{root, GetDataDir(), GetLogDir()} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
	assert.Equal(t, filepath.Join(root, "config.yaml"), GetConfigPath())
}

func TestGetAppDataDir_Default(t *testing.T) {
	SetAppDataDir("")
	dir := GetAppDataDir()
	assert.NotEmpty(t, dir)
	assert.Contains(t, []string{"Vault-er", "vault-er", ".vault-er"}, filepath.Base(dir))
}
