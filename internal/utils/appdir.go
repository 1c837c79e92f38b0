package utils

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppDirName 应用目录名
const AppDirName = "Vault-er"

// appDirOverride 测试或便携模式下覆盖应用目录
var appDirOverride string

// SetAppDataDir 覆盖应用数据目录（空字符串恢复默认）
func SetAppDataDir(dir string) {
	appDirOverride = dir
}

// GetAppDataDir 获取应用数据目录（跨平台）
// Windows: %APPDATA%\Vault-er
// macOS: ~/Library/Application Support/Vault-er
// Linux: $XDG_DATA_HOME/vault-er 或 ~/.local/share/vault-er
func GetAppDataDir() string {
	if appDirOverride != "" {
		return appDirOverride
	}

	switch runtime.GOOS {
	case "windows":
		baseDir := os.Getenv("APPDATA")
		if baseDir == "" {
			baseDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		return filepath.Join(baseDir, AppDirName)

	case "darwin":
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, "Library", "Application Support", AppDirName)

	case "linux":
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, "vault-er")
		}
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, ".local", "share", "vault-er")

	default:
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, ".vault-er")
	}
}

// GetDataDir 数据库目录
func GetDataDir() string {
	return filepath.Join(GetAppDataDir(), "data")
}

// GetLogDir 日志目录
func GetLogDir() string {
	return filepath.Join(GetAppDataDir(), "logs")
}

// GetConfigPath 用户配置文件路径
func GetConfigPath() string {
	return filepath.Join(GetAppDataDir(), "config.yaml")
}

// EnsureAppDirs 创建应用目录
func EnsureAppDirs() error {
	for _, dir := range []string{GetAppDataDir(), GetDataDir(), GetLogDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
