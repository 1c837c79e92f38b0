package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Tray    TrayConfig    `yaml:"tray"`
	Windows WindowsConfig `yaml:"windows"`
	Logging LoggingConfig `yaml:"logging"`
	Storage StorageConfig `yaml:"storage"`
	Fetch   FetchConfig   `yaml:"fetch"`
	Files   FilesConfig   `yaml:"files"`
}

type TrayConfig struct {
	Variant string `yaml:"variant"` // "full" or "menu_only"
	Tooltip string `yaml:"tooltip"`
}

type WindowsConfig struct {
	Title       string       `yaml:"title"`
	StartHidden bool         `yaml:"start_hidden"` // 启动时隐藏主窗口，仅保留托盘
	Main        WindowConfig `yaml:"main"`
	Dropzone    WindowConfig `yaml:"dropzone"`
}

// WindowConfig 视图尺寸（逻辑像素）
type WindowConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type LoggingConfig struct {
	Level           string `yaml:"level"`
	FileEnabled     bool   `yaml:"file_enabled"`     // Enable file logging
	FilePath        string `yaml:"file_path"`        // Log file path (empty = <appdata>/logs/app.log)
	MaxFileSize     string `yaml:"max_file_size"`    // Max file size (e.g., "10MB")
	MaxFiles        int    `yaml:"max_files"`        // Max number of rotated files to keep
	CompressRotated bool   `yaml:"compress_rotated"` // Compress rotated log files
	BufferSize      int    `yaml:"buffer_size"`      // 内存中保留的最近日志条数（供前端查看）
}

type StorageConfig struct {
	DatabasePath string `yaml:"database_path"` // SQLite file path (empty = <appdata>/data/vaulter.db)
}

// FetchConfig 前端绕过 CORS 的原生请求
type FetchConfig struct {
	Timeout     time.Duration `yaml:"timeout"`
	MaxBodySize string        `yaml:"max_body_size"`
	ProxyURL    string        `yaml:"proxy_url"` // http://, https:// or socks5://
	UserAgent   string        `yaml:"user_agent"`
}

type FilesConfig struct {
	MaxReadSize string `yaml:"max_read_size"`
}

// LoadConfig loads configuration from file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML content, fills defaults and validates
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.setDefaults()

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default values for configuration
func (c *Config) setDefaults() {
	if c.Tray.Variant == "" {
		c.Tray.Variant = "full"
	}
	if c.Tray.Tooltip == "" {
		c.Tray.Tooltip = "Vault-er"
	}
	if c.Windows.Title == "" {
		c.Windows.Title = "Vault-er"
	}
	if c.Windows.Main.Width == 0 {
		c.Windows.Main.Width = 1024
	}
	if c.Windows.Main.Height == 0 {
		c.Windows.Main.Height = 720
	}
	if c.Windows.Dropzone.Width == 0 {
		c.Windows.Dropzone.Width = 320
	}
	if c.Windows.Dropzone.Height == 0 {
		c.Windows.Dropzone.Height = 200
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.MaxFileSize == "" {
		c.Logging.MaxFileSize = "10MB"
	}
	if c.Logging.MaxFiles == 0 {
		c.Logging.MaxFiles = 5
	}
	if c.Logging.BufferSize == 0 {
		c.Logging.BufferSize = 1000
	}
	if c.Fetch.Timeout == 0 {
		c.Fetch.Timeout = 30 * time.Second
	}
	if c.Fetch.MaxBodySize == "" {
		c.Fetch.MaxBodySize = "50MB"
	}
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = "Vault-er"
	}
	if c.Files.MaxReadSize == "" {
		c.Files.MaxReadSize = "100MB"
	}
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Tray.Variant != "full" && c.Tray.Variant != "menu_only" {
		return fmt.Errorf("tray variant must be 'full' or 'menu_only'")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging level must be one of debug, info, warn, error")
	}

	if c.Windows.Main.Width < 0 || c.Windows.Main.Height < 0 ||
		c.Windows.Dropzone.Width < 0 || c.Windows.Dropzone.Height < 0 {
		return fmt.Errorf("window sizes must not be negative")
	}

	for name, size := range map[string]string{
		"logging.max_file_size": c.Logging.MaxFileSize,
		"fetch.max_body_size":   c.Fetch.MaxBodySize,
		"files.max_read_size":   c.Files.MaxReadSize,
	} {
		if _, err := humanize.ParseBytes(size); err != nil {
			return fmt.Errorf("%s: invalid size %q: %w", name, size, err)
		}
	}

	if c.Fetch.Timeout < 0 {
		return fmt.Errorf("fetch timeout must not be negative")
	}

	return nil
}

// Bytes 解析 "10MB" 之类的尺寸配置，已在 validate 中校验
func Bytes(size string) int64 {
	n, err := humanize.ParseBytes(size)
	if err != nil {
		return 0
	}
	return int64(n)
}

// EnsureConfigFile 配置文件不存在时写入默认内容
func EnsureConfigFile(path string, defaultContent []byte) (created bool, err error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to stat config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, defaultContent, 0644); err != nil {
		return false, fmt.Errorf("failed to write config file: %w", err)
	}
	return true, nil
}

// ConfigWatcher handles automatic configuration reloading
type ConfigWatcher struct {
	configPath    string
	config        *Config
	mutex         sync.RWMutex
	watcher       *fsnotify.Watcher
	logger        *slog.Logger
	callbacks     []func(*Config)
	lastModTime   time.Time
	debounceTimer *time.Timer
	debounce      time.Duration
}

// NewConfigWatcher creates a new configuration watcher
func NewConfigWatcher(configPath string, logger *slog.Logger) (*ConfigWatcher, error) {
	// Load initial configuration
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load initial config: %w", err)
	}

	// Get initial modification time
	fileInfo, err := os.Stat(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}

	// Create file watcher
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	cw := &ConfigWatcher{
		configPath:  configPath,
		config:      config,
		watcher:     watcher,
		logger:      logger,
		callbacks:   make([]func(*Config), 0),
		lastModTime: fileInfo.ModTime(),
		debounce:    500 * time.Millisecond,
	}

	// Add config file to watcher
	if err := watcher.Add(configPath); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch config file: %w", err)
	}

	// Start watching in background
	go cw.watchLoop()

	return cw, nil
}

// GetConfig returns the current configuration (thread-safe)
func (cw *ConfigWatcher) GetConfig() *Config {
	cw.mutex.RLock()
	defer cw.mutex.RUnlock()
	return cw.config
}

// AddReloadCallback adds a callback function that will be called when config is reloaded
func (cw *ConfigWatcher) AddReloadCallback(callback func(*Config)) {
	cw.mutex.Lock()
	defer cw.mutex.Unlock()
	cw.callbacks = append(cw.callbacks, callback)
}

func (cw *ConfigWatcher) log() *slog.Logger {
	cw.mutex.RLock()
	defer cw.mutex.RUnlock()
	if cw.logger == nil {
		return slog.Default()
	}
	return cw.logger
}

// watchLoop monitors the config file for changes
func (cw *ConfigWatcher) watchLoop() {
	for {
		select {
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				fileInfo, err := os.Stat(cw.configPath)
				if err != nil {
					cw.log().Warn(fmt.Sprintf("⚠️ 无法获取配置文件信息: %v", err))
					continue
				}

				// Skip if modification time hasn't changed
				if !fileInfo.ModTime().After(cw.lastModTime) {
					continue
				}
				cw.lastModTime = fileInfo.ModTime()

				if cw.debounceTimer != nil {
					cw.debounceTimer.Stop()
				}

				// Set up debounce timer to avoid multiple rapid reloads
				name := event.Name
				cw.debounceTimer = time.AfterFunc(cw.debounce, func() {
					cw.log().Info(fmt.Sprintf("🔄 检测到配置文件变更，正在重新加载... - 文件: %s", name))
					if err := cw.reloadConfig(); err != nil {
						cw.log().Error(fmt.Sprintf("❌ 配置文件重新加载失败: %v", err))
					} else {
						cw.log().Info("✅ 配置文件重新加载成功")
					}
				})
			}

			// Handle file rename/remove events (some editors rename files during save)
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				time.Sleep(100 * time.Millisecond)
				if _, err := os.Stat(cw.configPath); err == nil {
					_ = cw.watcher.Add(cw.configPath)
					cw.log().Info(fmt.Sprintf("🔄 重新监听配置文件: %s", cw.configPath))
				}
			}

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.log().Error(fmt.Sprintf("⚠️ 配置文件监听错误: %v", err))
		}
	}
}

// reloadConfig reloads the configuration from file
func (cw *ConfigWatcher) reloadConfig() error {
	newConfig, err := LoadConfig(cw.configPath)
	if err != nil {
		return err
	}

	cw.mutex.Lock()
	oldConfig := cw.config
	cw.config = newConfig
	callbacks := make([]func(*Config), len(cw.callbacks))
	copy(callbacks, cw.callbacks)
	cw.mutex.Unlock()

	for _, callback := range callbacks {
		callback(newConfig)
	}

	cw.logConfigChanges(oldConfig, newConfig)

	return nil
}

// logConfigChanges logs the key differences between old and new configurations
func (cw *ConfigWatcher) logConfigChanges(oldConfig, newConfig *Config) {
	logger := cw.log()

	if oldConfig.Logging.Level != newConfig.Logging.Level {
		logger.Info("📝 日志级别变更",
			"old_level", oldConfig.Logging.Level,
			"new_level", newConfig.Logging.Level)
	}

	if oldConfig.Tray.Variant != newConfig.Tray.Variant {
		logger.Info("🧭 托盘菜单配置变更（重启后生效）",
			"old_variant", oldConfig.Tray.Variant,
			"new_variant", newConfig.Tray.Variant)
	}

	if oldConfig.Fetch.ProxyURL != newConfig.Fetch.ProxyURL {
		logger.Info("🔗 请求代理变更",
			"old_proxy", oldConfig.Fetch.ProxyURL,
			"new_proxy", newConfig.Fetch.ProxyURL)
	}

	if oldConfig.Storage.DatabasePath != newConfig.Storage.DatabasePath {
		logger.Info("💾 数据库路径变更（重启后生效）",
			"old_path", oldConfig.Storage.DatabasePath,
			"new_path", newConfig.Storage.DatabasePath)
	}
}

// Close stops the configuration watcher
func (cw *ConfigWatcher) Close() error {
	if cw.debounceTimer != nil {
		cw.debounceTimer.Stop()
	}
	return cw.watcher.Close()
}

// SaveConfig saves configuration to file
func SaveConfig(config *Config, path string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
