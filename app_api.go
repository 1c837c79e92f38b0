// app_api.go - 暴露给前端的 API 方法 (Wails Bindings)
// 这些方法会被自动生成为 JavaScript 调用
//
// API 按功能分组:
// - 应用信息 / 问候
// - 文件对话框与本地文件
// - 打开外部链接、原生请求
// - 登录会话、上传索引
// - 窗口、日志

package main

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"vaulter/config"
	"vaulter/internal/fetch"
	"vaulter/internal/files"
	"vaulter/internal/logging"
	"vaulter/internal/service"
	"vaulter/internal/store"
	"vaulter/internal/tray"
	"vaulter/internal/utils"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// ============================================================
// 应用信息
// ============================================================

// AppInfo 应用状态
type AppInfo struct {
	Version       string `json:"version"`
	Uptime        string `json:"uptime"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	ConfigPath    string `json:"config_path"`
	DataDir       string `json:"data_dir"`
	TrayVariant   string `json:"tray_variant"`
	ActiveView    string `json:"active_view"`
	WindowVisible bool   `json:"window_visible"`
	StorageReady  bool   `json:"storage_ready"`
}

// Greet 返回问候语
func (a *App) Greet(name string) string {
	return fmt.Sprintf("Hello, %s! You've been greeted from Go!", name)
}

// GetAppInfo 获取应用状态
func (a *App) GetAppInfo() AppInfo {
	a.mu.RLock()
	defer a.mu.RUnlock()

	uptime := time.Since(a.startTime)
	return AppInfo{
		Version:       Version,
		Uptime:        formatDuration(uptime),
		UptimeSeconds: int64(uptime.Seconds()),
		ConfigPath:    a.configPath,
		DataDir:       utils.GetAppDataDir(),
		TrayVariant:   a.config.Tray.Variant,
		ActiveView:    a.host.ActiveView(),
		WindowVisible: a.host.NativeVisible(),
		StorageReady:  a.db != nil,
	}
}

// ============================================================
// 文件对话框与本地文件
// ============================================================

// PickFiles 打开系统多选文件对话框，取消时返回空列表
func (a *App) PickFiles() ([]files.LocalFile, error) {
	paths, err := runtime.OpenMultipleFilesDialog(a.ctx, runtime.OpenDialogOptions{
		Title: "Select files to upload",
	})
	if err != nil {
		return nil, fmt.Errorf("打开文件对话框失败: %w", err)
	}
	if len(paths) == 0 {
		return []files.LocalFile{}, nil
	}
	return files.Describe(paths)
}

// DescribeFiles 读取拖入文件的元信息
func (a *App) DescribeFiles(paths []string) ([]files.LocalFile, error) {
	return files.Describe(paths)
}

// ReadFile 读取本地文件内容，受 files.max_read_size 限制
func (a *App) ReadFile(path string) ([]byte, error) {
	return files.Read(path, config.Bytes(a.currentConfig().Files.MaxReadSize))
}

// ============================================================
// 外部链接与原生请求
// ============================================================

// OpenURL 用系统浏览器打开链接
func (a *App) OpenURL(rawURL string) error {
	if err := validateOpenURL(rawURL); err != nil {
		return err
	}
	runtime.BrowserOpenURL(a.ctx, rawURL)
	return nil
}

func validateOpenURL(rawURL string) error {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	switch u.Scheme {
	case "http", "https":
		if u.Host == "" {
			return fmt.Errorf("invalid URL %q: missing host", rawURL)
		}
		return nil
	case "mailto":
		return nil
	default:
		return fmt.Errorf("%w: %q", fetch.ErrUnsupportedScheme, u.Scheme)
	}
}

// Fetch 代替 webview 发起 HTTP 请求（不受 CORS 限制）
func (a *App) Fetch(req fetch.Request) (*fetch.Response, error) {
	a.mu.RLock()
	client := a.fetcher
	a.mu.RUnlock()
	if client == nil {
		return nil, service.ErrServiceUnavailable
	}
	return client.Do(a.requestContext(), req)
}

// ============================================================
// 登录会话
// ============================================================

// GetRememberedEmail 获取已记住的登录邮箱
func (a *App) GetRememberedEmail() (string, error) {
	svc, err := a.sessionService()
	if err != nil {
		return "", err
	}
	return svc.RememberedEmail(a.requestContext())
}

// RememberEmail 记住登录邮箱
func (a *App) RememberEmail(email string) error {
	svc, err := a.sessionService()
	if err != nil {
		return err
	}
	return svc.RememberEmail(a.requestContext(), email)
}

// ForgetEmail 退出登录
func (a *App) ForgetEmail() error {
	svc, err := a.sessionService()
	if err != nil {
		return err
	}
	return svc.ForgetEmail(a.requestContext())
}

// GetCurrentSpace 获取当前空间 DID
func (a *App) GetCurrentSpace() (string, error) {
	svc, err := a.sessionService()
	if err != nil {
		return "", err
	}
	return svc.CurrentSpace(a.requestContext())
}

// SetCurrentSpace 切换当前空间
func (a *App) SetCurrentSpace(spaceDID string) error {
	svc, err := a.sessionService()
	if err != nil {
		return err
	}
	return svc.SetCurrentSpace(a.requestContext(), spaceDID)
}

// ============================================================
// 上传索引
// ============================================================

// IndexUpload 记录一次完成的上传
func (a *App) IndexUpload(input service.UploadInput) (*store.IndexedFile, error) {
	ix, err := a.indexService()
	if err != nil {
		return nil, err
	}
	f, err := ix.IndexUpload(a.requestContext(), input)
	if err != nil {
		return nil, err
	}
	a.emitNotification("success", "Upload indexed", f.Name)
	return f, nil
}

// SearchFiles 搜索已上传文件，spaceDID 为空时搜索全部空间
func (a *App) SearchFiles(query, spaceDID string, limit int) ([]*store.IndexedFile, error) {
	ix, err := a.indexService()
	if err != nil {
		return nil, err
	}
	return ix.Search(a.requestContext(), query, spaceDID, limit)
}

// ListFiles 列出空间内的文件
func (a *App) ListFiles(spaceDID string, limit int) ([]*store.IndexedFile, error) {
	ix, err := a.indexService()
	if err != nil {
		return nil, err
	}
	return ix.List(a.requestContext(), spaceDID, limit)
}

// RemoveIndexedFile 删除索引记录（不影响已上传内容）
func (a *App) RemoveIndexedFile(cid string) error {
	ix, err := a.indexService()
	if err != nil {
		return err
	}
	return ix.Remove(a.requestContext(), cid)
}

// ============================================================
// 设置
// ============================================================

// SetTrayVariant 写入托盘菜单配置，重启后生效
func (a *App) SetTrayVariant(variant string) error {
	v, err := tray.ParseVariant(variant)
	if err != nil {
		return fmt.Errorf("%w: %v", service.ErrInvalidInput, err)
	}

	cfg, err := a.persistedConfig()
	if err != nil {
		return err
	}
	cfg.Tray.Variant = string(v)
	if err := config.SaveConfig(&cfg, a.configPath); err != nil {
		return fmt.Errorf("保存配置失败: %w", err)
	}

	a.logger.Info("🧭 托盘菜单配置已保存（重启后生效）", "variant", v)
	a.emitNotification("info", "Tray menu updated", "Restart Vault-er to apply")
	return nil
}

// persistedConfig 返回磁盘上的配置副本（不含命令行覆盖与运行时填充的路径）
func (a *App) persistedConfig() (config.Config, error) {
	a.mu.RLock()
	watcher := a.configWatcher
	a.mu.RUnlock()
	if watcher != nil {
		return *watcher.GetConfig(), nil
	}

	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return config.Config{}, err
	}
	return *cfg, nil
}

// ============================================================
// 窗口
// ============================================================

// HideWindow 内容层主动关闭视图（例如 dropzone 上传完成后）
func (a *App) HideWindow(name string) error {
	w, ok := a.host.Lookup(name)
	if !ok {
		return fmt.Errorf("unknown window %q", name)
	}
	return w.Hide()
}

// ============================================================
// 日志
// ============================================================

// GetRecentLogs 获取最近的日志
func (a *App) GetRecentLogs(limit int) []logging.LogEntry {
	a.mu.RLock()
	handler := a.logHandler
	a.mu.RUnlock()
	if handler == nil {
		return []logging.LogEntry{}
	}
	return handler.Recent(limit)
}

// StartLogStream 前端订阅日志后开始推送 log:batch 事件
func (a *App) StartLogStream() {
	a.mu.RLock()
	emitter := a.logEmitter
	a.mu.RUnlock()
	if emitter != nil && a.ctx != nil {
		emitter.Start(a.ctx)
	}
}

// StopLogStream 停止推送日志
func (a *App) StopLogStream() {
	a.mu.RLock()
	emitter := a.logEmitter
	a.mu.RUnlock()
	if emitter != nil {
		emitter.Stop()
	}
}

// ============================================================
// 辅助函数
// ============================================================

func (a *App) currentConfig() *config.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.config
}

func (a *App) sessionService() (*service.SessionService, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.sessions == nil {
		return nil, service.ErrServiceUnavailable
	}
	return a.sessions, nil
}

func (a *App) indexService() (*service.Indexer, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.indexer == nil {
		return nil, service.ErrServiceUnavailable
	}
	return a.indexer, nil
}

// requestContext 绑定方法没有独立的 context，使用应用生命周期 context
func (a *App) requestContext() context.Context {
	if a.ctx == nil {
		return context.Background()
	}
	return a.ctx
}

// formatDuration 格式化时长
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
