// app.go - Wails 应用核心结构
// 负责生命周期：配置、日志、存储、窗口宿主、托盘与消息分发循环

package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"vaulter/config"
	"vaulter/internal/dispatch"
	"vaulter/internal/fetch"
	"vaulter/internal/logging"
	"vaulter/internal/service"
	"vaulter/internal/store"
	"vaulter/internal/tray"
	"vaulter/internal/window"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// messageQueueSize 托盘消息队列长度，托盘回调只负责投递
const messageQueueSize = 16

// App 是 Wails 应用的核心结构
// 它封装了所有组件，并暴露方法给前端调用
type App struct {
	// Wails 上下文
	ctx context.Context

	// 配置
	config        *config.Config
	configPath    string
	configWatcher *config.ConfigWatcher

	// 日志
	logger        *slog.Logger
	logLevel      *slog.LevelVar
	simpleHandler *logging.SimpleHandler
	logHandler    *logging.BroadcastHandler
	logEmitter    *logging.EventEmitter

	// 存储与服务（数据库不可用时为 nil）
	db       *sql.DB
	sessions *service.SessionService
	indexer  *service.Indexer
	fetcher  *fetch.Client

	// 窗口与托盘
	host     *window.Host
	tray     tray.Controller
	messages chan dispatch.Message

	loopCtx    context.Context
	loopCancel context.CancelFunc
	loopDone   chan struct{}

	startTime time.Time
	mu        sync.RWMutex
	quitting  int32
}

// NewApp 创建新的应用实例，cfg 已完成默认值填充
func NewApp(cfg *config.Config, configPath string) *App {
	return &App{
		config:     cfg,
		configPath: configPath,
		logLevel:   new(slog.LevelVar),
		logger:     slog.Default(),
		host:       newWindowHost(cfg.Windows),
		messages:   make(chan dispatch.Message, messageQueueSize),
		startTime:  time.Now(),
	}
}

// newWindowHost 主窗口与 dropzone 共用同一个原生窗口
func newWindowHost(cfg config.WindowsConfig) *window.Host {
	return window.NewHost(window.HostOptions{
		Views: []window.ViewOptions{
			{Name: window.Main, Width: cfg.Main.Width, Height: cfg.Main.Height},
			{Name: window.Dropzone, Width: cfg.Dropzone.Width, Height: cfg.Dropzone.Height, Overlay: true},
		},
		InitialView: window.Main,
		StartHidden: cfg.StartHidden,
	})
}

// startup 在 Wails 应用启动时调用
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	// 1. 日志
	a.setupLogger()
	a.logger.Info("🚀 Vault-er 启动中...",
		"version", Version,
		"config_file", a.configPath,
		"tray_variant", a.config.Tray.Variant)

	// 2. 配置热重载
	a.setupConfigReload()

	// 3. 存储与服务（失败不致命，依赖存储的命令返回 ErrServiceUnavailable）
	a.setupStorage()
	a.setupFetch()

	// 4. 窗口宿主接入运行时
	a.host.Attach(window.NewWailsRuntime(ctx))

	// 5. 消息分发循环
	a.startDispatchLoop()

	// 6. 托盘（缺少图标直接崩溃）
	a.setupTray()

	a.logger.Info("✅ Vault-er 启动完成")
}

// shutdown 在 Wails 应用关闭时调用
func (a *App) shutdown(ctx context.Context) {
	a.mu.Lock()
	logger := a.logger
	trayCtrl := a.tray
	loopCancel := a.loopCancel
	loopDone := a.loopDone
	configWatcher := a.configWatcher
	db := a.db
	logEmitter := a.logEmitter
	simpleHandler := a.simpleHandler
	a.tray = nil
	a.db = nil
	a.mu.Unlock()

	logger.Info("🛑 正在关闭 Vault-er...")

	// 1. 停止托盘
	if trayCtrl != nil {
		trayCtrl.Stop()
	}

	// 2. 停止分发循环
	if loopCancel != nil {
		loopCancel()
		select {
		case <-loopDone:
		case <-time.After(2 * time.Second):
			logger.Warn("分发循环关闭超时，强制继续退出")
		}
	}

	// 3. 关闭配置监听
	if configWatcher != nil {
		_ = configWatcher.Close()
	}

	// 4. 关闭数据库
	if db != nil {
		if err := db.Close(); err != nil {
			logger.Error("数据库关闭失败", "error", err)
		}
	}

	// 5. 停止日志事件发射器
	if logEmitter != nil {
		logEmitter.Stop()
	}

	logger.Info("✅ Vault-er 已关闭")

	if simpleHandler != nil {
		_ = simpleHandler.Close()
	}
}

// domReady 在前端 DOM 准备就绪时调用
func (a *App) domReady(ctx context.Context) {
	// 告诉内容层当前应渲染哪个视图
	a.emitViewActivate(a.host.ActiveView())
}

// beforeClose 在窗口关闭前调用，返回 true 阻止关闭
// dropzone 视图的关闭等同于隐藏（主视图此前可见则恢复）；主窗口关闭则退出进程
func (a *App) beforeClose(ctx context.Context) bool {
	if atomic.LoadInt32(&a.quitting) == 1 {
		return false
	}

	if a.host.ActiveView() == window.Dropzone {
		if w, ok := a.host.Lookup(window.Dropzone); ok {
			if err := w.Hide(); err != nil {
				a.logger.Debug("隐藏 dropzone 失败", "error", err)
			}
		}
		return true
	}

	if !atomic.CompareAndSwapInt32(&a.quitting, 0, 1) {
		return false
	}
	// 注意：Quit 可能触发同步回调，避免在 BeforeClose 回调里阻塞 UI 线程。
	go runtime.Quit(ctx)
	return true
}

// setupLogger 设置日志
func (a *App) setupLogger() {
	logger, simpleHandler, broadcastHandler := setupLogger(a.config.Logging, a.logLevel)

	a.mu.Lock()
	a.logger = logger
	a.simpleHandler = simpleHandler
	a.logHandler = broadcastHandler
	a.logEmitter = broadcastHandler.Emitter
	a.mu.Unlock()
	slog.SetDefault(logger)

	a.logger.Info("✅ 日志系统初始化完成",
		"level", a.config.Logging.Level,
		"file_enabled", a.config.Logging.FileEnabled)
}

// setupConfigReload 监听配置文件变化
func (a *App) setupConfigReload() {
	configWatcher, err := config.NewConfigWatcher(a.configPath, a.logger)
	if err != nil {
		a.logger.Warn("⚠️ 配置热重载不可用", "error", err)
		return
	}
	a.mu.Lock()
	a.configWatcher = configWatcher
	a.mu.Unlock()

	configWatcher.AddReloadCallback(func(newCfg *config.Config) {
		a.mu.Lock()
		old := a.config
		applyDefaultPaths(newCfg)
		// 命令行覆盖的托盘配置和数据库路径需重启生效
		newCfg.Tray = old.Tray
		newCfg.Storage = old.Storage
		a.config = newCfg
		a.mu.Unlock()

		// 级别通过 LevelVar 即时生效，无需重建处理器
		a.logLevel.Set(logging.ParseLevel(newCfg.Logging.Level))
		if newCfg.Logging.FilePath != old.Logging.FilePath || newCfg.Logging.FileEnabled != old.Logging.FileEnabled {
			a.logger.Warn("⚠️ 日志文件配置变更需重启生效")
		}

		a.setupFetch()

		a.logger.Info("🔄 配置已重新加载")
		a.emitConfigReloaded()
	})

	a.logger.Info("🔄 配置热重载已启用", "path", a.configPath)
}

// setupStorage 打开数据库并创建服务
func (a *App) setupStorage() {
	db, err := store.Open(a.ctx, a.config.Storage.DatabasePath, a.logger)
	if err != nil {
		a.logger.Error("❌ 数据库初始化失败，会话与索引功能不可用", "error", err)
		a.emitError("数据库不可用", err.Error())
		return
	}

	a.mu.Lock()
	a.db = db
	a.sessions = service.NewSessionService(store.NewKVStore(db), a.logger)
	a.indexer = service.NewIndexer(store.NewFileIndexStore(db), a.logger)
	a.mu.Unlock()
}

// setupFetch 按当前配置创建 HTTP 客户端
func (a *App) setupFetch() {
	a.mu.RLock()
	cfg := a.config.Fetch
	a.mu.RUnlock()

	client, err := fetch.NewClient(fetch.Options{
		Timeout:     cfg.Timeout,
		MaxBodySize: config.Bytes(cfg.MaxBodySize),
		ProxyURL:    cfg.ProxyURL,
		UserAgent:   cfg.UserAgent,
	}, a.logger)
	if err != nil {
		a.logger.Error("❌ 创建 HTTP 客户端失败", "error", err)
		return
	}

	a.mu.Lock()
	a.fetcher = client
	a.mu.Unlock()
	if cfg.ProxyURL != "" {
		a.logger.Info("🔗 原生请求使用代理", "proxy", cfg.ProxyURL)
	}
}

// setupTray 启动系统托盘，缺少图标属于启动前置条件失败
func (a *App) setupTray() {
	variant, err := tray.ParseVariant(a.config.Tray.Variant)
	if err != nil {
		variant = tray.VariantFull
	}

	ctrl, err := tray.Start(a.loopContext(), tray.Options{
		Icon:     trayIcon,
		Tooltip:  a.config.Tray.Tooltip,
		Variant:  variant,
		Messages: a.messages,
	})
	if err != nil {
		a.logger.Error("❌ 托盘启动失败", "error", err)
		panic(fmt.Sprintf("failed to start tray: %v", err))
	}

	a.mu.Lock()
	a.tray = ctrl
	a.mu.Unlock()
	a.logger.Info("📌 托盘已启动", "variant", variant)
}
