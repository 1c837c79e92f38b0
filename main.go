// main.go - Vault-er 桌面壳入口
// 托盘菜单 + dropzone 弹窗 + 主窗口，内容层运行在 Wails webview 中

package main

import (
	"embed"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"vaulter/config"
	"vaulter/internal/logging"
	"vaulter/internal/tray"
	"vaulter/internal/utils"

	"github.com/spf13/cobra"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/mac"
	"github.com/wailsapp/wails/v2/pkg/options/windows"
)

// 版本信息
var (
	Version   = "0.1.0"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// 嵌入前端资源
//
//go:embed all:frontend/dist
var assets embed.FS

// 嵌入应用图标（非 Windows 平台同时用作托盘图标）
//
//go:embed build/appicon.png
var appIcon []byte

// 嵌入默认配置文件
//
//go:embed config/config.yaml
var defaultConfigContent []byte

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCmd 构建命令行入口
func newRootCmd() *cobra.Command {
	var (
		configPath  string
		variant     string
		showVersion bool
	)

	cmd := &cobra.Command{
		Use:           "vaulter",
		Short:         "Vault-er desktop shell",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				printVersion(cmd.OutOrStdout())
				return nil
			}
			cfg, path, err := prepareConfig(configPath, variant)
			if err != nil {
				return err
			}
			return run(NewApp(cfg, path))
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "配置文件路径（默认 <appdata>/config.yaml）")
	cmd.Flags().StringVar(&variant, "variant", "", "托盘菜单配置: full 或 menu_only（覆盖配置文件）")
	cmd.Flags().BoolVar(&showVersion, "version", false, "显示版本信息")
	return cmd
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "Vault-er\n")
	fmt.Fprintf(w, "Version: %s\n", Version)
	fmt.Fprintf(w, "Commit: %s\n", Commit)
	fmt.Fprintf(w, "Built: %s\n", BuildTime)
}

// prepareConfig 首次运行写入默认配置，然后加载并应用命令行覆盖
func prepareConfig(configPath, variant string) (*config.Config, string, error) {
	if err := utils.EnsureAppDirs(); err != nil {
		slog.Warn("⚠️ 无法创建应用目录", "error", err)
	}
	if configPath == "" {
		configPath = utils.GetConfigPath()
	}

	created, err := config.EnsureConfigFile(configPath, defaultConfigContent)
	if err != nil {
		return nil, "", err
	}
	if created {
		slog.Info("📝 已写入默认配置", "path", configPath)
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, "", err
	}
	if variant != "" {
		v, err := tray.ParseVariant(variant)
		if err != nil {
			return nil, "", err
		}
		cfg.Tray.Variant = string(v)
	}
	applyDefaultPaths(cfg)
	return cfg, configPath, nil
}

// applyDefaultPaths 未配置的路径落到应用目录
func applyDefaultPaths(cfg *config.Config) {
	if cfg.Logging.FilePath == "" {
		cfg.Logging.FilePath = filepath.Join(utils.GetLogDir(), "app.log")
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = filepath.Join(utils.GetDataDir(), "vaulter.db")
	}
}

// run 启动 Wails 应用，阻塞到退出
func run(app *App) error {
	cfg := app.config
	return wails.Run(&options.App{
		Title:       cfg.Windows.Title,
		Width:       cfg.Windows.Main.Width,
		Height:      cfg.Windows.Main.Height,
		StartHidden: cfg.Windows.StartHidden,

		// 资源服务器
		AssetServer: &assetserver.Options{
			Assets: assets,
		},

		BackgroundColour: &options.RGBA{R: 255, G: 255, B: 255, A: 1},

		// 生命周期回调
		OnStartup:     app.startup,
		OnDomReady:    app.domReady,
		OnBeforeClose: app.beforeClose,
		OnShutdown:    app.shutdown,

		// 绑定到前端的方法
		Bind: []interface{}{
			app,
		},

		// macOS 配置
		Mac: &mac.Options{
			TitleBar: mac.TitleBarDefault(),
			About: &mac.AboutInfo{
				Title:   "Vault-er",
				Message: fmt.Sprintf("Vault-er\n版本 %s", Version),
				Icon:    appIcon,
			},
		},

		// Windows 配置
		Windows: &windows.Options{
			WebviewIsTransparent: false,
			WindowIsTranslucent:  false,
			DisableWindowIcon:    false,
		},
	})
}

// setupLogger 配置结构化日志：控制台 + 可选轮转文件，外层包一层广播
func setupLogger(cfg config.LoggingConfig, level *slog.LevelVar) (*slog.Logger, *logging.SimpleHandler, *logging.BroadcastHandler) {
	level.Set(logging.ParseLevel(cfg.Level))

	var file io.WriteCloser
	if cfg.FileEnabled && cfg.FilePath != "" {
		maxSize, err := logging.ParseSize(cfg.MaxFileSize)
		if err != nil {
			fmt.Printf("警告：无法解析日志文件大小配置 '%s'，使用默认值 10MB: %v\n", cfg.MaxFileSize, err)
			maxSize = 10 * 1000 * 1000
		}

		rotator, err := logging.NewFileRotator(cfg.FilePath, maxSize, cfg.MaxFiles, cfg.CompressRotated)
		if err != nil {
			fmt.Printf("警告：无法创建日志文件轮转器: %v\n", err)
		} else {
			file = rotator
			fmt.Printf("🔧 文件日志已启用: 路径=%s\n", cfg.FilePath)
		}
	}

	simpleHandler := logging.NewSimpleHandler(level, os.Stdout, file)
	broadcastHandler := logging.NewBroadcastHandler(simpleHandler, cfg.BufferSize)
	return slog.New(broadcastHandler), simpleHandler, broadcastHandler
}
