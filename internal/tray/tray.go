package tray

import (
	"context"
	"errors"

	"vaulter/internal/dispatch"
	"vaulter/internal/geometry"
)

// ErrMissingIcon 启动时缺少托盘图标，属于致命错误
var ErrMissingIcon = errors.New("tray icon is missing")

// Controller 表示托盘控制器（用于停止托盘）。
type Controller interface {
	Stop()
}

// IconLocator 在点击时刻解析托盘图标的屏幕矩形
type IconLocator interface {
	Locate() (geometry.ScreenRect, bool)
}

// Options 托盘启动参数。
type Options struct {
	// Icon 托盘图标内容（Windows 必须是 .ico 字节，macOS 与 Linux 使用 PNG）。
	Icon []byte

	// Tooltip 托盘悬浮提示文本。
	Tooltip string

	// Variant 菜单配置
	Variant Variant

	// Menu 为空时按 Variant 生成
	Menu []MenuItem

	// Messages 菜单/托盘点击统一投递到这里，由应用单线程消费
	Messages chan<- dispatch.Message

	// Locator 为空时使用平台默认实现
	Locator IconLocator
}

// Start 启动系统托盘（平台相关实现）。
func Start(ctx context.Context, opts Options) (Controller, error) {
	if len(opts.Icon) == 0 {
		return nil, ErrMissingIcon
	}
	if opts.Variant == "" {
		opts.Variant = VariantFull
	}
	if len(opts.Menu) == 0 {
		opts.Menu = BuildMenu(opts.Variant)
	}
	if opts.Tooltip == "" {
		opts.Tooltip = "Vault-er"
	}
	if opts.Locator == nil {
		opts.Locator = defaultLocator()
	}
	return start(ctx, opts)
}

// poster 把点击转换为消息投递，ctx 取消后丢弃
type poster struct {
	ctx context.Context
	out chan<- dispatch.Message
}

func (p poster) post(msg dispatch.Message) {
	if p.out == nil {
		return
	}
	select {
	case p.out <- msg:
	case <-p.ctx.Done():
	}
}

func (p poster) menuClicked(id string) {
	p.post(dispatch.MenuMessage(id))
}

func (p poster) iconClicked(locator IconLocator) {
	rect, ok := locator.Locate()
	p.post(dispatch.TrayClickMessage(rect, ok))
}
