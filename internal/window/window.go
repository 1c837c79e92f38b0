// Package window 命名窗口注册表
// Wails v2 只有一个原生窗口，"main" 与 "dropzone" 作为同一窗口上的两个视图实现
package window

import (
	"errors"

	"vaulter/internal/geometry"
)

// 窗口名称
const (
	Main     = "main"
	Dropzone = "dropzone"
)

// EventViewActivate 切换视图时通知前端路由到对应视图
const EventViewActivate = "view:activate"

// ErrRuntimeNotReady Wails 运行时上下文尚未就绪
var ErrRuntimeNotReady = errors.New("window runtime not ready")

// ErrViewInactive 视图未激活，无法获得焦点
var ErrViewInactive = errors.New("view is not active")

// Window 单个命名窗口的可操作能力，所有操作均可能失败
type Window interface {
	Name() string
	Show() error
	Hide() error
	IsVisible() (bool, error)
	SetFocus() error
	// SetPosition 物理像素坐标，相对于窗口当前所在显示器
	SetPosition(x, y int) error
	// CurrentMonitor 窗口当前所在的显示器（而非托盘所在的显示器），无法解析时返回 ok=false
	CurrentMonitor() (geometry.Monitor, bool, error)
	// OuterSize 物理像素尺寸
	OuterSize() (geometry.Size, error)
	Emit(event string, payload any) error
}

// Registry 按名称查找窗口
type Registry interface {
	Lookup(name string) (Window, bool)
}
