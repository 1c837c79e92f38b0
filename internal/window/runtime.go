package window

import (
	"context"

	"vaulter/internal/geometry"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// Screen 显示器信息（逻辑尺寸 + 物理尺寸）
type Screen struct {
	IsCurrent    bool
	IsPrimary    bool
	Size         geometry.Size
	PhysicalSize geometry.Size
}

// Runtime 宿主运行时的窗口能力子集，便于测试替换
type Runtime interface {
	Show()
	Hide()
	Unminimise()
	SetPosition(x, y int)
	GetPosition() (int, int)
	SetSize(width, height int)
	GetSize() (int, int)
	Screens() ([]Screen, error)
	Emit(event string, payload ...any)
}

// wailsRuntime 基于 Wails runtime 包的实现
type wailsRuntime struct {
	ctx context.Context
}

// NewWailsRuntime 使用 Wails startup 回调拿到的上下文创建运行时
func NewWailsRuntime(ctx context.Context) Runtime {
	return &wailsRuntime{ctx: ctx}
}

func (w *wailsRuntime) Show()                { runtime.WindowShow(w.ctx) }
func (w *wailsRuntime) Hide()                { runtime.WindowHide(w.ctx) }
func (w *wailsRuntime) Unminimise()          { runtime.WindowUnminimise(w.ctx) }
func (w *wailsRuntime) SetPosition(x, y int) { runtime.WindowSetPosition(w.ctx, x, y) }
func (w *wailsRuntime) SetSize(wd, ht int)   { runtime.WindowSetSize(w.ctx, wd, ht) }
func (w *wailsRuntime) GetSize() (int, int)  { return runtime.WindowGetSize(w.ctx) }

func (w *wailsRuntime) GetPosition() (int, int) {
	return runtime.WindowGetPosition(w.ctx)
}

func (w *wailsRuntime) Emit(event string, payload ...any) {
	runtime.EventsEmit(w.ctx, event, payload...)
}

func (w *wailsRuntime) Screens() ([]Screen, error) {
	screens, err := runtime.ScreenGetAll(w.ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Screen, 0, len(screens))
	for _, s := range screens {
		out = append(out, Screen{
			IsCurrent:    s.IsCurrent,
			IsPrimary:    s.IsPrimary,
			Size:         geometry.Size{Width: s.Size.Width, Height: s.Size.Height},
			PhysicalSize: geometry.Size{Width: s.PhysicalSize.Width, Height: s.PhysicalSize.Height},
		})
	}
	return out, nil
}
