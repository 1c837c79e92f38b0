package window

import (
	"fmt"
	"math"
	"sync"

	"vaulter/internal/geometry"
)

// ViewOptions 视图配置（逻辑尺寸）
type ViewOptions struct {
	Name   string
	Width  int
	Height int
	// Overlay 浮层视图临时覆盖当前视图，隐藏后原视图恢复显示
	Overlay bool
}

// HostOptions 宿主窗口初始状态
type HostOptions struct {
	Views []ViewOptions
	// InitialView 启动时原生窗口正在显示的视图
	InitialView string
	// StartHidden 原生窗口启动时是否隐藏
	StartHidden bool
}

// Host 将多个命名视图映射到同一个原生窗口。
// 每个视图有独立的可见状态和位置；原生窗口只呈现激活视图，
// 切换时保存离开视图的位置，并恢复进入视图上次的位置。
type Host struct {
	mu      sync.Mutex
	rt      Runtime
	views   map[string]*view
	active  string
	visible bool
}

// NewHost 创建宿主；运行时在 Wails startup 后通过 Attach 注入
func NewHost(opts HostOptions) *Host {
	h := &Host{
		views:   make(map[string]*view, len(opts.Views)),
		active:  opts.InitialView,
		visible: !opts.StartHidden,
	}
	for _, v := range opts.Views {
		h.views[v.Name] = &view{host: h, opts: v}
	}
	if v, ok := h.views[opts.InitialView]; ok {
		v.visible = !opts.StartHidden
	}
	return h
}

// Attach 注入运行时
func (h *Host) Attach(rt Runtime) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rt = rt
}

// Lookup 实现 Registry
func (h *Host) Lookup(name string) (Window, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	v, ok := h.views[name]
	if !ok {
		return nil, false
	}
	return v, true
}

// ActiveView 当前激活的视图名称
func (h *Host) ActiveView() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.active
}

// NativeVisible 原生窗口是否处于显示状态
func (h *Host) NativeVisible() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.visible
}

func (h *Host) runtime() (Runtime, error) {
	if h.rt == nil {
		return nil, ErrRuntimeNotReady
	}
	return h.rt, nil
}

// activate 把原生窗口切换到视图 v，调用方需持有锁
func (h *Host) activate(rt Runtime, v *view) {
	if h.active == v.opts.Name {
		return
	}
	if out, ok := h.views[h.active]; ok {
		x, y := rt.GetPosition()
		out.pos = &geometry.Point{X: x, Y: y}
	}
	if v.opts.Width > 0 && v.opts.Height > 0 {
		rt.SetSize(v.opts.Width, v.opts.Height)
	}
	if v.pos != nil {
		rt.SetPosition(v.pos.X, v.pos.Y)
	}
	rt.Emit(EventViewActivate, v.opts.Name)
	h.active = v.opts.Name
}

// currentMonitor 调用方需持有锁
func (h *Host) currentMonitor() (geometry.Monitor, bool, error) {
	rt, err := h.runtime()
	if err != nil {
		return geometry.Monitor{}, false, err
	}
	screens, err := rt.Screens()
	if err != nil {
		return geometry.Monitor{}, false, err
	}

	var picked *Screen
	for i := range screens {
		if screens[i].IsCurrent {
			picked = &screens[i]
			break
		}
	}
	if picked == nil {
		for i := range screens {
			if screens[i].IsPrimary {
				picked = &screens[i]
				break
			}
		}
	}
	if picked == nil {
		return geometry.Monitor{}, false, nil
	}

	size := picked.PhysicalSize
	if size.Width == 0 || size.Height == 0 {
		size = picked.Size
	}
	scale := 1.0
	if picked.Size.Width > 0 && size.Width > 0 {
		scale = float64(size.Width) / float64(picked.Size.Width)
	}

	// Wails 的窗口坐标相对当前显示器，原点固定为 (0,0)
	return geometry.Monitor{
		Position:    geometry.Point{},
		Size:        size,
		ScaleFactor: scale,
	}, true, nil
}

type view struct {
	host    *Host
	opts    ViewOptions
	visible bool
	// pos 上次所在位置（逻辑坐标），激活时恢复
	pos *geometry.Point
	// returnTo 浮层隐藏后恢复的视图
	returnTo string
}

func (v *view) Name() string { return v.opts.Name }

func (v *view) Show() error {
	h := v.host
	h.mu.Lock()
	defer h.mu.Unlock()

	rt, err := h.runtime()
	if err != nil {
		return err
	}
	if h.active != v.opts.Name {
		out := h.views[h.active]
		v.returnTo = ""
		switch {
		case out == nil:
		case v.opts.Overlay && out.visible && h.visible:
			// 被覆盖的视图保持可见状态
			v.returnTo = out.opts.Name
		default:
			out.visible = false
			out.returnTo = ""
		}
		h.activate(rt, v)
	}
	v.visible = true
	rt.Show()
	h.visible = true
	return nil
}

func (v *view) Hide() error {
	h := v.host
	h.mu.Lock()
	defer h.mu.Unlock()

	rt, err := h.runtime()
	if err != nil {
		return err
	}
	if !v.visible {
		return nil
	}
	v.visible = false
	if h.active != v.opts.Name {
		// 被浮层覆盖的视图，原生窗口不受影响
		return nil
	}

	back := h.views[v.returnTo]
	v.returnTo = ""
	if back != nil && back.visible {
		h.activate(rt, back)
		return nil
	}
	rt.Hide()
	h.visible = false
	return nil
}

func (v *view) IsVisible() (bool, error) {
	h := v.host
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := h.runtime(); err != nil {
		return false, err
	}
	return v.visible && h.visible, nil
}

func (v *view) SetFocus() error {
	h := v.host
	h.mu.Lock()
	defer h.mu.Unlock()

	rt, err := h.runtime()
	if err != nil {
		return err
	}
	if h.active != v.opts.Name {
		return fmt.Errorf("%w: %s", ErrViewInactive, v.opts.Name)
	}
	// Wails v2 没有独立的 focus 接口，取消最小化并重新 show 会把窗口带到前台
	rt.Unminimise()
	rt.Show()
	return nil
}

// SetPosition 非激活视图只记录位置，激活时生效
func (v *view) SetPosition(x, y int) error {
	h := v.host
	h.mu.Lock()
	defer h.mu.Unlock()

	rt, err := h.runtime()
	if err != nil {
		return err
	}
	mon, ok, err := h.currentMonitor()
	if err != nil {
		return err
	}
	scale := 1.0
	if ok {
		scale = mon.ScaleFactor
	}
	lx, ly := physicalToLogical(x, y, scale)
	v.pos = &geometry.Point{X: lx, Y: ly}
	if h.active == v.opts.Name {
		rt.SetPosition(lx, ly)
	}
	return nil
}

func (v *view) CurrentMonitor() (geometry.Monitor, bool, error) {
	h := v.host
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.currentMonitor()
}

func (v *view) OuterSize() (geometry.Size, error) {
	h := v.host
	h.mu.Lock()
	defer h.mu.Unlock()

	rt, err := h.runtime()
	if err != nil {
		return geometry.Size{}, err
	}
	mon, ok, err := h.currentMonitor()
	if err != nil {
		return geometry.Size{}, err
	}
	scale := 1.0
	if ok {
		scale = mon.ScaleFactor
	}

	w, ht := v.opts.Width, v.opts.Height
	if h.active == v.opts.Name {
		w, ht = rt.GetSize()
	}
	return geometry.LogicalSize{Width: float64(w), Height: float64(ht)}.ToPhysical(scale), nil
}

func (v *view) Emit(event string, payload any) error {
	h := v.host
	h.mu.Lock()
	defer h.mu.Unlock()

	rt, err := h.runtime()
	if err != nil {
		return err
	}
	if payload == nil {
		rt.Emit(event)
		return nil
	}
	rt.Emit(event, payload)
	return nil
}

func physicalToLogical(x, y int, scale float64) (int, int) {
	if scale <= 0 {
		scale = 1
	}
	return int(math.Round(float64(x) / scale)), int(math.Round(float64(y) / scale))
}
