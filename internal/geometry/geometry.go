// Package geometry 托盘弹窗定位计算
// 所有坐标均为物理像素（已按显示器缩放系数换算）
package geometry

import "math"

// Padding 窗口贴边时与显示器边缘保留的间距（物理像素）
const Padding = 12

// Point 屏幕坐标点
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Size 宽高
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ScreenRect 托盘图标在点击时刻的屏幕包围盒
type ScreenRect struct {
	Position Point `json:"position"`
	Size     Size  `json:"size"`
}

// Monitor 托盘图标所在显示器的边界
type Monitor struct {
	Position    Point   `json:"position"`
	Size        Size    `json:"size"`
	ScaleFactor float64 `json:"scale_factor"`
}

// Right 显示器右边界（不含）
func (m Monitor) Right() int {
	return m.Position.X + m.Size.Width
}

// LogicalSize 逻辑单位（DPI 无关）的尺寸
type LogicalSize struct {
	Width  float64
	Height float64
}

// ToPhysical 按缩放系数换算为物理像素
func (s LogicalSize) ToPhysical(scale float64) Size {
	scale = normalizeScale(scale)
	return Size{
		Width:  round(s.Width * scale),
		Height: round(s.Height * scale),
	}
}

// LogicalRect 逻辑单位的矩形
type LogicalRect struct {
	X, Y          float64
	Width, Height float64
}

// ToPhysical 按缩放系数换算为物理像素
func (r LogicalRect) ToPhysical(scale float64) ScreenRect {
	scale = normalizeScale(scale)
	return ScreenRect{
		Position: Point{X: round(r.X * scale), Y: round(r.Y * scale)},
		Size:     Size{Width: round(r.Width * scale), Height: round(r.Height * scale)},
	}
}

// ComputePosition 计算弹窗左上角位置：水平居中于图标正下方，并夹紧到显示器左右边界内。
//
// 先检查右边界，再检查左边界；窗口比显示器还宽时左边界优先，窗口起点固定在 monitor.X+Padding。
// 纵向不做下边界夹紧，窗口高于图标下方剩余空间时会超出屏幕。
func ComputePosition(icon ScreenRect, window Size, monitor Monitor) Point {
	iconCenterX := icon.Position.X + icon.Size.Width/2
	x := iconCenterX - window.Width/2

	if x+window.Width > monitor.Right() {
		x = monitor.Right() - window.Width - Padding
	}
	if x < monitor.Position.X {
		x = monitor.Position.X + Padding
	}

	return Point{
		X: x,
		Y: icon.Position.Y + icon.Size.Height,
	}
}

func normalizeScale(scale float64) float64 {
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return 1
	}
	return scale
}

func round(v float64) int {
	return int(math.Round(v))
}
