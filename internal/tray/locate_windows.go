//go:build windows

package tray

import (
	"unsafe"

	"vaulter/internal/geometry"

	"golang.org/x/sys/windows"
)

// iconBox 托盘图标的近似边长（物理像素，100% 缩放下）
const iconBox = 24

var (
	user32               = windows.NewLazySystemDLL("user32.dll")
	shcore               = windows.NewLazySystemDLL("shcore.dll")
	procGetCursorPos     = user32.NewProc("GetCursorPos")
	procMonitorFromPoint = user32.NewProc("MonitorFromPoint")
	procGetMonitorInfoW  = user32.NewProc("GetMonitorInfoW")
	procGetDpiForMonitor = shcore.NewProc("GetDpiForMonitor")
)

type point struct {
	X, Y int32
}

type rect struct {
	Left, Top, Right, Bottom int32
}

type monitorInfo struct {
	Size    uint32
	Monitor rect
	Work    rect
	Flags   uint32
}

// cursorLocator 点击发生在图标上，以点击时的光标位置还原图标矩形，
// 坐标换算到光标所在显示器的相对坐标系（与 Wails 的窗口坐标一致）。
// 已知限制：Wails v2 只能相对窗口当前所在显示器定位，窗口与托盘
// 不在同一显示器时弹窗会落在窗口所在的显示器上。
type cursorLocator struct{}

func (cursorLocator) Locate() (geometry.ScreenRect, bool) {
	var pt point
	if r, _, _ := procGetCursorPos.Call(uintptr(unsafe.Pointer(&pt))); r == 0 {
		return geometry.ScreenRect{}, false
	}

	const monitorDefaultToNearest = 2
	// MonitorFromPoint 按值接收 POINT，x64 下打包进一个寄存器
	packed := uintptr(uint32(pt.X)) | uintptr(uint32(pt.Y))<<32
	hMon, _, _ := procMonitorFromPoint.Call(packed, monitorDefaultToNearest)
	if hMon == 0 {
		return geometry.ScreenRect{}, false
	}

	var mi monitorInfo
	mi.Size = uint32(unsafe.Sizeof(mi))
	if r, _, _ := procGetMonitorInfoW.Call(hMon, uintptr(unsafe.Pointer(&mi))); r == 0 {
		return geometry.ScreenRect{}, false
	}

	box := int(float64(iconBox) * monitorScale(hMon))
	x := int(pt.X-mi.Monitor.Left) - box/2
	y := int(pt.Y-mi.Monitor.Top) - box/2

	return geometry.ScreenRect{
		Position: geometry.Point{X: x, Y: y},
		Size:     geometry.Size{Width: box, Height: box},
	}, true
}

func monitorScale(hMon uintptr) float64 {
	if procGetDpiForMonitor.Find() != nil {
		return 1
	}
	var dx, dy uint32
	// MDT_EFFECTIVE_DPI = 0
	r, _, _ := procGetDpiForMonitor.Call(hMon, 0, uintptr(unsafe.Pointer(&dx)), uintptr(unsafe.Pointer(&dy)))
	if r != 0 || dx == 0 {
		return 1
	}
	return float64(dx) / 96
}

func defaultLocator() IconLocator {
	return cursorLocator{}
}
