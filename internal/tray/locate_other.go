//go:build !windows

package tray

import "vaulter/internal/geometry"

// 非 Windows 平台的托盘库拿不到图标位置，点击后窗口在原位置显示
type unknownLocator struct{}

func (unknownLocator) Locate() (geometry.ScreenRect, bool) {
	return geometry.ScreenRect{}, false
}

func defaultLocator() IconLocator {
	return unknownLocator{}
}
