// app_events.go - Wails 事件发射
// 将 Go 后端状态变化通知到前端

package main

import (
	"vaulter/internal/window"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// 事件名称常量
const (
	EventConfigReloaded = "config:reloaded"
	EventError          = "error"
	EventNotification   = "notification"
)

// emitViewActivate 通知内容层切换到指定视图
func (a *App) emitViewActivate(view string) {
	if a.ctx == nil || view == "" {
		return
	}
	runtime.EventsEmit(a.ctx, window.EventViewActivate, view)
}

// emitError 发送错误通知到前端
func (a *App) emitError(title, message string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, EventError, map[string]string{
		"title":   title,
		"message": message,
	})
}

// emitConfigReloaded 通知前端配置已重载
func (a *App) emitConfigReloaded() {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, EventConfigReloaded)
}

// emitNotification 发送通知到前端
func (a *App) emitNotification(level, title, message string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, EventNotification, map[string]string{
		"level":   level, // "info", "warning", "error", "success"
		"title":   title,
		"message": message,
	})
}
