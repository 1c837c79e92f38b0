// Package dispatch 将托盘菜单/托盘点击事件映射为窗口操作
// 事件源只负责产生 Message，由单一的 Handle 函数顺序处理
package dispatch

import "vaulter/internal/geometry"

// 菜单项 ID
const (
	MenuUploadFiles = "upload_files"
	MenuShowMain    = "show_main"
	MenuQuit        = "quit"
)

// EventOpenFilePicker 通知 dropzone 视图立即打开文件选择框
const EventOpenFilePicker = "open-file-picker"

// Command 离散的交互命令
type Command int

const (
	CommandNone Command = iota
	CommandShowMain
	CommandQuit
	CommandUploadFiles
	CommandToggleDropzone
)

func (c Command) String() string {
	switch c {
	case CommandShowMain:
		return "show_main"
	case CommandQuit:
		return "quit"
	case CommandUploadFiles:
		return "upload_files"
	case CommandToggleDropzone:
		return "toggle_dropzone"
	default:
		return "none"
	}
}

// Message 一次交互事件
type Message struct {
	Command Command
	// IconRect 托盘点击时图标的屏幕矩形，仅 HasIconRect 为 true 时有效
	IconRect    geometry.ScreenRect
	HasIconRect bool
}

// MenuMessage 菜单点击 → Message，未知 ID 映射为 CommandNone
func MenuMessage(id string) Message {
	switch id {
	case MenuShowMain:
		return Message{Command: CommandShowMain}
	case MenuQuit:
		return Message{Command: CommandQuit}
	case MenuUploadFiles:
		return Message{Command: CommandUploadFiles}
	default:
		return Message{Command: CommandNone}
	}
}

// TrayClickMessage 托盘左键点击 → Message
func TrayClickMessage(rect geometry.ScreenRect, ok bool) Message {
	return Message{
		Command:     CommandToggleDropzone,
		IconRect:    rect,
		HasIconRect: ok,
	}
}
