package dispatch

import (
	"fmt"

	"vaulter/internal/geometry"
	"vaulter/internal/window"
)

// 状态转换结果
const (
	TransitionIgnored = "ignored"
	TransitionShown   = "shown"
	TransitionHidden  = "hidden"
	TransitionExited  = "exited"
)

// ProcessControl 进程退出能力
type ProcessControl interface {
	Exit(code int)
}

// Outcome 一次分发的可观测结果。
// Errors 记录被忽略的窗口操作错误：不重试、不上报。
type Outcome struct {
	Command    Command
	Window     string
	Transition string
	Positioned bool
	Errors     []error
}

func (o *Outcome) record(op string, err error) {
	if err != nil {
		o.Errors = append(o.Errors, fmt.Errorf("%s %s: %w", o.Window, op, err))
	}
}

// Handle 处理一条消息。无状态，窗口注册表与进程控制都由调用方显式传入。
func Handle(reg window.Registry, proc ProcessControl, msg Message) Outcome {
	out := Outcome{Command: msg.Command, Transition: TransitionIgnored}

	switch msg.Command {
	case CommandShowMain:
		out.Window = window.Main
		w, ok := reg.Lookup(window.Main)
		if !ok {
			return out
		}
		out.record("show", w.Show())
		out.record("focus", w.SetFocus())
		out.Transition = TransitionShown

	case CommandQuit:
		proc.Exit(0)
		out.Transition = TransitionExited

	case CommandUploadFiles:
		out.Window = window.Dropzone
		w, ok := reg.Lookup(window.Dropzone)
		if !ok {
			return out
		}
		out.record("show", w.Show())
		out.record("focus", w.SetFocus())
		out.record("emit", w.Emit(EventOpenFilePicker, nil))
		out.Transition = TransitionShown

	case CommandToggleDropzone:
		out.Window = window.Dropzone
		w, ok := reg.Lookup(window.Dropzone)
		if !ok {
			return out
		}
		toggle(w, msg, &out)
	}

	return out
}

func toggle(w window.Window, msg Message, out *Outcome) {
	visible, err := w.IsVisible()
	out.record("visibility", err)
	if visible {
		out.record("hide", w.Hide())
		out.Transition = TransitionHidden
		return
	}

	if msg.HasIconRect {
		out.Positioned = place(w, msg.IconRect, out)
	}
	out.record("show", w.Show())
	out.record("focus", w.SetFocus())
	out.Transition = TransitionShown
}

// place 无法解析显示器或尺寸时跳过定位，窗口保持原位置
func place(w window.Window, icon geometry.ScreenRect, out *Outcome) bool {
	monitor, ok, err := w.CurrentMonitor()
	out.record("monitor", err)
	if err != nil || !ok {
		return false
	}
	size, err := w.OuterSize()
	out.record("size", err)
	if err != nil {
		return false
	}

	pos := geometry.ComputePosition(icon, size, monitor)
	err = w.SetPosition(pos.X, pos.Y)
	out.record("move", err)
	return err == nil
}
