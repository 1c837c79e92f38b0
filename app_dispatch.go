// app_dispatch.go - 托盘消息分发循环
// 托盘回调只投递消息，这里单 goroutine 顺序处理，窗口操作不会并发

package main

import (
	"context"
	"sync/atomic"

	"vaulter/internal/dispatch"
	"vaulter/internal/window"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// processControl 通过 Wails 运行时退出，关闭流程由 OnShutdown 统一收口
type processControl struct {
	app *App
}

func (p processControl) Exit(code int) {
	a := p.app
	if !atomic.CompareAndSwapInt32(&a.quitting, 0, 1) {
		return
	}
	a.logger.Info("👋 收到退出请求", "code", code)
	if a.ctx != nil {
		runtime.Quit(a.ctx)
	}
}

// startDispatchLoop 启动消息分发循环
func (a *App) startDispatchLoop() {
	ctx, cancel := context.WithCancel(a.ctx)
	done := make(chan struct{})

	a.mu.Lock()
	a.loopCtx = ctx
	a.loopCancel = cancel
	a.loopDone = done
	a.mu.Unlock()

	go a.runDispatchLoop(ctx, a.host, processControl{app: a}, done)
}

// loopContext 托盘投递消息所用的 context，循环停止后投递不再阻塞
func (a *App) loopContext() context.Context {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.loopCtx == nil {
		return context.Background()
	}
	return a.loopCtx
}

func (a *App) runDispatchLoop(ctx context.Context, reg window.Registry, proc dispatch.ProcessControl, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-a.messages:
			a.logOutcome(dispatch.Handle(reg, proc, msg))
		}
	}
}

// logOutcome 窗口操作失败只记录调试日志，不重试
func (a *App) logOutcome(out dispatch.Outcome) {
	if out.Command == dispatch.CommandNone {
		return
	}
	attrs := []any{
		"command", out.Command.String(),
		"window", out.Window,
		"transition", out.Transition,
		"positioned", out.Positioned,
	}
	if len(out.Errors) > 0 {
		errs := make([]string, 0, len(out.Errors))
		for _, err := range out.Errors {
			errs = append(errs, err.Error())
		}
		attrs = append(attrs, "ignored_errors", errs)
	}
	a.logger.Debug("📨 托盘消息已处理", attrs...)
}
