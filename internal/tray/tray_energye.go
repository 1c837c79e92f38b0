//go:build !stub && !getlantern

package tray

import (
	"context"
	"sync"

	"github.com/energye/systray"
)

type systrayController struct {
	opts      Options
	poster    poster
	quitCh    chan struct{}
	once      sync.Once
	running   bool
	runningMu sync.Mutex
}

func (c *systrayController) Stop() {
	c.once.Do(func() {
		c.runningMu.Lock()
		if c.running {
			systray.Quit()
			c.running = false
		}
		c.runningMu.Unlock()
		close(c.quitCh)
	})
}

func start(ctx context.Context, opts Options) (Controller, error) {
	ctrl := &systrayController{
		opts:   opts,
		poster: poster{ctx: ctx, out: opts.Messages},
		quitCh: make(chan struct{}),
	}

	// systray.Run 会阻塞，在单独的 goroutine 中运行
	go func() {
		ctrl.runningMu.Lock()
		ctrl.running = true
		ctrl.runningMu.Unlock()

		systray.Run(ctrl.onReady, ctrl.onExit)
	}()

	return ctrl, nil
}

func (c *systrayController) onReady() {
	systray.SetIcon(c.opts.Icon)
	systray.SetTooltip(c.opts.Tooltip)

	// 左键：full 配置切换 dropzone，menu_only 配置弹出菜单
	if c.opts.Variant.TrayClickEnabled() {
		systray.SetOnClick(func(menu systray.IMenu) {
			c.poster.iconClicked(c.opts.Locator)
		})
	} else {
		systray.SetOnClick(func(menu systray.IMenu) {
			_ = menu.ShowMenu()
		})
	}
	systray.SetOnRClick(func(menu systray.IMenu) {
		_ = menu.ShowMenu()
	})

	for _, item := range c.opts.Menu {
		id := item.ID
		if item.separatorBefore() {
			systray.AddSeparator()
		}
		m := systray.AddMenuItem(item.Label, item.Tooltip)
		m.Click(func() {
			select {
			case <-c.quitCh:
				return
			default:
			}
			c.poster.menuClicked(id)
		})
	}
}

func (c *systrayController) onExit() {
	c.runningMu.Lock()
	c.running = false
	c.runningMu.Unlock()
}
