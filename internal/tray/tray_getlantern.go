//go:build getlantern && !stub

package tray

import (
	"context"
	"reflect"
	"sync"

	"github.com/getlantern/systray"
)

// getlantern/systray 不提供图标点击事件，只支持菜单
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

	ids := make([]string, 0, len(c.opts.Menu))
	cases := make([]reflect.SelectCase, 0, len(c.opts.Menu)+1)
	cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(c.quitCh)})
	for _, item := range c.opts.Menu {
		if item.separatorBefore() {
			systray.AddSeparator()
		}
		m := systray.AddMenuItem(item.Label, item.Tooltip)
		ids = append(ids, item.ID)
		cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(m.ClickedCh)})
	}

	// 菜单项数量由配置决定，用 reflect.Select 监听全部 ClickedCh
	go func() {
		for {
			chosen, _, ok := reflect.Select(cases)
			if chosen == 0 || !ok {
				return
			}
			c.poster.menuClicked(ids[chosen-1])
		}
	}()
}

func (c *systrayController) onExit() {
	c.runningMu.Lock()
	c.running = false
	c.runningMu.Unlock()
}
