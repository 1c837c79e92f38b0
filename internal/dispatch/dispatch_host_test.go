package dispatch

import (
	"testing"

	"vaulter/internal/geometry"
	"vaulter/internal/window"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nativeWindow 模拟 Wails 的单个原生窗口
type nativeWindow struct {
	visible bool
	pos     [2]int
	size    [2]int
}

func (n *nativeWindow) Show()                { n.visible = true }
func (n *nativeWindow) Hide()                { n.visible = false }
func (n *nativeWindow) Unminimise()          {}
func (n *nativeWindow) SetPosition(x, y int) { n.pos = [2]int{x, y} }
func (n *nativeWindow) SetSize(w, h int)     { n.size = [2]int{w, h} }
func (n *nativeWindow) Emit(string, ...any)  {}

func (n *nativeWindow) GetPosition() (int, int) { return n.pos[0], n.pos[1] }
func (n *nativeWindow) GetSize() (int, int)     { return n.size[0], n.size[1] }

func (n *nativeWindow) Screens() ([]window.Screen, error) {
	return []window.Screen{{
		IsCurrent:    true,
		Size:         geometry.Size{Width: 1440, Height: 900},
		PhysicalSize: geometry.Size{Width: 1440, Height: 900},
	}}, nil
}

func newDesktop(t *testing.T) (*window.Host, *nativeWindow) {
	t.Helper()
	native := &nativeWindow{visible: true, pos: [2]int{200, 100}, size: [2]int{1024, 720}}
	host := window.NewHost(window.HostOptions{
		Views: []window.ViewOptions{
			{Name: window.Main, Width: 1024, Height: 720},
			{Name: window.Dropzone, Width: 320, Height: 200, Overlay: true},
		},
		InitialView: window.Main,
	})
	host.Attach(native)
	return host, native
}

func mainVisible(t *testing.T, host *window.Host) bool {
	t.Helper()
	w, ok := host.Lookup(window.Main)
	require.True(t, ok)
	visible, err := w.IsVisible()
	require.NoError(t, err)
	return visible
}

func TestHandle_TrayTogglesLeaveMainUntouched(t *testing.T) {
	host, native := newDesktop(t)
	proc := &fakeProcess{}
	icon := geometry.ScreenRect{
		Position: geometry.Point{X: 1380, Y: 0},
		Size:     geometry.Size{Width: 24, Height: 24},
	}

	require.True(t, mainVisible(t, host))

	out := Handle(host, proc, TrayClickMessage(icon, true))
	assert.Equal(t, TransitionShown, out.Transition)
	assert.True(t, out.Positioned)
	assert.Empty(t, out.Errors)
	assert.Equal(t, window.Dropzone, host.ActiveView())
	assert.Equal(t, [2]int{320, 200}, native.size)
	assert.NotEqual(t, [2]int{200, 100}, native.pos)
	assert.True(t, mainVisible(t, host))

	out = Handle(host, proc, TrayClickMessage(icon, true))
	assert.Equal(t, TransitionHidden, out.Transition)
	assert.Empty(t, out.Errors)
	assert.True(t, native.visible)
	assert.True(t, mainVisible(t, host))

	out = Handle(host, proc, MenuMessage(MenuShowMain))
	assert.Equal(t, TransitionShown, out.Transition)
	assert.Empty(t, out.Errors)

	assert.Equal(t, window.Main, host.ActiveView())
	assert.True(t, mainVisible(t, host))
	assert.Equal(t, [2]int{200, 100}, native.pos)
	assert.Equal(t, [2]int{1024, 720}, native.size)
}

func TestHandle_TrayToggleWithMainHidden(t *testing.T) {
	host, native := newDesktop(t)
	proc := &fakeProcess{}

	main, _ := host.Lookup(window.Main)
	require.NoError(t, main.Hide())
	require.False(t, native.visible)

	Handle(host, proc, TrayClickMessage(geometry.ScreenRect{}, false))
	assert.True(t, native.visible)
	assert.False(t, mainVisible(t, host))

	Handle(host, proc, TrayClickMessage(geometry.ScreenRect{}, false))
	assert.False(t, native.visible)
	assert.False(t, mainVisible(t, host))
	assert.Empty(t, proc.exits)
}
