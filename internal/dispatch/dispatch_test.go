package dispatch

import (
	"errors"
	"testing"

	"vaulter/internal/geometry"
	"vaulter/internal/window"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWindow struct {
	name     string
	visible  bool
	calls    []string
	pos      *geometry.Point
	monitor  *geometry.Monitor
	size     geometry.Size
	emitted  []string
	showErr  error
	focusErr error
}

func (w *fakeWindow) Name() string { return w.name }

func (w *fakeWindow) Show() error {
	w.calls = append(w.calls, "show")
	if w.showErr != nil {
		return w.showErr
	}
	w.visible = true
	return nil
}

func (w *fakeWindow) Hide() error {
	w.calls = append(w.calls, "hide")
	w.visible = false
	return nil
}

func (w *fakeWindow) IsVisible() (bool, error) { return w.visible, nil }

func (w *fakeWindow) SetFocus() error {
	w.calls = append(w.calls, "focus")
	return w.focusErr
}

func (w *fakeWindow) SetPosition(x, y int) error {
	w.calls = append(w.calls, "move")
	w.pos = &geometry.Point{X: x, Y: y}
	return nil
}

func (w *fakeWindow) CurrentMonitor() (geometry.Monitor, bool, error) {
	if w.monitor == nil {
		return geometry.Monitor{}, false, nil
	}
	return *w.monitor, true, nil
}

func (w *fakeWindow) OuterSize() (geometry.Size, error) { return w.size, nil }

func (w *fakeWindow) Emit(event string, _ any) error {
	w.emitted = append(w.emitted, event)
	return nil
}

type fakeRegistry map[string]*fakeWindow

func (r fakeRegistry) Lookup(name string) (window.Window, bool) {
	w, ok := r[name]
	if !ok {
		return nil, false
	}
	return w, true
}

type fakeProcess struct {
	exits []int
}

func (p *fakeProcess) Exit(code int) { p.exits = append(p.exits, code) }

func newRegistry() (fakeRegistry, *fakeWindow, *fakeWindow) {
	main := &fakeWindow{name: window.Main}
	drop := &fakeWindow{
		name:    window.Dropzone,
		size:    geometry.Size{Width: 320, Height: 200},
		monitor: &geometry.Monitor{Size: geometry.Size{Width: 1440, Height: 900}, ScaleFactor: 1},
	}
	return fakeRegistry{window.Main: main, window.Dropzone: drop}, main, drop
}

var iconRect = geometry.ScreenRect{
	Position: geometry.Point{X: 1000, Y: 20},
	Size:     geometry.Size{Width: 24, Height: 24},
}

func TestMenuMessage(t *testing.T) {
	assert.Equal(t, CommandShowMain, MenuMessage("show_main").Command)
	assert.Equal(t, CommandQuit, MenuMessage("quit").Command)
	assert.Equal(t, CommandUploadFiles, MenuMessage("upload_files").Command)
	assert.Equal(t, CommandNone, MenuMessage("preferences").Command)
	assert.Equal(t, CommandNone, MenuMessage("").Command)
}

func TestHandle_ShowMain(t *testing.T) {
	reg, main, drop := newRegistry()
	proc := &fakeProcess{}

	out := Handle(reg, proc, MenuMessage(MenuShowMain))

	assert.Equal(t, TransitionShown, out.Transition)
	assert.Equal(t, []string{"show", "focus"}, main.calls)
	assert.True(t, main.visible)
	assert.Empty(t, drop.calls)
	assert.Empty(t, proc.exits)

	// 已可见时再次点击保持可见
	out = Handle(reg, proc, MenuMessage(MenuShowMain))
	assert.Equal(t, TransitionShown, out.Transition)
	assert.True(t, main.visible)
}

func TestHandle_Quit(t *testing.T) {
	reg, main, drop := newRegistry()
	proc := &fakeProcess{}

	out := Handle(reg, proc, MenuMessage(MenuQuit))

	assert.Equal(t, TransitionExited, out.Transition)
	assert.Equal(t, []int{0}, proc.exits)
	assert.Empty(t, main.calls)
	assert.Empty(t, drop.calls)
}

func TestHandle_UploadFiles(t *testing.T) {
	reg, main, drop := newRegistry()

	out := Handle(reg, &fakeProcess{}, MenuMessage(MenuUploadFiles))

	assert.Equal(t, TransitionShown, out.Transition)
	assert.Equal(t, []string{"show", "focus"}, drop.calls)
	assert.Equal(t, []string{EventOpenFilePicker}, drop.emitted)
	assert.Nil(t, drop.pos)
	assert.Empty(t, main.calls)
}

func TestHandle_UnknownMenuItemIsNoop(t *testing.T) {
	reg, main, drop := newRegistry()
	proc := &fakeProcess{}

	out := Handle(reg, proc, MenuMessage("check_updates"))

	assert.Equal(t, TransitionIgnored, out.Transition)
	assert.Empty(t, main.calls)
	assert.Empty(t, drop.calls)
	assert.Empty(t, proc.exits)
}

func TestHandle_MissingWindowIsIgnored(t *testing.T) {
	reg := fakeRegistry{}

	for _, msg := range []Message{
		MenuMessage(MenuShowMain),
		MenuMessage(MenuUploadFiles),
		TrayClickMessage(iconRect, true),
	} {
		out := Handle(reg, &fakeProcess{}, msg)
		assert.Equal(t, TransitionIgnored, out.Transition)
		assert.Empty(t, out.Errors)
	}
}

func TestHandle_TrayToggleRoundTrip(t *testing.T) {
	reg, _, drop := newRegistry()

	out := Handle(reg, &fakeProcess{}, TrayClickMessage(iconRect, true))
	assert.Equal(t, TransitionShown, out.Transition)
	assert.True(t, out.Positioned)
	require.NotNil(t, drop.pos)
	assert.Equal(t, geometry.Point{X: 852, Y: 44}, *drop.pos)
	assert.Equal(t, []string{"move", "show", "focus"}, drop.calls)
	assert.True(t, drop.visible)

	out = Handle(reg, &fakeProcess{}, TrayClickMessage(iconRect, true))
	assert.Equal(t, TransitionHidden, out.Transition)
	assert.False(t, drop.visible)
}

func TestHandle_TrayToggleWithoutMonitorShowsInPlace(t *testing.T) {
	reg, _, drop := newRegistry()
	drop.monitor = nil

	out := Handle(reg, &fakeProcess{}, TrayClickMessage(iconRect, true))

	assert.Equal(t, TransitionShown, out.Transition)
	assert.False(t, out.Positioned)
	assert.Nil(t, drop.pos)
	assert.Equal(t, []string{"show", "focus"}, drop.calls)
}

func TestHandle_TrayToggleWithoutIconRect(t *testing.T) {
	reg, _, drop := newRegistry()

	out := Handle(reg, &fakeProcess{}, TrayClickMessage(geometry.ScreenRect{}, false))

	assert.Equal(t, TransitionShown, out.Transition)
	assert.False(t, out.Positioned)
	assert.Nil(t, drop.pos)
}

func TestHandle_WindowErrorsAreCollectedNotActedOn(t *testing.T) {
	reg, main, _ := newRegistry()
	boom := errors.New("boom")
	main.showErr = boom
	main.focusErr = boom

	out := Handle(reg, &fakeProcess{}, MenuMessage(MenuShowMain))

	assert.Equal(t, TransitionShown, out.Transition)
	require.Len(t, out.Errors, 2)
	assert.ErrorIs(t, out.Errors[0], boom)
	// 不重试
	assert.Equal(t, []string{"show", "focus"}, main.calls)
}
