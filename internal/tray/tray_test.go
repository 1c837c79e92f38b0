package tray

import (
	"context"
	"testing"
	"time"

	"vaulter/internal/dispatch"
	"vaulter/internal/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func menuIDs(items []MenuItem) []string {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	return ids
}

func TestBuildMenu(t *testing.T) {
	assert.Equal(t,
		[]string{dispatch.MenuUploadFiles, dispatch.MenuShowMain, dispatch.MenuQuit},
		menuIDs(BuildMenu(VariantFull)))
	assert.Equal(t,
		[]string{dispatch.MenuShowMain, dispatch.MenuQuit},
		menuIDs(BuildMenu(VariantMenuOnly)))

	for _, it := range BuildMenu(VariantFull) {
		assert.NotEmpty(t, it.Label)
	}
}

func TestParseVariant(t *testing.T) {
	v, err := ParseVariant("")
	require.NoError(t, err)
	assert.Equal(t, VariantFull, v)

	v, err = ParseVariant("menu_only")
	require.NoError(t, err)
	assert.Equal(t, VariantMenuOnly, v)
	assert.False(t, v.TrayClickEnabled())

	_, err = ParseVariant("compact")
	assert.Error(t, err)
}

func TestStart_MissingIconFailsFast(t *testing.T) {
	ctrl, err := Start(context.Background(), Options{})
	assert.ErrorIs(t, err, ErrMissingIcon)
	assert.Nil(t, ctrl)
}

type fixedLocator struct {
	rect geometry.ScreenRect
	ok   bool
}

func (l fixedLocator) Locate() (geometry.ScreenRect, bool) { return l.rect, l.ok }

func TestPoster_TranslatesClicks(t *testing.T) {
	ch := make(chan dispatch.Message, 2)
	p := poster{ctx: context.Background(), out: ch}

	rect := geometry.ScreenRect{Position: geometry.Point{X: 5, Y: 6}, Size: geometry.Size{Width: 24, Height: 24}}
	p.iconClicked(fixedLocator{rect: rect, ok: true})
	p.menuClicked(dispatch.MenuShowMain)

	msg := <-ch
	assert.Equal(t, dispatch.CommandToggleDropzone, msg.Command)
	assert.True(t, msg.HasIconRect)
	assert.Equal(t, rect, msg.IconRect)

	msg = <-ch
	assert.Equal(t, dispatch.CommandShowMain, msg.Command)
}

func TestPoster_DropsAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := poster{ctx: ctx, out: make(chan dispatch.Message)}

	done := make(chan struct{})
	go func() {
		p.menuClicked(dispatch.MenuQuit)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("post blocked after context cancellation")
	}
}
