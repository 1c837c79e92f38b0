package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var wideMonitor = Monitor{
	Position:    Point{X: 0, Y: 0},
	Size:        Size{Width: 1440, Height: 900},
	ScaleFactor: 1,
}

func TestComputePosition_CentersUnderIcon(t *testing.T) {
	icon := ScreenRect{Position: Point{X: 1000, Y: 20}, Size: Size{Width: 24, Height: 24}}
	got := ComputePosition(icon, Size{Width: 320, Height: 200}, wideMonitor)

	assert.Equal(t, Point{X: 852, Y: 44}, got)
}

func TestComputePosition_CenteringFormula(t *testing.T) {
	cases := []struct {
		name   string
		iconX  int
		iconW  int
		window int
	}{
		{"even", 400, 20, 200},
		{"odd icon", 401, 21, 200},
		{"odd window", 500, 16, 301},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			icon := ScreenRect{Position: Point{X: tc.iconX, Y: 0}, Size: Size{Width: tc.iconW, Height: 22}}
			got := ComputePosition(icon, Size{Width: tc.window, Height: 100}, wideMonitor)

			cx := tc.iconX + tc.iconW/2
			assert.Equal(t, cx-tc.window/2, got.X)
		})
	}
}

func TestComputePosition_RightEdgeClamp(t *testing.T) {
	icon := ScreenRect{Position: Point{X: 1420, Y: 0}, Size: Size{Width: 20, Height: 24}}
	window := Size{Width: 320, Height: 200}

	got := ComputePosition(icon, window, wideMonitor)

	assert.Equal(t, 1440-320-Padding, got.X)
	assert.Equal(t, 24, got.Y)
}

func TestComputePosition_RightEdgeClampOnOffsetMonitor(t *testing.T) {
	monitor := Monitor{Position: Point{X: 1920, Y: 0}, Size: Size{Width: 2560, Height: 1440}, ScaleFactor: 2}
	icon := ScreenRect{Position: Point{X: 4460, Y: 0}, Size: Size{Width: 48, Height: 48}}
	window := Size{Width: 640, Height: 400}

	got := ComputePosition(icon, window, monitor)

	assert.Equal(t, 1920+2560-640-Padding, got.X)
}

func TestComputePosition_LeftEdgeClamp(t *testing.T) {
	icon := ScreenRect{Position: Point{X: 10, Y: 870}, Size: Size{Width: 24, Height: 30}}

	got := ComputePosition(icon, Size{Width: 320, Height: 200}, wideMonitor)

	assert.Equal(t, Padding, got.X)
	assert.Equal(t, 900, got.Y)
}

func TestComputePosition_WiderThanMonitorPinsLeft(t *testing.T) {
	monitor := Monitor{Position: Point{X: -1280, Y: 0}, Size: Size{Width: 1280, Height: 800}, ScaleFactor: 1}
	icon := ScreenRect{Position: Point{X: -600, Y: 0}, Size: Size{Width: 24, Height: 24}}

	got := ComputePosition(icon, Size{Width: 2000, Height: 300}, monitor)

	assert.Equal(t, -1280+Padding, got.X)
}

func TestComputePosition_NoBottomClamp(t *testing.T) {
	short := Monitor{Size: Size{Width: 1440, Height: 300}, ScaleFactor: 1}
	icon := ScreenRect{Position: Point{X: 700, Y: 280}, Size: Size{Width: 24, Height: 24}}

	got := ComputePosition(icon, Size{Width: 320, Height: 500}, short)

	assert.Equal(t, 304, got.Y)
}

func TestLogicalToPhysical(t *testing.T) {
	r := LogicalRect{X: 500, Y: 10, Width: 12, Height: 11}.ToPhysical(2)
	assert.Equal(t, ScreenRect{Position: Point{X: 1000, Y: 20}, Size: Size{Width: 24, Height: 22}}, r)

	s := LogicalSize{Width: 160, Height: 100.5}.ToPhysical(1.5)
	assert.Equal(t, Size{Width: 240, Height: 151}, s)

	assert.Equal(t, Size{Width: 10, Height: 10}, LogicalSize{Width: 10, Height: 10}.ToPhysical(0))
}
