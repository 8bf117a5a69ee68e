package d3dcap

import "testing"

import "github.com/stretchr/testify/require"

func TestVirtualDesktopBoundsSideBySide(t *testing.T) {
	left := Rect{Left: 0, Top: 0, Right: 1920, Bottom: 1080}
	right := Rect{Left: 1920, Top: 0, Right: 1920 + 2560, Bottom: 1440}
	bounds := VirtualDesktopBounds([]Rect{left, right})
	require.Equal(t, Rect{Left: 0, Top: 0, Right: 4480, Bottom: 1440}, bounds)
	require.Equal(t, int32(4480), bounds.Width())
	require.Equal(t, int32(1440), bounds.Height())
}

func TestVirtualDesktopBoundsNegativeOrigin(t *testing.T) {
	primary := Rect{Left: -1920, Top: -200, Right: 0, Bottom: 880}
	secondary := Rect{Left: 0, Top: 0, Right: 1920, Bottom: 1080}
	bounds := VirtualDesktopBounds([]Rect{primary, secondary})
	require.Equal(t, Rect{Left: -1920, Top: -200, Right: 1920, Bottom: 1080}, bounds)
}

func TestRectIntersectDisjointIsEmpty(t *testing.T) {
	a := Rect{Left: 0, Top: 0, Right: 10, Bottom: 10}
	b := Rect{Left: 20, Top: 20, Right: 30, Bottom: 30}
	require.True(t, a.Intersect(b).Empty())
}

func TestComputeBlitRectFullyInside(t *testing.T) {
	// second monitor at x=1920..4480, mapped into a 4480x1440 composite.
	out := Rect{Left: 1920, Top: 0, Right: 4480, Bottom: 1440}
	b := ComputeBlitRect(out, 2560, 1440, 4480, 1440)
	require.Equal(t, BlitRect{SrcX: 0, SrcY: 0, DstX: 1920, DstY: 0, Width: 2560, Height: 1440}, b)
}

func TestComputeBlitRectTrimsNegativeOrigin(t *testing.T) {
	// output rect straddles the composite's negative-origin edge.
	out := Rect{Left: -100, Top: 0, Right: 1820, Bottom: 1080}
	b := ComputeBlitRect(out, 1920, 1080, 4480, 1440)
	require.Equal(t, int32(0), b.DstX)
	require.Equal(t, int32(100), b.SrcX)
	require.Equal(t, int32(1820), b.Width)
}

func TestComputeBlitRectTrimsBeyondCompositeEdge(t *testing.T) {
	out := Rect{Left: 4400, Top: 0, Right: 6400, Bottom: 1080}
	b := ComputeBlitRect(out, 2000, 1080, 4480, 1440)
	require.Equal(t, int32(80), b.Width)
}

func TestComputeBlitRectClampsShortSourceTexture(t *testing.T) {
	out := Rect{Left: 0, Top: 0, Right: 1920, Bottom: 1080}
	b := ComputeBlitRect(out, 1920, 1079, 1920, 1080)
	require.Equal(t, int32(1079), b.Height)
}
