package preview

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDimStrips(t *testing.T) {
	bounds := Rect{0, 0, 100, 100}
	sel := Rect{20, 30, 60, 70}
	strips := DimStrips(bounds, sel)
	require.Len(t, strips, 4)
	require.Contains(t, strips, Rect{0, 0, 100, 30})   // top
	require.Contains(t, strips, Rect{0, 70, 100, 100})  // bottom
	require.Contains(t, strips, Rect{0, 30, 20, 70})    // left
	require.Contains(t, strips, Rect{60, 30, 100, 70})  // right
}

func TestDimStripsFullBoundsSelection(t *testing.T) {
	bounds := Rect{0, 0, 100, 100}
	strips := DimStrips(bounds, bounds)
	require.Empty(t, strips, "selection covering all bounds leaves nothing to dim")
}

func TestDimStripsClampsOutOfBoundsSelection(t *testing.T) {
	bounds := Rect{0, 0, 100, 100}
	sel := Rect{-50, -50, 150, 150}
	strips := DimStrips(bounds, sel)
	require.Empty(t, strips)
}

func TestBorderStrokes(t *testing.T) {
	outer, inner := BorderStrokes(Rect{10, 10, 20, 20})
	require.Equal(t, Rect{6, 6, 24, 24}, outer)
	require.Equal(t, Rect{9, 9, 21, 21}, inner)
}

func TestLabelText(t *testing.T) {
	require.Equal(t, "1920 x 1080", LabelText(Rect{0, 0, 1920, 1080}))
}
