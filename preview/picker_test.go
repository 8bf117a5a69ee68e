package preview

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHitTestReturnsTopmostMatch(t *testing.T) {
	windows := []WindowDescriptor{
		{Handle: 1, Rect: Rect{0, 0, 50, 50}},   // topmost
		{Handle: 2, Rect: Rect{0, 0, 100, 100}}, // overlaps 1, further back
	}
	require.Equal(t, 0, HitTest(windows, Point{10, 10}))
	require.Equal(t, 1, HitTest(windows, Point{60, 60}))
}

func TestHitTestNoMatch(t *testing.T) {
	windows := []WindowDescriptor{{Handle: 1, Rect: Rect{0, 0, 10, 10}}}
	require.Equal(t, -1, HitTest(windows, Point{20, 20}))
}

func TestHitTestRectIsRightBottomExclusive(t *testing.T) {
	windows := []WindowDescriptor{{Handle: 1, Rect: Rect{0, 0, 10, 10}}}
	require.Equal(t, 0, HitTest(windows, Point{9, 9}))
	require.Equal(t, -1, HitTest(windows, Point{10, 10}))
}
