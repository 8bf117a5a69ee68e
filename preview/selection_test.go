package preview

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeRect(t *testing.T) {
	cases := []struct {
		name     string
		a, b     Point
		expected Rect
	}{
		{"already ordered", Point{0, 0}, Point{10, 20}, Rect{0, 0, 10, 20}},
		{"reversed x", Point{10, 0}, Point{0, 20}, Rect{0, 0, 10, 20}},
		{"reversed y", Point{0, 20}, Point{10, 0}, Rect{0, 0, 10, 20}},
		{"reversed both", Point{10, 20}, Point{0, 0}, Rect{0, 0, 10, 20}},
		{"single point", Point{5, 5}, Point{5, 5}, Rect{5, 5, 5, 5}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.expected, NormalizeRect(c.a, c.b))
		})
	}
}

func TestRectValid(t *testing.T) {
	require.True(t, Rect{0, 0, 10, 10}.Valid())
	require.False(t, Rect{0, 0, 1, 10}.Valid(), "1px wide is not valid")
	require.False(t, Rect{0, 0, 10, 1}.Valid(), "1px tall is not valid")
	require.False(t, Rect{0, 0, 0, 0}.Valid())
}

func TestDragStateLifecycle(t *testing.T) {
	var d DragState
	require.False(t, d.Active())

	d.Begin(Point{10, 10})
	require.True(t, d.Active())
	require.True(t, d.TakeRedraw())
	require.False(t, d.TakeRedraw(), "redraw flag clears after being taken")

	d.Move(Point{50, 60})
	require.True(t, d.TakeRedraw())
	require.Equal(t, Rect{10, 10, 50, 60}, d.Rect())

	final := d.End(Point{5, 70})
	require.False(t, d.Active())
	require.Equal(t, Rect{5, 10, 10, 70}, final)
}

func TestDragStateMoveWithoutBeginIsNoop(t *testing.T) {
	var d DragState
	d.Move(Point{1, 1})
	require.False(t, d.Active())
	require.False(t, d.TakeRedraw())
}
