package preview

import "fmt"

// DimStrips computes the four rectangles outside sel, within bounds, that
// the region/window-picker overlays dim at 50% black (§4.6 "draws: a
// dimming rectangle over all four strips outside the selection (top,
// bottom, left, right)"). Any strip with zero area is omitted.
func DimStrips(bounds, sel Rect) []Rect {
	sel = clampRect(sel, bounds)
	var strips []Rect
	if top := (Rect{bounds.Left, bounds.Top, bounds.Right, sel.Top}); top.Height() > 0 {
		strips = append(strips, top)
	}
	if bottom := (Rect{bounds.Left, sel.Bottom, bounds.Right, bounds.Bottom}); bottom.Height() > 0 {
		strips = append(strips, bottom)
	}
	if left := (Rect{bounds.Left, sel.Top, sel.Left, sel.Bottom}); left.Width() > 0 {
		strips = append(strips, left)
	}
	if right := (Rect{sel.Right, sel.Top, bounds.Right, sel.Bottom}); right.Width() > 0 {
		strips = append(strips, right)
	}
	return strips
}

func clampRect(r, bounds Rect) Rect {
	if r.Left < bounds.Left {
		r.Left = bounds.Left
	}
	if r.Top < bounds.Top {
		r.Top = bounds.Top
	}
	if r.Right > bounds.Right {
		r.Right = bounds.Right
	}
	if r.Bottom > bounds.Bottom {
		r.Bottom = bounds.Bottom
	}
	if r.Right < r.Left {
		r.Right = r.Left
	}
	if r.Bottom < r.Top {
		r.Bottom = r.Top
	}
	return r
}

// BorderStrokes returns the outer (4px black) and inner (3px green) stroke
// rectangles for the double-stroked selection/monitor border (§4.6
// "double-stroked border": "4-pixel black outer stroke + 3-pixel green
// inner stroke").
func BorderStrokes(r Rect) (outer, inner Rect) {
	outer = Rect{r.Left - 4, r.Top - 4, r.Right + 4, r.Bottom + 4}
	inner = Rect{r.Left - 1, r.Top - 1, r.Right + 1, r.Bottom + 1}
	return outer, inner
}

// LabelOrigin returns the lower-right anchor point for the "W x H"
// dimension label within r, inset by margin (§4.6 "'W x H' label in the
// lower-right of each monitor rectangle").
func LabelOrigin(r Rect, margin int32) Point {
	return Point{X: r.Right - margin, Y: r.Bottom - margin}
}

// LabelText formats the dimension label text for a rectangle.
func LabelText(r Rect) string {
	return fmt.Sprintf("%d x %d", r.Width(), r.Height())
}
