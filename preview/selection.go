package preview

// Point is a screen-space coordinate pair, signed to allow multi-monitor
// negative-origin layouts.
type Point struct{ X, Y int32 }

// Rect is a left/top/right/bottom screen-space rectangle, right/bottom
// exclusive, matching internal/d3dcap.Rect's convention.
type Rect struct{ Left, Top, Right, Bottom int32 }

func (r Rect) Width() int32  { return r.Right - r.Left }
func (r Rect) Height() int32 { return r.Bottom - r.Top }

// Valid reports whether both dimensions exceed one pixel (§4.6 "finalize if
// both dimensions exceed 1 pixel").
func (r Rect) Valid() bool { return r.Width() > 1 && r.Height() > 1 }

// DragState tracks the region-selection mode's drag gesture: the anchor
// point recorded on button-down and whether a drag is currently active.
// It is pure state; the Windows-only pump feeds it button/move events and
// reads Rect()/TakeRedraw() to decide what to draw.
type DragState struct {
	active  bool
	anchor  Point
	current Point
	dirty   bool
}

// Begin starts a drag at p (primary-button press, §4.6 "begin drag; capture
// the pointer").
func (d *DragState) Begin(p Point) {
	d.active = true
	d.anchor = p
	d.current = p
	d.dirty = true
}

// Move updates the drag's current point and marks a redraw pending, only
// while a drag is active (§4.6 "On pointer move during drag: set a redraw
// flag").
func (d *DragState) Move(p Point) {
	if !d.active {
		return
	}
	d.current = p
	d.dirty = true
}

// End finalizes the drag and returns the normalized rectangle (§4.6
// "normalize the drag rectangle (min/max of the two endpoints)").
func (d *DragState) End(p Point) Rect {
	d.current = p
	d.active = false
	d.dirty = true
	return NormalizeRect(d.anchor, d.current)
}

// Active reports whether a drag gesture is in progress.
func (d *DragState) Active() bool { return d.active }

// Rect returns the current (possibly in-progress) normalized drag
// rectangle for redraw purposes.
func (d *DragState) Rect() Rect { return NormalizeRect(d.anchor, d.current) }

// TakeRedraw reports whether a redraw is pending and clears the flag,
// mirroring the peek+wait-message loop's "redraw only when dirty" contract.
func (d *DragState) TakeRedraw() bool {
	pending := d.dirty
	d.dirty = false
	return pending
}

// NormalizeRect orders two arbitrary corner points into a left<=right,
// top<=bottom rectangle.
func NormalizeRect(a, b Point) Rect {
	left, right := a.X, b.X
	if left > right {
		left, right = right, left
	}
	top, bottom := a.Y, b.Y
	if top > bottom {
		top, bottom = bottom, top
	}
	return Rect{Left: left, Top: top, Right: right, Bottom: bottom}
}
