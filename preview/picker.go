package preview

// WindowDescriptor pairs an opaque OS window handle with its extended
// frame bounds, in the front-to-back Z-order the OS enumeration produced
// (§3 "Window descriptor").
type WindowDescriptor struct {
	Handle uintptr
	Rect   Rect
}

// HitTest returns the index of the first (topmost) descriptor whose Rect
// contains p, iterating front-to-back, or -1 if none does (§4.6 "iterate
// front-to-back and take the first hit (yields the topmost visible
// window)").
func HitTest(windows []WindowDescriptor, p Point) int {
	for i, w := range windows {
		if p.X >= w.Rect.Left && p.X < w.Rect.Right && p.Y >= w.Rect.Top && p.Y < w.Rect.Bottom {
			return i
		}
	}
	return -1
}
