// Package preview implements the Interactive Preview (§4.6): a fullscreen
// overlay over the virtual desktop that lets the user confirm the whole
// desktop, drag out a region, or hover-pick a window before the capture is
// tone-mapped and handed to the saver.
package preview

// Mode selects which of the three overlay behaviors Run drives.
type Mode int

const (
	ModeFullDesktop Mode = iota
	ModeRegion
	ModeWindowPicker
)

func (m Mode) String() string {
	switch m {
	case ModeFullDesktop:
		return "full-desktop"
	case ModeRegion:
		return "region"
	case ModeWindowPicker:
		return "window-picker"
	default:
		return "unknown"
	}
}

// CursorShape reflects the mode's pointer glyph (§4.6 "Cursor shape").
func (m Mode) CursorShape() CursorShape {
	switch m {
	case ModeRegion:
		return CursorCrosshair
	case ModeWindowPicker:
		return CursorHand
	default:
		return CursorArrow
	}
}

// CursorShape names the Win32 system cursor the overlay loads for a mode.
type CursorShape int

const (
	CursorArrow CursorShape = iota
	CursorCrosshair
	CursorHand
)
