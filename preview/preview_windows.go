//go:build windows

package preview

import (
	"errors"
	"fmt"
	"syscall"
	"time"

	"github.com/lxn/win"

	"hdrcap/frame"
	"hdrcap/internal/d3dcap"
	"hdrcap/log"
	"hdrcap/tonemap"
	"hdrcap/windowcapture"
)

// ErrCancelled is returned by Run when the user cancels via Esc or a
// secondary-button click in a selection mode (§7 "User cancellation ...
// returned as a normal 'no save' result, no error surfaced" — the caller
// checks for this sentinel rather than treating it as failure).
var ErrCancelled = errors.New("preview: cancelled by user")

// Result is the frame confirmed by the user, already CPU-materialized and
// ready for tone-mapping and save.
type Result struct {
	Frame frame.Frame
}

const (
	wmPaint       = 0x000F
	wmDestroy     = 0x0002
	wmClose       = 0x0010
	wmLButtonDown = 0x0201
	wmLButtonUp   = 0x0202
	wmRButtonDown = 0x0204
	wmRButtonUp   = 0x0205
	wmMButtonDown = 0x0207
	wmMouseMove   = 0x0200
	wmKeyDown     = 0x0100
	vkEscape      = 0x1B
)

var currentOverlay *overlayState

func wndProc(hwnd win.HWND, msg uint32, wparam, lparam uintptr) uintptr {
	st := currentOverlay
	if st == nil {
		return win.DefWindowProc(hwnd, msg, wparam, lparam)
	}

	switch msg {
	case wmPaint:
		paint(hwnd, st)
		return 0

	case wmMouseMove:
		p := Point{X: int32(int16(lparam & 0xFFFF)), Y: int32(int16((lparam >> 16) & 0xFFFF))}
		switch st.mode {
		case ModeRegion:
			if st.drag.Active() {
				st.drag.Move(p)
				win.InvalidateRect(hwnd, nil, false)
			}
		case ModeWindowPicker:
			screen := Point{X: p.X + st.bounds.Left, Y: p.Y + st.bounds.Top}
			idx := HitTest(st.windows, screen)
			if idx != st.hovered {
				st.hovered = idx
				win.InvalidateRect(hwnd, nil, false)
			}
		}
		return 0

	case wmLButtonDown:
		if st.mode == ModeRegion {
			p := Point{X: int32(int16(lparam & 0xFFFF)), Y: int32(int16((lparam >> 16) & 0xFFFF))}
			st.drag.Begin(p)
			win.SetCapture(hwnd)
		}
		return 0

	case wmLButtonUp:
		switch st.mode {
		case ModeFullDesktop:
			st.confirmed, st.done = true, true
			win.PostQuitMessage(0)
		case ModeRegion:
			p := Point{X: int32(int16(lparam & 0xFFFF)), Y: int32(int16((lparam >> 16) & 0xFFFF))}
			win.ReleaseCapture()
			sel := st.drag.End(p)
			if sel.Valid() {
				st.result = Rect{sel.Left + st.bounds.Left, sel.Top + st.bounds.Top, sel.Right + st.bounds.Left, sel.Bottom + st.bounds.Top}
				st.confirmed, st.done = true, true
				win.PostQuitMessage(0)
			}
		case ModeWindowPicker:
			if st.hovered >= 0 {
				st.pickedIdx = st.hovered
				st.confirmed, st.done = true, true
				win.PostQuitMessage(0)
			}
		}
		return 0

	case wmMButtonDown, wmRButtonDown:
		if st.mode == ModeFullDesktop {
			st.confirmed, st.done = true, true
			win.PostQuitMessage(0)
		}
		return 0

	case wmRButtonUp:
		if st.mode != ModeFullDesktop {
			st.confirmed, st.done = false, true
			win.PostQuitMessage(0)
		}
		return 0

	case wmKeyDown:
		if wparam == vkEscape {
			st.confirmed, st.done = false, true
			win.PostQuitMessage(0)
		}
		return 0

	case wmDestroy, wmClose:
		st.done = true
		win.PostQuitMessage(0)
		return 0
	}
	return win.DefWindowProc(hwnd, msg, wparam, lparam)
}

// runFullDesktopPump uses a plain blocking GetMessage loop (§4.6
// "full-desktop mode uses a plain blocking get-message"); no per-frame
// redraw is needed since the composite never changes mid-preview.
func runFullDesktopPump(hwnd win.HWND) {
	var msg win.MSG
	for win.GetMessage(&msg, 0, 0, 0) != 0 {
		win.TranslateMessage(&msg)
		win.DispatchMessage(&msg)
	}
}

// runRedrawOnDirtyPump uses peek+wait-message so region/window-picker
// modes only repaint when the pure state machine (DragState/hover index)
// marks a redraw pending, avoiding a busy spin (§4.6, §5).
func runRedrawOnDirtyPump(hwnd win.HWND, st *overlayState) {
	var msg win.MSG
	for !st.done {
		for win.PeekMessage(&msg, 0, 0, 0, win.PM_REMOVE) != 0 {
			win.TranslateMessage(&msg)
			win.DispatchMessage(&msg)
			if st.done {
				return
			}
		}
		if st.mode == ModeRegion && st.drag.TakeRedraw() {
			win.InvalidateRect(hwnd, nil, false)
		}
		win.WaitMessage()
	}
}

// Run drives one full overlay invocation (§4.6's common shell plus the
// mode-specific input handling) and returns the confirmed capture, already
// materialized to CPU pixels. composite must already carry a GPU texture
// (and, for preview rendering, will be materialized and tone-mapped here);
// bounds is the virtual-desktop rectangle the composite covers, and
// monitors is each attached output's bounds-relative rectangle, used to
// draw one full-desktop-mode border and label per monitor (§4.6).
func Run(mode Mode, composite frame.Frame, bounds Rect, monitors []Rect, reader frame.Reader, device *d3dcap.Device, windowCaptureTimeout time.Duration, paperWhiteNits float32, logger log.Logger) (Result, error) {
	if logger == nil {
		logger = log.Default
	}
	if err := composite.Materialize(reader); err != nil {
		return Result{}, fmt.Errorf("preview: %w", err)
	}
	preview, err := tonemap.ToneMap(composite, paperWhiteNits)
	if err != nil {
		return Result{}, fmt.Errorf("preview: %w", err)
	}

	st := &overlayState{mode: mode, bounds: bounds, monitors: monitors, hovered: -1, pickedIdx: -1}
	st.preview = materializePreviewBitmap(composite, preview)
	if mode == ModeWindowPicker {
		st.windows = EnumTopLevelWindows()
	}

	inst := win.GetModuleHandle(nil)
	if err := registerOverlayClass(inst, syscall.NewCallback(wndProc)); err != nil {
		return Result{}, fmt.Errorf("preview: %w", err)
	}

	cursor := loadSystemCursor(mode.CursorShape())
	hwnd, err := createOverlayWindow(bounds, cursor)
	if err != nil {
		return Result{}, fmt.Errorf("preview: %w", err)
	}
	defer win.DestroyWindow(hwnd)

	currentOverlay = st
	defer func() { currentOverlay = nil }()

	if mode == ModeFullDesktop {
		runFullDesktopPump(hwnd)
	} else {
		runRedrawOnDirtyPump(hwnd, st)
	}

	if !st.confirmed {
		return Result{}, ErrCancelled
	}

	switch mode {
	case ModeFullDesktop:
		return Result{Frame: composite}, nil

	case ModeRegion:
		local := Rect{st.result.Left - bounds.Left, st.result.Top - bounds.Top, st.result.Right - bounds.Left, st.result.Bottom - bounds.Top}
		return Result{Frame: frame.Crop(composite, local.Left, local.Top, local.Width(), local.Height())}, nil

	case ModeWindowPicker:
		w := st.windows[st.pickedIdx]
		wcFrame, err := windowcapture.Capture(device, win.HWND(w.Handle), windowCaptureTimeout)
		if err == nil {
			return Result{Frame: wcFrame}, nil
		}
		logger.Warnf("preview: window capture failed, falling back to crop: %v", err)
		local := Rect{w.Rect.Left - bounds.Left, w.Rect.Top - bounds.Top, w.Rect.Right - bounds.Left, w.Rect.Bottom - bounds.Top}
		return Result{Frame: frame.Crop(composite, local.Left, local.Top, local.Width(), local.Height())}, nil
	}

	return Result{}, fmt.Errorf("preview: unknown mode %s", mode)
}
