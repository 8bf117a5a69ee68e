//go:build windows

package preview

import (
	"fmt"
	"syscall"
	"unsafe"

	"github.com/lxn/win"

	"hdrcap/frame"
)

const overlayClassName = "hdrcap-preview-overlay"

var (
	modUser32          = syscall.NewLazyDLL("user32.dll")
	procLoadCursorW    = modUser32.NewProc("LoadCursorW")
	overlayClassAtom   win.ATOM
	overlayInstance    win.HINSTANCE
)

// idcArrow/idcCross/idcHand are the standard cursor resource ordinals
// (winuser.h IDC_*), used with LoadCursorW(nil, id) since lxn/win does not
// export cursor-loading helpers directly.
const (
	idcArrow = 32512
	idcCross = 32515
	idcHand  = 32649
)

func loadSystemCursor(shape CursorShape) win.HCURSOR {
	id := uintptr(idcArrow)
	switch shape {
	case CursorCrosshair:
		id = idcCross
	case CursorHand:
		id = idcHand
	}
	h, _, _ := procLoadCursorW.Call(0, id)
	return win.HCURSOR(h)
}

// overlayState is the mutable state a single overlay invocation's WndProc
// closure captures. It is entirely single-threaded (§5 "single-threaded
// cooperative"): only the thread that pumps messages touches it.
type overlayState struct {
	mode     Mode
	bounds   Rect
	monitors []Rect
	preview  previewBitmap

	windows  []WindowDescriptor
	hovered  int

	drag DragState

	done      bool
	confirmed bool
	result    Rect  // confirmed region selection, screen-space; window-picker mode records pickedIdx instead
	pickedIdx int
}

// previewBitmap is the tone-mapped SDR pixels the overlay blits as its
// background via StretchDIBits; blitPreview builds the DIB header.
type previewBitmap struct {
	width, height int32
	pixelsBGRA    []byte
}

func registerOverlayClass(inst win.HINSTANCE, wndProc uintptr) error {
	if overlayClassAtom != 0 {
		return nil
	}
	className, err := syscall.UTF16PtrFromString(overlayClassName)
	if err != nil {
		return err
	}
	var wc win.WNDCLASSEX
	wc.CbSize = uint32(unsafe.Sizeof(wc))
	wc.LpfnWndProc = wndProc
	wc.HInstance = inst
	wc.LpszClassName = className
	wc.HbrBackground = win.HBRUSH(win.GetStockObject(win.BLACK_BRUSH))
	atom := win.RegisterClassEx(&wc)
	if atom == 0 {
		return fmt.Errorf("preview: RegisterClassEx failed")
	}
	overlayClassAtom = atom
	overlayInstance = inst
	return nil
}

func createOverlayWindow(bounds Rect, cursor win.HCURSOR) (win.HWND, error) {
	className, _ := syscall.UTF16PtrFromString(overlayClassName)
	hwnd := win.CreateWindowEx(
		win.WS_EX_TOPMOST|win.WS_EX_TOOLWINDOW,
		className, nil,
		win.WS_POPUP|win.WS_VISIBLE,
		bounds.Left, bounds.Top, bounds.Width(), bounds.Height(),
		0, 0, overlayInstance, nil)
	if hwnd == 0 {
		return 0, fmt.Errorf("preview: CreateWindowEx failed")
	}
	win.SetCursor(cursor)
	win.SetForegroundWindow(hwnd)
	return hwnd, nil
}

// paint blits st.preview into hdc then overlays the mode-specific chrome.
func paint(hwnd win.HWND, st *overlayState) {
	var ps win.PAINTSTRUCT
	hdc := win.BeginPaint(hwnd, &ps)
	defer win.EndPaint(hwnd, &ps)

	blitPreview(hdc, st.preview)

	switch st.mode {
	case ModeFullDesktop:
		drawMonitorChrome(hdc, st.bounds, st.monitors)
	case ModeRegion:
		sel := st.drag.Rect()
		drawDim(hdc, st.bounds, sel)
		if sel.Valid() {
			drawBorderAndLabel(hdc, sel)
		}
	case ModeWindowPicker:
		if st.hovered >= 0 && st.hovered < len(st.windows) {
			hoveredRect := st.windows[st.hovered].Rect
			drawDim(hdc, st.bounds, hoveredRect)
			drawBorderAndLabel(hdc, hoveredRect)
		} else {
			drawDim(hdc, st.bounds, Rect{})
		}
	}
}

func blitPreview(hdc win.HDC, p previewBitmap) {
	if p.pixelsBGRA == nil {
		return
	}
	var header win.BITMAPINFOHEADER
	header.BiSize = uint32(unsafe.Sizeof(header))
	header.BiWidth = p.width
	header.BiHeight = -p.height // top-down source
	header.BiPlanes = 1
	header.BiBitCount = 32
	header.BiCompression = win.BI_RGB

	win.StretchDIBits(hdc, 0, 0, p.width, p.height, 0, 0, p.width, p.height,
		unsafe.Pointer(&p.pixelsBGRA[0]), (*win.BITMAPINFO)(unsafe.Pointer(&header)),
		win.DIB_RGB_COLORS, win.SRCCOPY)
}

func drawDim(hdc win.HDC, bounds, sel Rect) {
	dimBrush := win.CreateSolidBrush(0x000000)
	defer win.DeleteObject(win.HGDIOBJ(dimBrush))
	for _, strip := range DimStrips(bounds, sel) {
		local := toClient(strip, bounds)
		r := win.RECT{Left: local.Left, Top: local.Top, Right: local.Right, Bottom: local.Bottom}
		win.FillRect(hdc, &r, dimBrush)
	}
}

// drawMonitorChrome draws one border-and-label per monitor rectangle
// (§4.6 "Overlay draws monitor borders ... and a label ... of each
// monitor rectangle"), falling back to the whole virtual-desktop bounds
// if no per-monitor geometry was supplied.
func drawMonitorChrome(hdc win.HDC, bounds Rect, monitors []Rect) {
	if len(monitors) == 0 {
		drawBorderAndLabel(hdc, bounds)
		return
	}
	for _, m := range monitors {
		drawBorderAndLabel(hdc, m)
	}
}

func drawBorderAndLabel(hdc win.HDC, r Rect) {
	outer, inner := BorderStrokes(r)
	strokeRect(hdc, outer, 0x000000, 4)
	strokeRect(hdc, inner, 0x00FF00, 3)

	label := LabelText(r)
	origin := LabelOrigin(r, 8)
	win.SetBkMode(hdc, win.TRANSPARENT)
	win.SetTextColor(hdc, 0x00FFFFFF)
	text, _ := syscall.UTF16PtrFromString(label)
	rc := win.RECT{Left: origin.X - 120, Top: origin.Y - 20, Right: origin.X, Bottom: origin.Y}
	win.DrawText(hdc, text, int32(len(label)), &rc, win.DT_RIGHT|win.DT_SINGLELINE)
}

// strokeRect frames r with a border width pixels thick, drawn inward from
// r's edges.
func strokeRect(hdc win.HDC, r Rect, color uint32, width int32) {
	brush := win.CreateSolidBrush(color)
	defer win.DeleteObject(win.HGDIOBJ(brush))
	for i := int32(0); i < width; i++ {
		rc := win.RECT{Left: r.Left + i, Top: r.Top + i, Right: r.Right - i, Bottom: r.Bottom - i}
		win.FrameRect(hdc, &rc, brush)
	}
}

// toClient converts a screen-space rectangle to overlay client
// coordinates by subtracting the virtual-desktop bounds' origin; the
// overlay window spans those bounds 1:1 with its client area.
func toClient(r, bounds Rect) Rect {
	return Rect{r.Left - bounds.Left, r.Top - bounds.Top, r.Right - bounds.Left, r.Bottom - bounds.Top}
}

// materializePreviewBitmap wraps the already tone-mapped toneMapped frame
// for on-screen display (f is ignored and nothing is tone-mapped here);
// the confirmed capture always re-derives its output
// from the original composite/crop, never from this bitmap.
func materializePreviewBitmap(f frame.Frame, toneMapped frame.Frame) previewBitmap {
	_ = f
	return previewBitmap{width: int32(toneMapped.Width), height: int32(toneMapped.Height), pixelsBGRA: toneMapped.Pixels}
}
