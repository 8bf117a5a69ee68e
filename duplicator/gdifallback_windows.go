//go:build windows

package duplicator

import (
	"errors"
	"fmt"
	"sync/atomic"
	"syscall"
	"unsafe"

	"github.com/lxn/win"

	"hdrcap/frame"
	"hdrcap/internal/d3dcap"
	"hdrcap/pixelmath"
)

var (
	modUser32Fallback         = syscall.NewLazyDLL("user32.dll")
	procGetSystemMetrics      = modUser32Fallback.NewProc("GetSystemMetrics")
	procGetCursorInfo         = modUser32Fallback.NewProc("GetCursorInfo")
	procGetCursorInfoDrawIcon = modUser32Fallback.NewProc("DrawIcon")

	// GetDesktopWindow has no lxn/win wrapper, matching the teacher's own
	// screenshot_windows.go: resolved once via LoadLibrary/GetProcAddress
	// rather than through a *LazyDLL.NewProc, exactly as funcGetDesktopWindow
	// is there.
	libUser32Fallback, _    = syscall.LoadLibrary("user32.dll")
	funcGetDesktopWindow, _ = syscall.GetProcAddress(libUser32Fallback, "GetDesktopWindow")
)

func getDesktopWindow() win.HWND {
	ret, _, _ := syscall.Syscall(funcGetDesktopWindow, 0, 0, 0, 0)
	return win.HWND(ret)
}

const (
	smXVirtualScreen  = 76
	smYVirtualScreen  = 77
	smCXVirtualScreen = 78
	smCYVirtualScreen = 79
)

// cursorInfo mirrors the teacher's CURSORINFO (cursor.go), trimmed to the
// fields the fallback's optional cursor compositing needs.
type cursorInfo struct {
	cbSize      uint32
	flags       uint32
	hCursor     win.HANDLE
	ptScreenPos win.POINT
}

func virtualScreenBounds() d3dcap.Rect {
	x, _, _ := procGetSystemMetrics.Call(smXVirtualScreen)
	y, _, _ := procGetSystemMetrics.Call(smYVirtualScreen)
	w, _, _ := procGetSystemMetrics.Call(smCXVirtualScreen)
	h, _, _ := procGetSystemMetrics.Call(smCYVirtualScreen)
	return d3dcap.Rect{Left: int32(x), Top: int32(y), Right: int32(x) + int32(w), Bottom: int32(y) + int32(h)}
}

// gdiFallback captures the whole virtual desktop through GDI BitBlt into a
// DIB section, grounded directly in the teacher's GDIScreenshot type
// (screenshot_windows.go: Init/Capture/Release) and its cursor-drawing
// helpers (cursor.go: GetCursorInfo/DrawIcon). It is the Desktop
// Duplicator's last-resort path, entered only when every DXGI duplication
// session fails to open (§7 "Initialization failure"). Unlike the DXGI
// path it can only ever produce an SDR BGRA8 composite; HDR content on any
// monitor is not representable through GDI's BitBlt, so a fallback capture
// carries whatever the desktop compositor already flattened to SDR.
type gdiFallback struct {
	bounds d3dcap.Rect
	hwnd   win.HWND
	hdc    win.HDC
	memDC  win.HDC
	bitmap win.HBITMAP
	header win.BITMAPINFOHEADER
	ptr    unsafe.Pointer

	drawCursor atomic.Bool
}

func newGDIFallback(drawCursor bool) (*gdiFallback, error) {
	g := &gdiFallback{bounds: virtualScreenBounds()}
	g.drawCursor.Store(drawCursor)
	if g.bounds.Width() < 1 || g.bounds.Height() < 1 {
		return nil, fmt.Errorf("duplicator: gdi fallback: virtual screen bounds %v invalid", g.bounds)
	}

	g.hwnd = getDesktopWindow()
	g.hdc = win.GetDC(g.hwnd)
	if g.hdc == 0 {
		return nil, errors.New("duplicator: gdi fallback: GetDC failed")
	}
	g.memDC = win.CreateCompatibleDC(g.hdc)
	if g.memDC == 0 {
		win.ReleaseDC(g.hwnd, g.hdc)
		return nil, errors.New("duplicator: gdi fallback: CreateCompatibleDC failed")
	}

	width, height := g.bounds.Width(), g.bounds.Height()
	g.header.BiSize = uint32(unsafe.Sizeof(g.header))
	g.header.BiPlanes = 1
	g.header.BiBitCount = 32
	g.header.BiWidth = width
	g.header.BiHeight = -height
	g.header.BiCompression = win.BI_RGB

	g.bitmap = win.CreateDIBSection(g.memDC, &g.header, win.DIB_RGB_COLORS, &g.ptr, 0, 0)
	if g.bitmap == 0 {
		win.DeleteDC(g.memDC)
		win.ReleaseDC(g.hwnd, g.hdc)
		return nil, errors.New("duplicator: gdi fallback: CreateDIBSection failed")
	}
	return g, nil
}

// capture BitBlts the current virtual desktop into the DIB section and
// returns a CPU-only BGRA8 frame. Optional cursor compositing (off by
// default; set by newGDIFallback's drawCursor argument) draws the OS cursor into the memory DC
// before the pixels are copied out, matching GDIScreenshot.Capture's
// atomic cursor flag.
func (g *gdiFallback) capture() (frame.Frame, error) {
	old := win.SelectObject(g.memDC, win.HGDIOBJ(g.bitmap))
	if old == 0 {
		return frame.Frame{}, errors.New("duplicator: gdi fallback: SelectObject failed")
	}
	defer win.SelectObject(g.memDC, old)

	width, height := g.bounds.Width(), g.bounds.Height()
	if !win.BitBlt(g.memDC, 0, 0, width, height, g.hdc, g.bounds.Left, g.bounds.Top, win.SRCCOPY|win.CAPTUREBLT) {
		return frame.Frame{}, errors.New("duplicator: gdi fallback: BitBlt failed")
	}

	if g.drawCursor.Load() {
		g.compositeCursor()
	}

	pixelCount := int(width) * int(height) * 4
	var src []byte
	srcHeader := (*sliceHeader)(unsafe.Pointer(&src))
	srcHeader.Data = uintptr(g.ptr)
	srcHeader.Len = pixelCount
	srcHeader.Cap = pixelCount

	pixels := make([]byte, pixelCount)
	copy(pixels, src)
	return frame.NewFromPixels(uint32(width), uint32(height), pixelmath.FormatBGRA8, pixels)
}

// compositeCursor draws the OS cursor glyph into the memory DC at its
// current screen position, translated into the virtual-desktop-relative
// coordinate space this fallback captures in. Best-effort: a failure here
// never fails the capture.
func (g *gdiFallback) compositeCursor() {
	var info cursorInfo
	info.cbSize = uint32(unsafe.Sizeof(info))
	ret, _, _ := procGetCursorInfo.Call(uintptr(unsafe.Pointer(&info)))
	if ret == 0 {
		return
	}
	x := int32(info.ptScreenPos.X) - g.bounds.Left
	y := int32(info.ptScreenPos.Y) - g.bounds.Top
	procGetCursorInfoDrawIcon.Call(uintptr(g.memDC), uintptr(x), uintptr(y), uintptr(info.hCursor))
}

// release tears down the DIB section, memory DC and desktop DC.
func (g *gdiFallback) release() {
	if g.bitmap != 0 {
		win.DeleteObject(win.HGDIOBJ(g.bitmap))
		g.bitmap = 0
	}
	if g.memDC != 0 {
		win.DeleteDC(g.memDC)
		g.memDC = 0
	}
	if g.hdc != 0 {
		win.ReleaseDC(g.hwnd, g.hdc)
		g.hdc = 0
	}
}

// sliceHeader mirrors reflect.SliceHeader, used the same way the teacher's
// screenshot_windows.go reinterprets the DIB section's raw memory as a
// byte slice without a copy at the read site.
type sliceHeader struct {
	Data uintptr
	Len  int
	Cap  int
}
