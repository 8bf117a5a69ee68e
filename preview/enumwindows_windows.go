//go:build windows

package preview

import (
	"syscall"
	"unsafe"

	"github.com/lxn/win"
)

const dwmwaExtendedFrameBounds = 9
const dwmwaCloaked = 14

var (
	modDwmapi                  = syscall.NewLazyDLL("dwmapi.dll")
	procDwmGetWindowAttribute  = modDwmapi.NewProc("DwmGetWindowAttribute")
)

// extendedFrameBounds returns the DWM-reported visible frame (excluding
// drop shadow) for hwnd, falling back to GetWindowRect when DWM composition
// data is unavailable (§4.6 "prefer extended frame bounds ... over raw
// window rect").
func extendedFrameBounds(hwnd win.HWND) Rect {
	var r win.RECT
	hr, _, _ := procDwmGetWindowAttribute.Call(
		uintptr(hwnd), dwmwaExtendedFrameBounds, uintptr(unsafe.Pointer(&r)), unsafe.Sizeof(r))
	if hr == 0 {
		return Rect{r.Left, r.Top, r.Right, r.Bottom}
	}
	win.GetWindowRect(hwnd, &r)
	return Rect{r.Left, r.Top, r.Right, r.Bottom}
}

func isCloaked(hwnd win.HWND) bool {
	var cloaked int32
	hr, _, _ := procDwmGetWindowAttribute.Call(
		uintptr(hwnd), dwmwaCloaked, uintptr(unsafe.Pointer(&cloaked)), unsafe.Sizeof(cloaked))
	return hr == 0 && cloaked != 0
}

// EnumTopLevelWindows enumerates visible, non-iconic, non-cloaked top-level
// windows in front-to-back Z-order (§4.6 "Window-picker mode": "enumerate
// visible top-level windows in Z-order; skip invisible, iconic, and
// cloaked windows"). Rectangles 1 pixel or less wide or tall are skipped.
func EnumTopLevelWindows() []WindowDescriptor {
	var descriptors []WindowDescriptor
	cb := syscall.NewCallback(func(hwnd win.HWND, lparam uintptr) uintptr {
		if !win.IsWindowVisible(hwnd) || win.IsIconic(hwnd) || isCloaked(hwnd) {
			return 1
		}
		rect := extendedFrameBounds(hwnd)
		if rect.Width() <= 1 || rect.Height() <= 1 {
			return 1
		}
		descriptors = append(descriptors, WindowDescriptor{Handle: uintptr(hwnd), Rect: rect})
		return 1
	})
	win.EnumWindows(cb, 0)
	return descriptors
}
