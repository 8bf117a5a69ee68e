//go:build windows

package winrt

import (
	"fmt"
	"unsafe"

	"github.com/lxn/win"
)

// IGraphicsCaptureItemInterop::CreateForWindow is slot 3 (past IUnknown).
const slotCreateForWindow = 3

var iidGraphicsCaptureItemInterop = guid{0x3628E81B, 0x3CAC, 0x4C60, [8]byte{0xB7, 0xF4, 0x23, 0xCE, 0x0E, 0x0C, 0x33, 0x56}}
var iidGraphicsCaptureItem = guid{0x79C3F95B, 0x31F7, 0x4EC2, [8]byte{0xA4, 0x64, 0x63, 0x2E, 0xF5, 0xD3, 0x07, 0x60}}

// CaptureItem wraps an IGraphicsCaptureItem, the per-window handle §4.5
// step 1 derives via the OS interop factory.
type CaptureItem struct {
	ptr comObject
}

// FromWindow derives a GraphicsCaptureItem for hwnd via
// IGraphicsCaptureItemInterop::CreateForWindow, per §4.5 step 1.
func FromWindow(hwnd win.HWND) (*CaptureItem, error) {
	factory, err := activateFactory("Windows.Graphics.Capture.GraphicsCaptureItem", &iidGraphicsCaptureItemInterop)
	if err != nil {
		return nil, err
	}
	defer comRelease(factory)

	var itemPtr unsafe.Pointer
	hr := vtblCall(factory, slotCreateForWindow,
		uintptr(hwnd), uintptr(unsafe.Pointer(&iidGraphicsCaptureItem)), uintptr(unsafe.Pointer(&itemPtr)))
	if failed(hr) {
		return nil, fmt.Errorf("winrt: CreateForWindow failed: 0x%08X", uint32(hr))
	}
	return &CaptureItem{ptr: comObject(itemPtr)}, nil
}

// sizeInt32 mirrors the WinRT SizeInt32 struct returned by get_Size.
type sizeInt32 struct{ Width, Height int32 }

// Size returns the item's native pixel size (§4.5 step 2). IUnknown's 3
// methods are followed by IInspectable's 3 (GetIids, GetRuntimeClassName,
// GetTrustLevel); IGraphicsCaptureItem's own properties then start with
// get_DisplayName, so get_Size sits at absolute slot 3+3+1=7.
func (c *CaptureItem) Size() (width, height int32, err error) {
	const slotGetSize = 3 + 3 + 1
	var sz sizeInt32
	hr := vtblCall(c.ptr, slotGetSize, uintptr(unsafe.Pointer(&sz)))
	if failed(hr) {
		return 0, 0, fmt.Errorf("winrt: get_Size failed: 0x%08X", uint32(hr))
	}
	return sz.Width, sz.Height, nil
}

// Ptr exposes the raw IGraphicsCaptureItem pointer for NewFramePool/
// StartCaptureSession, which need to pass it back into WinRT APIs that
// take an IGraphicsCaptureItem parameter.
func (c *CaptureItem) Ptr() unsafe.Pointer { return unsafe.Pointer(c.ptr) }

// Release drops the COM reference.
func (c *CaptureItem) Release() {
	if c == nil {
		return
	}
	comRelease(c.ptr)
	c.ptr = nil
}
