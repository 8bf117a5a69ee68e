//go:build windows

package d3dcap

import (
	"errors"
	"fmt"
	"unsafe"

	"hdrcap/pixelmath"
)

// IDXGIOutputDuplication vtable slots (dxgi1_2.h), past IUnknown's 3.
const (
	slotOutdupGetDesc      = 3
	slotOutdupAcquireFrame = 4
	slotOutdupReleaseFrame = 10
)

// dxgiFormat values used when negotiating the duplication's delivery
// format; matches DXGI_FORMAT in dxgi.h.
const (
	dxgiFormatR16G16B16A16Float = 10
	dxgiFormatB8G8R8A8Unorm     = 87
)

// dxgiOutduplDesc mirrors DXGI_OUTDUPL_DESC.
type dxgiOutduplDesc struct {
	ModeWidth, ModeHeight uint32
	RationalNum, RationalDen uint32
	Format                   uint32
	ScanlineOrdering         uint32
	Scaling                  uint32
	Rotation                 uint32
	DesktopImageInSysMemory  uint32
}

// dxgiOutduplFrameInfo mirrors DXGI_OUTDUPL_FRAME_INFO.
type dxgiOutduplFrameInfo struct {
	LastPresentTime           int64
	LastMouseUpdateTime       int64
	AccumulatedFrames         uint32
	RectsCoalesced            uint32
	ProtectedContentMaskedOut uint32
	PointerPosX, PointerPosY  int32
	PointerVisible            uint32
	TotalMetadataBufferSize   uint32
	PointerShapeBufferSize    uint32
}

// ErrAcquireTimeout is returned by Duplication.AcquireFrame when no new
// frame arrived within the timeout. The duplicator skips that output for
// the cycle without logging a warning; it still counts as a failed output
// when Capture checks whether every output failed.
var ErrAcquireTimeout = errors.New("d3dcap: AcquireNextFrame timed out")

// ErrProtectedContent is returned when the acquired frame is entirely
// masked out by DRM policy (§1 Non-goals: not worked around).
var ErrProtectedContent = errors.New("d3dcap: frame is protected content")

// ErrNoOutputs is returned by EnumOutputs when the adapter has no
// desktop-attached outputs that support duplication.
var ErrNoOutputs = errors.New("d3dcap: no desktop-attached outputs")

// Duplication is one output's duplication session: the OS handle plus the
// format it actually negotiated.
type Duplication struct {
	ptr    comObject
	Format pixelmath.Format
	Output *Output
}

// DuplicateOutput starts a duplication session on o against device,
// preferring RGBA16F delivery via IDXGIOutput5::DuplicateOutput1 and
// falling back to IDXGIOutput1::DuplicateOutput (BGRA8 only) when the OS
// or driver doesn't support the format-negotiating overload, per §4.3
// step 3.
func DuplicateOutput(d *Device, o *Output) (*Duplication, error) {
	if out5, err := comQueryInterface(o.ptr, &iidIDXGIOutput5); err == nil {
		defer comRelease(out5)
		formats := [2]uint32{dxgiFormatR16G16B16A16Float, dxgiFormatB8G8R8A8Unorm}
		var dupPtr unsafe.Pointer
		hr := vtblCall(out5, slotIDXGIOutput5DuplicateOutput1,
			uintptr(unsafe.Pointer(d.device)), 0, 2,
			uintptr(unsafe.Pointer(&formats[0])), uintptr(unsafe.Pointer(&dupPtr)))
		if !failed(hr) {
			return newDuplication(comObject(dupPtr), o)
		}
	}

	var dupPtr unsafe.Pointer
	hr := vtblCall(o.ptr, slotIDXGIOutput1DuplicateOutput,
		uintptr(unsafe.Pointer(d.device)), uintptr(unsafe.Pointer(&dupPtr)))
	if failed(hr) {
		return nil, fmt.Errorf("d3dcap: DuplicateOutput failed on %s: %s", o.DeviceName, hresultString(hr))
	}
	return newDuplication(comObject(dupPtr), o)
}

func newDuplication(ptr comObject, o *Output) (*Duplication, error) {
	var desc dxgiOutduplDesc
	vtblCall(ptr, slotOutdupGetDesc, uintptr(unsafe.Pointer(&desc)))

	format := pixelmath.FormatBGRA8
	if desc.Format == dxgiFormatR16G16B16A16Float {
		format = pixelmath.FormatRGBA16F
	}
	return &Duplication{ptr: ptr, Format: format, Output: o}, nil
}

// AcquireFrame blocks up to timeoutMs for the next frame, per §4.3 step 1.
// The returned Texture2D must be released by the caller; ReleaseFrame must
// be called before the next AcquireFrame regardless of outcome (the
// duplicator's capture loop does this via defer).
func (dup *Duplication) AcquireFrame(timeoutMs uint32) (*Texture2D, error) {
	var frameInfo dxgiOutduplFrameInfo
	var resourcePtr unsafe.Pointer
	hr := vtblCall(dup.ptr, slotOutdupAcquireFrame,
		uintptr(timeoutMs), uintptr(unsafe.Pointer(&frameInfo)), uintptr(unsafe.Pointer(&resourcePtr)))
	if failed(hr) {
		if uint32(hr) == dxgiErrorWaitTimeout {
			return nil, ErrAcquireTimeout
		}
		return nil, fmt.Errorf("d3dcap: AcquireNextFrame failed: %s", hresultString(hr))
	}
	resource := comObject(resourcePtr)
	defer comRelease(resource)

	if frameInfo.ProtectedContentMaskedOut != 0 {
		dup.ReleaseFrame()
		return nil, ErrProtectedContent
	}

	texPtr, err := comQueryInterface(resource, &iidID3D11Texture2D)
	if err != nil {
		dup.ReleaseFrame()
		return nil, fmt.Errorf("d3dcap: acquired resource has no ID3D11Texture2D: %w", err)
	}

	return wrapAcquiredTexture(texPtr, dup.Format), nil
}

// ReleaseFrame releases the frame handle acquired by AcquireFrame. It is
// safe to call even when AcquireFrame failed for a reason other than a
// successful acquire (the timeout path never needs it).
func (dup *Duplication) ReleaseFrame() {
	vtblCall(dup.ptr, slotOutdupReleaseFrame)
}

// Release tears down the duplication session. Per §4.3's state machine,
// callers only do this collectively at re-init.
func (dup *Duplication) Release() {
	comRelease(dup.ptr)
	dup.ptr = nil
}
