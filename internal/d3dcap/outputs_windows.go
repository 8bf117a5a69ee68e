//go:build windows

package d3dcap

import (
	"fmt"
	"syscall"
	"unsafe"
)

// IDXGIDevice/IDXGIAdapter/IDXGIOutput/IDXGIOutput1 vtable slots, counted
// past the 3 IUnknown slots every COM interface starts with, then past
// IDXGIObject's 4 (SetPrivateData, SetPrivateDataInterface, GetPrivateData,
// GetParent). Layout matches dxgi.h/dxgi1_2.h method declaration order.
const (
	slotIDXGIDeviceGetAdapter = 3 + 4 // IDXGIDevice::GetAdapter is its first method

	slotIDXGIAdapterEnumOutputs = 3 + 4 // IDXGIAdapter::EnumOutputs is its first method

	slotIDXGIOutputGetDesc = 3 + 4 // IDXGIOutput::GetDesc is its first method

	// IDXGIOutput contributes 12 methods (GetDesc..GetFrameStatistics)
	// before IDXGIOutput1 adds GetDisplayModeList1, FindClosestMatchingMode1,
	// GetDisplaySurfaceData1, DuplicateOutput.
	slotIDXGIOutput1DuplicateOutput = 3 + 4 + 12 + 3

	// IDXGIOutput5::DuplicateOutput1 is the format-negotiating overload
	// (Windows 8.1+) that lets us ask for RGBA16F directly instead of the
	// BGRA8-only IDXGIOutput1::DuplicateOutput. IDXGIOutput1 contributes 4
	// methods, IDXGIOutput2 and IDXGIOutput3 and IDXGIOutput4 one each
	// (SupportsOverlays, CheckOverlaySupport, CheckOverlayColorSpaceSupport)
	// before DuplicateOutput1 is IDXGIOutput5's own first method.
	slotIDXGIOutput5DuplicateOutput1 = 3 + 4 + 12 + 4 + 1 + 1 + 1
)

// Output pairs a duplicable IDXGIOutput1 COM pointer with the descriptor
// data §3 calls the "per-output duplication handle"'s descriptor half.
type Output struct {
	ptr        comObject
	Rect       Rect
	Rotation   uint32
	DeviceName string
}

// Release drops the IDXGIOutput1 reference. Duplication sessions hold
// their own reference via DuplicateOutput and are released independently.
func (o *Output) Release() {
	if o == nil {
		return
	}
	comRelease(o.ptr)
	o.ptr = nil
}

// dxgiOutputDesc mirrors DXGI_OUTPUT_DESC (dxgi.h).
type dxgiOutputDesc struct {
	DeviceName        [32]uint16
	DesktopCoordinate Rect
	AttachedToDesktop uint32
	Rotation          uint32
	Monitor           uintptr
}

// EnumOutputs walks device -> IDXGIDevice -> IDXGIAdapter -> every
// IDXGIOutput, keeping only those attached to the desktop and upgrading
// each to IDXGIOutput1 (needed for DuplicateOutput; DuplicateOutput
// queries IDXGIOutput5 from it for the format-preference DuplicateOutput1),
// per §4.3 step 1.
func EnumOutputs(d *Device) ([]*Output, error) {
	dxgiDevice, err := comQueryInterface(d.device, &iidIDXGIDevice)
	if err != nil {
		return nil, fmt.Errorf("d3dcap: device has no IDXGIDevice: %w", err)
	}
	defer comRelease(dxgiDevice)

	var adapterPtr unsafe.Pointer
	hr := vtblCall(dxgiDevice, slotIDXGIDeviceGetAdapter, uintptr(unsafe.Pointer(&adapterPtr)))
	if failed(hr) {
		return nil, fmt.Errorf("d3dcap: GetAdapter failed: %s", hresultString(hr))
	}
	adapter := comObject(adapterPtr)
	defer comRelease(adapter)

	var outputs []*Output
	for i := uint32(0); ; i++ {
		var outPtr unsafe.Pointer
		hr := vtblCall(adapter, slotIDXGIAdapterEnumOutputs, uintptr(i), uintptr(unsafe.Pointer(&outPtr)))
		if failed(hr) {
			break // DXGI_ERROR_NOT_FOUND: no more outputs
		}
		out := comObject(outPtr)

		var desc dxgiOutputDesc
		vtblCall(out, slotIDXGIOutputGetDesc, uintptr(unsafe.Pointer(&desc)))

		if desc.AttachedToDesktop == 0 {
			comRelease(out)
			continue
		}

		out1, err := comQueryInterface(out, &iidIDXGIOutput1)
		comRelease(out)
		if err != nil {
			continue // output doesn't support duplication at all; skip it
		}

		outputs = append(outputs, &Output{
			ptr:        out1,
			Rect:       desc.DesktopCoordinate,
			Rotation:   desc.Rotation,
			DeviceName: syscall.UTF16ToString(desc.DeviceName[:]),
		})
	}

	if len(outputs) == 0 {
		return nil, ErrNoOutputs
	}
	return outputs, nil
}
