//go:build windows

package d3dcap

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modD3D11              = windows.NewLazySystemDLL("d3d11.dll")
	procD3D11CreateDevice = modD3D11.NewProc("D3D11CreateDevice")
)

const (
	d3dDriverTypeHardware = 1
	d3dFeatureLevel11_0   = 0xb000
	d3d11SDKVersion       = 7
)

// Device owns the shared ID3D11Device/ID3D11DeviceContext pair the
// duplicator, the compute-conversion kernel and the staging readback all
// issue calls against. Host code creates exactly one Device at startup
// (§9 "Shared ownership of the GPU device") and passes it into every
// operation that needs GPU access.
type Device struct {
	device  comObject
	context comObject
}

// NewDevice creates a hardware D3D11 device on the default adapter. It is
// the same D3D11CreateDevice call every DXGI-duplication example in the
// corpus makes (aydndglr-src-engine's dxgi_init, geniusmaaakun-Spark's
// ScreenDXGI.Init via go-d3d's d3d11.NewD3D11Device), reimplemented as a
// direct syscall here because the pieces below need the raw COM pointer
// go-d3d does not export.
func NewDevice() (*Device, error) {
	var device, context unsafe.Pointer
	var featureLevel uint32
	levels := [1]uint32{d3dFeatureLevel11_0}

	hr, _, _ := procD3D11CreateDevice.Call(
		0, // default adapter
		uintptr(d3dDriverTypeHardware),
		0,
		0, // flags
		uintptr(unsafe.Pointer(&levels[0])),
		1,
		uintptr(d3d11SDKVersion),
		uintptr(unsafe.Pointer(&device)),
		uintptr(unsafe.Pointer(&featureLevel)),
		uintptr(unsafe.Pointer(&context)),
	)
	if failed(hr) {
		return nil, fmt.Errorf("d3dcap: D3D11CreateDevice failed: %s", hresultString(hr))
	}
	return &Device{device: comObject(device), context: comObject(context)}, nil
}

// Release tears down the context then the device, mirroring the reverse
// construction order used everywhere else in the core (§9).
func (d *Device) Release() {
	if d == nil {
		return
	}
	comRelease(d.context)
	comRelease(d.device)
	d.context, d.device = nil, nil
}

// DXGIDevice wraps the IDXGIDevice interface obtained from an
// ID3D11Device, needed by the WinRT interop bridge
// (CreateDirect3D11DeviceFromDXGIDevice) to construct the
// IDirect3DDevice a capture frame pool activates against.
type DXGIDevice struct {
	ptr comObject
}

// Ptr exposes the raw IDXGIDevice pointer for passing into WinRT
// interop calls outside this package.
func (dd *DXGIDevice) Ptr() unsafe.Pointer { return unsafe.Pointer(dd.ptr) }

// Release drops the COM reference.
func (dd *DXGIDevice) Release() {
	if dd == nil {
		return
	}
	comRelease(dd.ptr)
	dd.ptr = nil
}

// QueryDXGIDevice retrieves the IDXGIDevice interface off the shared
// device, mirroring the QueryInterface EnumOutputs already performs to
// climb from IDXGIAdapter up to IDXGIOutput1/5.
func (d *Device) QueryDXGIDevice() (*DXGIDevice, error) {
	ptr, err := comQueryInterface(d.device, &iidIDXGIDevice)
	if err != nil {
		return nil, fmt.Errorf("d3dcap: QueryInterface(IDXGIDevice): %w", err)
	}
	return &DXGIDevice{ptr: ptr}, nil
}
