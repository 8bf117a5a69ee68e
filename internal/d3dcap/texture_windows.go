//go:build windows

package d3dcap

import (
	"fmt"
	"unsafe"

	"hdrcap/pixelmath"
)

// ID3D11Device vtable slots used here (d3d11.h), past IUnknown's 3.
const (
	slotDeviceCreateTexture2D           = 3 + 2
	slotDeviceCreateShaderResourceView  = 3 + 4
	slotDeviceCreateUnorderedAccessView = 3 + 5
	slotDeviceCreateComputeShader       = 3 + 15
	slotDeviceCreateBuffer              = 3 + 0
)

// ID3D11DeviceContext vtable slots. ID3D11DeviceChild contributes 4
// methods (GetDevice, GetPrivateData, SetPrivateData,
// SetPrivateDataInterface) before ID3D11DeviceContext's own methods
// start at absolute slot 7.
const (
	ctxBase                     = 3 + 4
	slotContextMap              = ctxBase + 7
	slotContextUnmap            = ctxBase + 8
	slotContextCopyResource     = ctxBase + 40
	slotContextCopySubresource  = ctxBase + 39
	slotContextUpdateSubresource = ctxBase + 41
	slotContextDispatch          = ctxBase + 34
	slotContextCSSetShaderResources    = ctxBase + 60
	slotContextCSSetUnorderedAccess    = ctxBase + 61
	slotContextCSSetShader             = ctxBase + 62
	slotContextCSSetConstantBuffers    = ctxBase + 64
)

const (
	d3d11UsageDefault  = 0
	d3d11UsageStaging  = 3
	d3d11CPUAccessRead = 0x20000

	d3d11BindShaderResource  = 0x8
	d3d11BindUnorderedAccess = 0x80
)

// Exported bind-flag aliases for callers outside this package (the
// duplicator's composite texture needs both bound at once).
const (
	BindShaderResource  = d3d11BindShaderResource
	BindUnorderedAccess = d3d11BindUnorderedAccess
)

// d3d11Texture2DDesc mirrors D3D11_TEXTURE2D_DESC.
type d3d11Texture2DDesc struct {
	Width, Height     uint32
	MipLevels         uint32
	ArraySize         uint32
	Format            uint32
	SampleCount       uint32
	SampleQuality     uint32
	Usage             uint32
	BindFlags         uint32
	CPUAccessFlags    uint32
	MiscFlags         uint32
}

// d3d11MappedSubresource mirrors D3D11_MAPPED_SUBRESOURCE.
type d3d11MappedSubresource struct {
	PData      uintptr
	RowPitch   uint32
	DepthPitch uint32
}

// Texture2D wraps an ID3D11Texture2D COM pointer with the width/height/
// format tuple frame.Frame needs. It satisfies hdrcap/frame.Texture.
type Texture2D struct {
	ptr    comObject
	device *Device
	width  uint32
	height uint32
	format pixelmath.Format
	desc   d3d11Texture2DDesc
}

func (t *Texture2D) Width() uint32            { return t.width }
func (t *Texture2D) Height() uint32           { return t.height }
func (t *Texture2D) Format() pixelmath.Format { return t.format }

// Release drops the underlying COM reference.
func (t *Texture2D) Release() {
	if t == nil {
		return
	}
	comRelease(t.ptr)
	t.ptr = nil
}

func wrapAcquiredTexture(ptr comObject, format pixelmath.Format) *Texture2D {
	var desc d3d11Texture2DDesc
	// D3D11_TEXTURE2D_DESC is read back via GetDesc, ID3D11Texture2D's
	// single own method. It follows IUnknown (3), ID3D11DeviceChild (4) and
	// ID3D11Resource (3: GetType, SetEvictionPriority, GetEvictionPriority):
	// slot 3+4+3=10.
	const slotTexture2DGetDesc = 3 + 4 + 3
	vtblCall(ptr, slotTexture2DGetDesc, uintptr(unsafe.Pointer(&desc)))

	fmtTag := format
	if desc.Format == dxgiFormatR16G16B16A16Float {
		fmtTag = pixelmath.FormatRGBA16F
	} else if desc.Format == dxgiFormatB8G8R8A8Unorm {
		fmtTag = pixelmath.FormatBGRA8
	}

	return &Texture2D{ptr: ptr, width: desc.Width, height: desc.Height, format: fmtTag, desc: desc}
}

// WrapExternalTexture adopts a raw ID3D11Texture2D COM pointer obtained
// outside this package (the Window-Capture Adapter's WinRT interop
// bridge hands back a texture this way) as a Texture2D. Ownership of
// the reference transfers to the returned Texture2D; Release drops it.
func WrapExternalTexture(ptr unsafe.Pointer) *Texture2D {
	return wrapAcquiredTexture(comObject(ptr), pixelmath.FormatUnknown)
}

// CreateTexture2D allocates a new texture on d with the given dimensions,
// format and usage/bind flags. Used for the composite target (default
// usage, shader-resource + unordered-access bind, for the conversion
// kernel to write into and the preview to sample from) and for staging
// textures (staging usage, CPU-read access, no bind flags).
func CreateTexture2D(d *Device, width, height uint32, format pixelmath.Format, usage, bindFlags, cpuAccess uint32) (*Texture2D, error) {
	dxgiFmt := uint32(dxgiFormatB8G8R8A8Unorm)
	if format == pixelmath.FormatRGBA16F {
		dxgiFmt = dxgiFormatR16G16B16A16Float
	}
	desc := d3d11Texture2DDesc{
		Width: width, Height: height, MipLevels: 1, ArraySize: 1,
		Format: dxgiFmt, SampleCount: 1,
		Usage: usage, BindFlags: bindFlags, CPUAccessFlags: cpuAccess,
	}
	var texPtr unsafe.Pointer
	hr := vtblCall(d.device, slotDeviceCreateTexture2D,
		uintptr(unsafe.Pointer(&desc)), 0, uintptr(unsafe.Pointer(&texPtr)))
	if failed(hr) {
		return nil, fmt.Errorf("d3dcap: CreateTexture2D failed: %s", hresultString(hr))
	}
	return &Texture2D{ptr: comObject(texPtr), device: d, width: width, height: height, format: format, desc: desc}, nil
}

// CreateStagingTexture allocates a CPU-readable copy of src's dimensions
// and format, for the Readback path (§4.2).
func CreateStagingTexture(d *Device, src *Texture2D) (*Texture2D, error) {
	return CreateTexture2D(d, src.width, src.height, src.format, d3d11UsageStaging, 0, d3d11CPUAccessRead)
}

// CopyResource issues a full-resource GPU copy from src into dst on d's
// immediate context.
func (d *Device) CopyResource(dst, src *Texture2D) {
	vtblCall(d.context, slotContextCopyResource, uintptr(unsafe.Pointer(dst.ptr)), uintptr(unsafe.Pointer(src.ptr)))
}

// CopySubresourceRegion copies a sub-rectangle of src into dst at
// (dstX, dstY), used for the direct-copy path when the acquired output's
// format already matches the composite's (§4.3 step 3, "direct GPU
// sub-rectangle copy").
func (d *Device) CopySubresourceRegion(dst *Texture2D, dstX, dstY uint32, src *Texture2D, srcBox Rect) {
	box := struct{ Left, Top, Front, Right, Bottom, Back uint32 }{
		Left: uint32(srcBox.Left), Top: uint32(srcBox.Top), Front: 0,
		Right: uint32(srcBox.Right), Bottom: uint32(srcBox.Bottom), Back: 1,
	}
	vtblCall(d.context, slotContextCopySubresource,
		uintptr(unsafe.Pointer(dst.ptr)), 0, uintptr(dstX), uintptr(dstY), 0,
		uintptr(unsafe.Pointer(src.ptr)), 0, uintptr(unsafe.Pointer(&box)))
}

// Map maps t for CPU reading and returns the row pitch (which may exceed
// width*bytesPerPixel per §4.2) together with a slice over the mapped
// memory sized to pitch*height. Unmap must be called after copying out of
// it.
func (d *Device) Map(t *Texture2D) (pitch uint32, data []byte, err error) {
	var mapped d3d11MappedSubresource
	hr := vtblCall(d.context, slotContextMap, uintptr(unsafe.Pointer(t.ptr)), 0, 1, 0, uintptr(unsafe.Pointer(&mapped)))
	if failed(hr) {
		return 0, nil, fmt.Errorf("d3dcap: Map failed: %s", hresultString(hr))
	}
	size := int(mapped.RowPitch) * int(t.height)
	data = unsafe.Slice((*byte)(unsafe.Pointer(mapped.PData)), size)
	return mapped.RowPitch, data, nil
}

// Unmap releases the mapping obtained from Map.
func (d *Device) Unmap(t *Texture2D) {
	vtblCall(d.context, slotContextUnmap, uintptr(unsafe.Pointer(t.ptr)), 0)
}
