//go:build windows

package d3dcap

import (
	"fmt"
	"unsafe"
)

// convertShaderHLSL is the sRGB->linear promotion kernel described in
// §4.3: it reads a non-RGBA16F output's texel via the hardware's native
// decode (which performs the BGRA->RGBA swizzle for us), applies the
// piecewise sRGB EOTF per channel, and writes to the RGBA16F composite
// with alpha forced to 1. 16x16 thread groups cover the blit rectangle
// named by the constant buffer.
const convertShaderHLSL = `
Texture2D<float4> SourceTex : register(t0);
RWTexture2D<float4> DestTex : register(u0);

cbuffer BlitParams : register(b0) {
    int2 SrcOffset;
    int2 DstOffset;
    int2 BlitSize;
    int2 _Pad;
};

float srgbToLinear(float c) {
    if (c <= 0.04045) {
        return c / 12.92;
    }
    return pow((c + 0.055) / 1.055, 2.4);
}

[numthreads(16, 16, 1)]
void CSMain(uint3 id : SV_DispatchThreadID) {
    if (id.x >= (uint)BlitSize.x || id.y >= (uint)BlitSize.y) {
        return;
    }
    int2 srcCoord = SrcOffset + int2(id.xy);
    int2 dstCoord = DstOffset + int2(id.xy);
    float4 texel = SourceTex.Load(int3(srcCoord, 0));
    float4 outColor;
    outColor.r = srgbToLinear(texel.r);
    outColor.g = srgbToLinear(texel.g);
    outColor.b = srgbToLinear(texel.b);
    outColor.a = 1.0;
    DestTex[dstCoord] = outColor;
}
`

// blitParams mirrors the HLSL BlitParams cbuffer layout: three int2
// fields plus one padding int2, 32 bytes in all, a multiple of 16 for
// constant-buffer alignment.
type blitParams struct {
	SrcOffsetX, SrcOffsetY int32
	DstOffsetX, DstOffsetY int32
	BlitSizeX, BlitSizeY   int32
	_pad0, _pad1           int32
}

// ConvertKernel owns the compiled compute shader and its constant buffer,
// cached once at duplicator init per §4.3 step 4.
type ConvertKernel struct {
	device   *Device
	shader   comObject
	constBuf comObject
}

// CompileConvertKernel compiles convertShaderHLSL via d3dcompiler_47.dll
// and creates the compute shader plus its (single, reused) constant
// buffer.
func CompileConvertKernel(d *Device) (*ConvertKernel, error) {
	bytecode, err := compileHLSL(convertShaderHLSL, "CSMain", "cs_5_0")
	if err != nil {
		return nil, fmt.Errorf("d3dcap: compile conversion shader: %w", err)
	}

	var shaderPtr unsafe.Pointer
	hr := vtblCall(d.device, slotDeviceCreateComputeShader,
		uintptr(unsafe.Pointer(&bytecode[0])), uintptr(len(bytecode)), 0, uintptr(unsafe.Pointer(&shaderPtr)))
	if failed(hr) {
		return nil, fmt.Errorf("d3dcap: CreateComputeShader failed: %s", hresultString(hr))
	}

	cb, err := createConstantBuffer(d, uint32(unsafe.Sizeof(blitParams{})))
	if err != nil {
		return nil, err
	}

	return &ConvertKernel{device: d, shader: comObject(shaderPtr), constBuf: cb}, nil
}

// Release drops the compute shader and constant buffer references.
func (k *ConvertKernel) Release() {
	if k == nil {
		return
	}
	comRelease(k.shader)
	comRelease(k.constBuf)
}

const (
	d3d11BindConstantBuffer = 0x4
	d3d11CPUAccessWrite     = 0x10000
)

// d3d11BufferDesc mirrors D3D11_BUFFER_DESC.
type d3d11BufferDesc struct {
	ByteWidth      uint32
	Usage          uint32
	BindFlags      uint32
	CPUAccessFlags uint32
	MiscFlags      uint32
	StructureByteStride uint32
}

func createConstantBuffer(d *Device, byteWidth uint32) (comObject, error) {
	// Constant buffers must be a multiple of 16 bytes.
	if byteWidth%16 != 0 {
		byteWidth += 16 - byteWidth%16
	}
	desc := d3d11BufferDesc{
		ByteWidth: byteWidth, Usage: d3d11UsageDefault,
		BindFlags: d3d11BindConstantBuffer,
	}
	var ptr unsafe.Pointer
	hr := vtblCall(d.device, slotDeviceCreateBuffer, uintptr(unsafe.Pointer(&desc)), 0, uintptr(unsafe.Pointer(&ptr)))
	if failed(hr) {
		return nil, fmt.Errorf("d3dcap: CreateBuffer (constants) failed: %s", hresultString(hr))
	}
	return comObject(ptr), nil
}

// Dispatch converts src (the raw acquired output texture) into dst at
// dstOffset, covering blitW x blitH texels starting at srcOffset, per
// §4.3 step 3's kernel description. The OS duplication texture is never
// directly bindable as a shader resource, so Dispatch first copies it
// into a temporary shader-resource-bound texture of the same format and
// dimensions before creating the SRV the kernel reads from.
func (k *ConvertKernel) Dispatch(dst, src *Texture2D, srcOffsetX, srcOffsetY, dstOffsetX, dstOffsetY, blitW, blitH int32) error {
	d := k.device

	temp, err := CreateTexture2D(d, src.width, src.height, src.format, d3d11UsageDefault, d3d11BindShaderResource, 0)
	if err != nil {
		return fmt.Errorf("d3dcap: create intermediate texture: %w", err)
	}
	defer temp.Release()
	d.CopyResource(temp, src)

	srv, err := createShaderResourceView(d, temp)
	if err != nil {
		return err
	}
	defer comRelease(srv)

	uav, err := createUnorderedAccessView(d, dst)
	if err != nil {
		return err
	}
	defer comRelease(uav)

	params := blitParams{
		SrcOffsetX: srcOffsetX, SrcOffsetY: srcOffsetY,
		DstOffsetX: dstOffsetX, DstOffsetY: dstOffsetY,
		BlitSizeX: blitW, BlitSizeY: blitH,
	}
	updateConstantBuffer(d, k.constBuf, &params)

	vtblCall(d.context, slotContextCSSetShader, uintptr(unsafe.Pointer(k.shader)), 0, 0)
	vtblCall(d.context, slotContextCSSetShaderResources, 0, 1, uintptr(unsafe.Pointer(&srv)))
	vtblCall(d.context, slotContextCSSetUnorderedAccess, 0, 1, uintptr(unsafe.Pointer(&uav)), 0)
	vtblCall(d.context, slotContextCSSetConstantBuffers, 0, 1, uintptr(unsafe.Pointer(&k.constBuf)))

	groupsX := (uint32(blitW) + 15) / 16
	groupsY := (uint32(blitH) + 15) / 16
	vtblCall(d.context, slotContextDispatch, uintptr(groupsX), uintptr(groupsY), 1)

	// Unbind so the next dispatch (or the preview's own rendering) doesn't
	// see a stale UAV/SRV bound to a texture it wants to sample instead.
	var nilPtr unsafe.Pointer
	vtblCall(d.context, slotContextCSSetShaderResources, 0, 1, uintptr(unsafe.Pointer(&nilPtr)))
	vtblCall(d.context, slotContextCSSetUnorderedAccess, 0, 1, uintptr(unsafe.Pointer(&nilPtr)), 0)
	return nil
}

func createShaderResourceView(d *Device, t *Texture2D) (comObject, error) {
	var srv unsafe.Pointer
	hr := vtblCall(d.device, slotDeviceCreateShaderResourceView,
		uintptr(unsafe.Pointer(t.ptr)), 0, uintptr(unsafe.Pointer(&srv)))
	if failed(hr) {
		return nil, fmt.Errorf("d3dcap: CreateShaderResourceView failed: %s", hresultString(hr))
	}
	return comObject(srv), nil
}

func createUnorderedAccessView(d *Device, t *Texture2D) (comObject, error) {
	var uav unsafe.Pointer
	hr := vtblCall(d.device, slotDeviceCreateUnorderedAccessView,
		uintptr(unsafe.Pointer(t.ptr)), 0, uintptr(unsafe.Pointer(&uav)))
	if failed(hr) {
		return nil, fmt.Errorf("d3dcap: CreateUnorderedAccessView failed: %s", hresultString(hr))
	}
	return comObject(uav), nil
}

func updateConstantBuffer(d *Device, buf comObject, params *blitParams) {
	vtblCall(d.context, slotContextUpdateSubresource,
		uintptr(unsafe.Pointer(buf)), 0, 0, uintptr(unsafe.Pointer(params)), 0, 0)
}
