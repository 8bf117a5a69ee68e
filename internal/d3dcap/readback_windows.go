//go:build windows

package d3dcap

import (
	"fmt"

	"hdrcap/frame"
	"hdrcap/pixelmath"
)

// Reader implements hdrcap/frame.Reader against a shared Device: it
// allocates a staging texture sized to the source, issues the GPU->CPU
// copy, maps it, and repacks rows from the driver-supplied pitch into a
// tightly packed buffer, per §4.2.
type Reader struct {
	Device *Device
}

// ReadPixels performs the staging-texture readback described in §4.2. tex
// must be a *Texture2D (every Texture the duplicator or window-capture
// adapter produces is); any other implementation fails, since only the
// GPU-backed path needs a readback at all.
func (r Reader) ReadPixels(tex frame.Texture) ([]byte, error) {
	src, ok := tex.(*Texture2D)
	if !ok {
		return nil, fmt.Errorf("d3dcap: readback source is not a GPU texture (%T)", tex)
	}

	staging, err := CreateStagingTexture(r.Device, src)
	if err != nil {
		return nil, fmt.Errorf("d3dcap: create staging texture: %w", err)
	}
	defer staging.Release()

	r.Device.CopyResource(staging, src)

	pitch, mapped, err := r.Device.Map(staging)
	if err != nil {
		return nil, fmt.Errorf("d3dcap: map staging texture: %w", err)
	}
	defer r.Device.Unmap(staging)

	return repackRows(mapped, pitch, src.width, src.height, pixelmath.BytesPerPixel(src.format)), nil
}

// repackRows converts a driver-supplied row-pitch buffer (pitch may
// exceed width*bpp due to alignment) into a tightly packed buffer, per
// §4.2's "converting from the driver-supplied row pitch ... to tight
// packing".
func repackRows(mapped []byte, pitch, width, height, bpp uint32) []byte {
	rowBytes := width * bpp
	out := make([]byte, uint64(rowBytes)*uint64(height))
	for row := uint32(0); row < height; row++ {
		srcOff := uint64(row) * uint64(pitch)
		dstOff := uint64(row) * uint64(rowBytes)
		copy(out[dstOff:dstOff+uint64(rowBytes)], mapped[srcOff:srcOff+uint64(rowBytes)])
	}
	return out
}
