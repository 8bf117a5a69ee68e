// Package frame defines the in-flight capture buffer shared by the
// duplicator, the window-capture adapter, the tone mapper and the
// interactive preview.
package frame

import (
	"errors"
	"fmt"

	"hdrcap/pixelmath"
)

// ErrNoPixelSource is returned by Materialize when a Frame has neither a
// GPU texture nor CPU pixels to read from.
var ErrNoPixelSource = errors.New("frame: no GPU texture or CPU buffer available")

// Texture is the minimal shape a GPU-resident frame backing needs to
// expose. Concrete implementations live in internal/d3dcap; tests use a
// fake that only needs to answer these three questions.
type Texture interface {
	Width() uint32
	Height() uint32
	Format() pixelmath.Format
}

// Reader performs a GPU->CPU readback of a Texture into tightly packed
// rows. Implementations own the staging texture and map/unmap lifecycle;
// Frame only calls this when it has no CPU buffer yet.
type Reader interface {
	ReadPixels(tex Texture) ([]byte, error)
}

// Frame is the capture core's common currency: a width/height/format tuple
// with at least one of {GPU texture, CPU buffer} populated. When both are
// present they must hold equivalent pixels.
type Frame struct {
	Width         uint32
	Height        uint32
	Format        pixelmath.Format
	BytesPerPixel uint32

	GPUTexture Texture
	Pixels     []byte
}

// New builds a Frame from a GPU texture, deriving width/height/format and
// bytes-per-pixel from it. The CPU buffer is left empty; call Materialize
// to populate it lazily.
func New(tex Texture) (Frame, error) {
	bpp := pixelmath.BytesPerPixel(tex.Format())
	if bpp == 0 {
		return Frame{}, fmt.Errorf("frame: unsupported format %d", tex.Format())
	}
	return Frame{
		Width:         tex.Width(),
		Height:        tex.Height(),
		Format:        tex.Format(),
		BytesPerPixel: bpp,
		GPUTexture:    tex,
	}, nil
}

// NewFromPixels builds a CPU-only Frame, used by the duplicator's GDI
// fallback, the tone mapper's output and the thumbnail scaler.
func NewFromPixels(width, height uint32, format pixelmath.Format, pixels []byte) (Frame, error) {
	bpp := pixelmath.BytesPerPixel(format)
	if bpp == 0 {
		return Frame{}, fmt.Errorf("frame: unsupported format %d", format)
	}
	want := uint64(width) * uint64(height) * uint64(bpp)
	if uint64(len(pixels)) != want {
		return Frame{}, fmt.Errorf("frame: pixel buffer is %d bytes, want %d", len(pixels), want)
	}
	return Frame{
		Width:         width,
		Height:        height,
		Format:        format,
		BytesPerPixel: bpp,
		Pixels:        pixels,
	}, nil
}

// HasPixels reports whether the CPU buffer is already populated.
func (f *Frame) HasPixels() bool {
	return f.Pixels != nil
}

// Materialize ensures f.Pixels is populated, reading back from GPUTexture
// via r when necessary. A Frame that already has CPU pixels is a no-op,
// even if a GPU texture is also present.
func (f *Frame) Materialize(r Reader) error {
	if f.HasPixels() {
		return nil
	}
	if f.GPUTexture == nil || r == nil {
		return ErrNoPixelSource
	}
	pixels, err := r.ReadPixels(f.GPUTexture)
	if err != nil {
		return fmt.Errorf("frame: readback failed: %w", err)
	}
	want := uint64(f.Width) * uint64(f.Height) * uint64(f.BytesPerPixel)
	if uint64(len(pixels)) != want {
		return fmt.Errorf("frame: readback returned %d bytes, want %d", len(pixels), want)
	}
	f.Pixels = pixels
	return nil
}
