// Package tonemap converts a captured Frame into a tightly packed 8-bit
// BGRA buffer suitable for PNG encoding or clipboard hand-off.
package tonemap

import (
	"encoding/binary"
	"errors"
	"fmt"

	"hdrcap/frame"
	"hdrcap/pixelmath"
)

// DefaultPaperWhiteNits is the scRGB reference white level. Using it as the
// normalization target is the identity transform (scale = 1), which is the
// correct behavior for an SDR desktop or whenever the real paper-white
// query fails.
const DefaultPaperWhiteNits = 80.0

// ErrUnsupportedFormat is returned when the source Frame is neither
// RGBA16F nor BGRA8.
var ErrUnsupportedFormat = errors.New("tonemap: unsupported frame format")

// ToneMap converts f into a BGRA8 Frame. f must already have CPU pixels
// (call frame.Materialize first).
//
// RGBA16F input is decoded, normalized against paperWhiteNits, clamped to
// [0,1], sRGB-encoded and quantized per channel; alpha is discarded and the
// output is always fully opaque. BGRA8 input passes through unchanged.
// Any other format fails.
func ToneMap(f frame.Frame, paperWhiteNits float32) (frame.Frame, error) {
	if !f.HasPixels() {
		return frame.Frame{}, fmt.Errorf("tonemap: %w", frame.ErrNoPixelSource)
	}

	switch f.Format {
	case pixelmath.FormatBGRA8:
		out := make([]byte, len(f.Pixels))
		copy(out, f.Pixels)
		return frame.NewFromPixels(f.Width, f.Height, pixelmath.FormatBGRA8, out)

	case pixelmath.FormatRGBA16F:
		return toneMapRGBA16F(f, paperWhiteNits)

	default:
		return frame.Frame{}, fmt.Errorf("%w: %d", ErrUnsupportedFormat, f.Format)
	}
}

func toneMapRGBA16F(f frame.Frame, paperWhiteNits float32) (frame.Frame, error) {
	if paperWhiteNits <= 0 {
		paperWhiteNits = DefaultPaperWhiteNits
	}
	scale := float32(80.0) / paperWhiteNits

	pixelCount := int(f.Width) * int(f.Height)
	out := make([]byte, pixelCount*4)

	for i := 0; i < pixelCount; i++ {
		src := f.Pixels[i*8 : i*8+8]
		r := decodeChannel(src[0:2], scale)
		g := decodeChannel(src[2:4], scale)
		b := decodeChannel(src[4:6], scale)

		dst := out[i*4 : i*4+4]
		dst[0] = b
		dst[1] = g
		dst[2] = r
		dst[3] = 255
	}

	return frame.NewFromPixels(f.Width, f.Height, pixelmath.FormatBGRA8, out)
}

func decodeChannel(halfBytes []byte, scale float32) byte {
	h := binary.LittleEndian.Uint16(halfBytes)
	v := pixelmath.HalfToFloat(h)
	if v < 0 {
		v = 0
	}
	v *= scale
	if v > 1 {
		v = 1
	}
	v = pixelmath.LinearToSRGB(v)
	return pixelmath.UnitClampTo8(v)
}
