// Package save implements the Save/clipboard/thumbnail boundary (§6): PNG
// encoding, a CF_DIB-compatible clipboard memory block builder, and
// scaled-thumbnail generation for the host's toast notification.
package save

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"

	"hdrcap/frame"
	"hdrcap/pixelmath"
)

// ErrNotBGRA8 is returned by every operation in this package when handed a
// Frame that is not already tone-mapped to BGRA8.
var ErrNotBGRA8 = errors.New("save: frame is not BGRA8")

// EncodePNG writes f as an 8-bit BGRA PNG to w (§6 "Output PNG": "8-bit
// BGRA ... sRGB transfer function, no embedded color profile"). f must
// already have CPU pixels in BGRA8 format (the HDR Tone Mapper's output).
func EncodePNG(w io.Writer, f frame.Frame) error {
	img, err := toNRGBA(f)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("save: encode png: %w", err)
	}
	return nil
}

// toNRGBA converts a tightly packed BGRA8 buffer into an image.NRGBA
// (RGBA order, alpha copied from the source; the tone mapper's RGBA16F
// path writes 255).
func toNRGBA(f frame.Frame) (*image.NRGBA, error) {
	if !f.HasPixels() {
		return nil, fmt.Errorf("save: %w", frame.ErrNoPixelSource)
	}
	if f.Format != pixelmath.FormatBGRA8 {
		return nil, ErrNotBGRA8
	}
	img := image.NewNRGBA(image.Rect(0, 0, int(f.Width), int(f.Height)))
	for i := 0; i < len(f.Pixels)/4; i++ {
		b, g, r, a := f.Pixels[i*4], f.Pixels[i*4+1], f.Pixels[i*4+2], f.Pixels[i*4+3]
		img.Pix[i*4], img.Pix[i*4+1], img.Pix[i*4+2], img.Pix[i*4+3] = r, g, b, a
	}
	return img, nil
}
