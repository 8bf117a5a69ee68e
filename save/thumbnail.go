package save

import (
	"fmt"
	"os"

	"hdrcap/frame"
	"hdrcap/pixelmath"
)

// ScaleToLongestEdge nearest-neighbor resamples f so its longest edge is
// exactly maxDim pixels (aspect preserved, each dimension floored to a
// minimum of 1), per §6's thumbnail rule. f must already be BGRA8 with CPU
// pixels populated; the source is never mutated.
func ScaleToLongestEdge(f frame.Frame, maxDim int) (frame.Frame, error) {
	if !f.HasPixels() {
		return frame.Frame{}, fmt.Errorf("save: %w", frame.ErrNoPixelSource)
	}
	if f.Format != pixelmath.FormatBGRA8 {
		return frame.Frame{}, ErrNotBGRA8
	}
	if maxDim <= 0 {
		maxDim = 360
	}

	srcW, srcH := int(f.Width), int(f.Height)
	dstW, dstH := scaledDimensions(srcW, srcH, maxDim)

	dst := make([]byte, dstW*dstH*4)
	for y := 0; y < dstH; y++ {
		srcY := y * srcH / dstH
		if srcY >= srcH {
			srcY = srcH - 1
		}
		for x := 0; x < dstW; x++ {
			srcX := x * srcW / dstW
			if srcX >= srcW {
				srcX = srcW - 1
			}
			srcOff := (srcY*srcW + srcX) * 4
			dstOff := (y*dstW + x) * 4
			copy(dst[dstOff:dstOff+4], f.Pixels[srcOff:srcOff+4])
		}
	}

	return frame.NewFromPixels(uint32(dstW), uint32(dstH), pixelmath.FormatBGRA8, dst)
}

// scaledDimensions computes the (width, height) pair with the longest edge
// equal to maxDim and the other edge scaled proportionally, with a floor
// of 1 pixel (§6 "aspect preserved, minimum dimension of 1").
func scaledDimensions(srcW, srcH, maxDim int) (int, int) {
	if srcW <= 0 || srcH <= 0 {
		return 1, 1
	}
	if srcW >= srcH {
		h := srcH * maxDim / srcW
		if h < 1 {
			h = 1
		}
		return maxDim, h
	}
	w := srcW * maxDim / srcH
	if w < 1 {
		w = 1
	}
	return w, maxDim
}

// WriteThumbnail deletes any existing file at path (§6 "Deleted before
// each new thumbnail write") then writes f, scaled to maxDim's longest
// edge, as a PNG. Deletion errors are ignored when the file doesn't exist.
func WriteThumbnail(f frame.Frame, path string, maxDim int) error {
	scaled, err := ScaleToLongestEdge(f, maxDim)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("save: remove existing thumbnail: %w", err)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save: create thumbnail: %w", err)
	}
	defer out.Close()

	if err := EncodePNG(out, scaled); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}
