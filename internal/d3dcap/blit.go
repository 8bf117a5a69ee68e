package d3dcap

// BlitRect describes the sub-rectangle copy §4.3 step 2 performs when
// placing one output's acquired frame into the composite: the
// destination origin (the output's desktop rect minus the virtual-desktop
// origin) and the width/height actually copied, clamped so a region
// hanging outside the composite is trimmed rather than overflowing it.
type BlitRect struct {
	SrcX, SrcY int32
	DstX, DstY int32
	Width      int32
	Height     int32
}

// ComputeBlitRect derives the clamped blit for one output. outputRect is
// in virtual-desktop (bounds-relative) coordinates already offset by
// -bounds.Left/-bounds.Top; sourceSize is the acquired texture's actual
// pixel dimensions (which should equal outputRect's size but is clamped
// against defensively — some drivers deliver a texture a scanline short
// after a mode change). compositeSize is the destination texture's
// dimensions.
func ComputeBlitRect(outputRect Rect, sourceW, sourceH, compositeW, compositeH int32) BlitRect {
	w := min32(outputRect.Width(), sourceW)
	h := min32(outputRect.Height(), sourceH)

	dstX, dstY := outputRect.Left, outputRect.Top
	if dstX < 0 {
		w += dstX
		dstX = 0
	}
	if dstY < 0 {
		h += dstY
		dstY = 0
	}
	if dstX+w > compositeW {
		w = compositeW - dstX
	}
	if dstY+h > compositeH {
		h = compositeH - dstY
	}
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}

	srcX := int32(0)
	srcY := int32(0)
	if outputRect.Left < 0 {
		srcX = -outputRect.Left
	}
	if outputRect.Top < 0 {
		srcY = -outputRect.Top
	}

	return BlitRect{SrcX: srcX, SrcY: srcY, DstX: dstX, DstY: dstY, Width: w, Height: h}
}
