package save

import (
	"encoding/binary"
	"fmt"

	"hdrcap/frame"
	"hdrcap/pixelmath"
)

// dibHeaderSize is the BITMAPINFOHEADER size in bytes (§6 "a bitmap-info
// header (size = 40 bytes...)").
const dibHeaderSize = 40

// BuildDIB produces a CF_DIB-compatible memory block for f: a 40-byte
// BITMAPINFOHEADER (positive biHeight, meaning bottom-up rows) followed by
// pixel rows in bottom-up order, 4-byte stride, BGRA order (§6 "Clipboard
// output"). f must already be BGRA8 with CPU pixels populated.
func BuildDIB(f frame.Frame) ([]byte, error) {
	if !f.HasPixels() {
		return nil, fmt.Errorf("save: %w", frame.ErrNoPixelSource)
	}
	if f.Format != pixelmath.FormatBGRA8 {
		return nil, ErrNotBGRA8
	}

	width, height := int(f.Width), int(f.Height)
	stride := width * 4
	imageSize := stride * height

	block := make([]byte, dibHeaderSize+imageSize)
	writeDIBHeader(block[:dibHeaderSize], int32(width), int32(height), uint32(imageSize))

	body := block[dibHeaderSize:]
	for row := 0; row < height; row++ {
		srcRow := f.Pixels[row*stride : (row+1)*stride]
		dstRow := body[(height-1-row)*stride : (height-row)*stride]
		copy(dstRow, srcRow)
	}
	return block, nil
}

func writeDIBHeader(h []byte, width, height int32, imageSize uint32) {
	binary.LittleEndian.PutUint32(h[0:4], dibHeaderSize)
	binary.LittleEndian.PutUint32(h[4:8], uint32(width))
	binary.LittleEndian.PutUint32(h[8:12], uint32(height)) // positive: bottom-up
	binary.LittleEndian.PutUint16(h[12:14], 1)              // planes
	binary.LittleEndian.PutUint16(h[14:16], 32)             // bit count
	binary.LittleEndian.PutUint32(h[16:20], 0)              // BI_RGB, uncompressed
	binary.LittleEndian.PutUint32(h[20:24], imageSize)
	binary.LittleEndian.PutUint32(h[24:28], 0) // x pels per meter
	binary.LittleEndian.PutUint32(h[28:32], 0) // y pels per meter
	binary.LittleEndian.PutUint32(h[32:36], 0) // colors used
	binary.LittleEndian.PutUint32(h[36:40], 0) // colors important
}
