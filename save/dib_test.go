package save

import (
	"testing"

	"github.com/stretchr/testify/require"

	"hdrcap/frame"
	"hdrcap/pixelmath"
)

func makeBGRA8Frame(t *testing.T, w, h uint32, fill func(i int) byte) frame.Frame {
	t.Helper()
	pixels := make([]byte, w*h*4)
	for i := range pixels {
		pixels[i] = fill(i)
	}
	f, err := frame.NewFromPixels(w, h, pixelmath.FormatBGRA8, pixels)
	require.NoError(t, err)
	return f
}

func TestBuildDIBHeader(t *testing.T) {
	f := makeBGRA8Frame(t, 2, 2, func(i int) byte { return byte(i) })
	block, err := BuildDIB(f)
	require.NoError(t, err)
	require.Len(t, block, dibHeaderSize+2*2*4)

	require.Equal(t, uint32(40), leUint32(block[0:4]))
	require.Equal(t, uint32(2), leUint32(block[4:8]))
	require.Equal(t, uint32(2), leUint32(block[8:12]), "biHeight must be positive: bottom-up")
	require.Equal(t, uint16(1), leUint16(block[12:14]))
	require.Equal(t, uint16(32), leUint16(block[14:16]))
	require.Equal(t, uint32(0), leUint32(block[16:20]), "BI_RGB uncompressed")
}

func TestBuildDIBRowsAreBottomUp(t *testing.T) {
	// Row 0 all zero, row 1 all 0xFF.
	pixels := []byte{
		0, 0, 0, 0, 0, 0, 0, 0,
		255, 255, 255, 255, 255, 255, 255, 255,
	}
	f, err := frame.NewFromPixels(2, 2, pixelmath.FormatBGRA8, pixels)
	require.NoError(t, err)

	block, err := BuildDIB(f)
	require.NoError(t, err)

	body := block[dibHeaderSize:]
	require.Equal(t, byte(255), body[0], "first output row must be the source's last row")
	require.Equal(t, byte(0), body[8], "second output row must be the source's first row")
}

func TestBuildDIBRejectsNonBGRA8(t *testing.T) {
	f, err := frame.NewFromPixels(1, 1, pixelmath.FormatRGBA16F, make([]byte, 8))
	require.NoError(t, err)
	_, err = BuildDIB(f)
	require.ErrorIs(t, err, ErrNotBGRA8)
}

func leUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func leUint16(b []byte) uint16 {
	return uint16(b[0]) | uint16(b[1])<<8
}
