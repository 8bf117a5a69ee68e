package tonemap

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"hdrcap/frame"
	"hdrcap/pixelmath"
)

// half-precision bit patterns for the RGBA16F fixtures below, matching the
// IEEE-754 binary16 encodings pixelmath_test.go already relies on.
const (
	halfOne          = 0x3C00 // 1.0
	halfTwoPointFive = 0x4100 // 2.5
	halfFive         = 0x4500 // 5.0
	halfNegOne       = 0xBC00 // -1.0
)

func halfPixel(r, g, b, a uint16) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint16(buf[0:2], r)
	binary.LittleEndian.PutUint16(buf[2:4], g)
	binary.LittleEndian.PutUint16(buf[4:6], b)
	binary.LittleEndian.PutUint16(buf[6:8], a)
	return buf
}

func rgba16fFrame(t *testing.T, pixels ...[]byte) frame.Frame {
	t.Helper()
	buf := make([]byte, 0, len(pixels)*8)
	for _, p := range pixels {
		buf = append(buf, p...)
	}
	f, err := frame.NewFromPixels(uint32(len(pixels)), 1, pixelmath.FormatRGBA16F, buf)
	require.NoError(t, err)
	return f
}

func TestToneMapPaperWhite80SDRWhiteStaysWhite(t *testing.T) {
	f := rgba16fFrame(t, halfPixel(halfOne, halfOne, halfOne, halfOne))
	out, err := ToneMap(f, 80)
	require.NoError(t, err)
	require.Equal(t, []byte{255, 255, 255, 255}, out.Pixels)
}

func TestToneMapPaperWhite200SDRWhiteStaysWhite(t *testing.T) {
	f := rgba16fFrame(t, halfPixel(halfTwoPointFive, halfTwoPointFive, halfTwoPointFive, halfOne))
	out, err := ToneMap(f, 200)
	require.NoError(t, err)
	require.Equal(t, []byte{255, 255, 255, 255}, out.Pixels)
}

func TestToneMapPaperWhite200HDRHighlightClamped(t *testing.T) {
	f := rgba16fFrame(t, halfPixel(halfFive, halfFive, halfFive, halfOne))
	out, err := ToneMap(f, 200)
	require.NoError(t, err)
	require.Equal(t, []byte{255, 255, 255, 255}, out.Pixels)
}

func TestToneMapNegativeChannelClampsToZero(t *testing.T) {
	f := rgba16fFrame(t, halfPixel(halfNegOne, halfNegOne, halfNegOne, halfOne))
	out, err := ToneMap(f, 80)
	require.NoError(t, err)
	require.Equal(t, []byte{0, 0, 0, 255}, out.Pixels)
}

func TestToneMapBGRA8Passthrough(t *testing.T) {
	pixels := []byte{10, 20, 30, 255, 40, 50, 60, 128}
	f, err := frame.NewFromPixels(2, 1, pixelmath.FormatBGRA8, pixels)
	require.NoError(t, err)

	out, err := ToneMap(f, 80)
	require.NoError(t, err)
	require.Equal(t, pixels, out.Pixels)

	// Passthrough must copy, not alias, the source buffer.
	out.Pixels[0] = 99
	require.Equal(t, byte(10), pixels[0])
}

func TestToneMapRejectsMissingPixels(t *testing.T) {
	f := frame.Frame{Width: 1, Height: 1, Format: pixelmath.FormatRGBA16F}
	_, err := ToneMap(f, 80)
	require.ErrorIs(t, err, frame.ErrNoPixelSource)
}

func TestToneMapRejectsUnsupportedFormat(t *testing.T) {
	f := frame.Frame{Width: 1, Height: 1, Format: pixelmath.FormatUnknown, Pixels: []byte{0, 0, 0, 0}}
	_, err := ToneMap(f, 80)
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}
