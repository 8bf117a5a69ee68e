package frame

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"hdrcap/pixelmath"
)

type fakeTexture struct {
	w, h uint32
	fmt  pixelmath.Format
}

func (f fakeTexture) Width() uint32            { return f.w }
func (f fakeTexture) Height() uint32           { return f.h }
func (f fakeTexture) Format() pixelmath.Format { return f.fmt }

type fakeReader struct {
	pixels []byte
	err    error
	calls  int
}

func (r *fakeReader) ReadPixels(tex Texture) ([]byte, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.pixels, nil
}

func TestNewDerivesFromTexture(t *testing.T) {
	tex := fakeTexture{w: 4, h: 3, fmt: pixelmath.FormatBGRA8}
	f, err := New(tex)
	require.NoError(t, err)
	require.Equal(t, uint32(4), f.Width)
	require.Equal(t, uint32(3), f.Height)
	require.Equal(t, uint32(4), f.BytesPerPixel)
	require.False(t, f.HasPixels())
}

func TestNewRejectsUnsupportedFormat(t *testing.T) {
	_, err := New(fakeTexture{w: 1, h: 1, fmt: pixelmath.FormatUnknown})
	require.Error(t, err)
}

func TestMaterializeNoOpWhenPixelsPresent(t *testing.T) {
	f, err := NewFromPixels(2, 1, pixelmath.FormatBGRA8, make([]byte, 8))
	require.NoError(t, err)
	r := &fakeReader{}
	require.NoError(t, f.Materialize(r))
	require.Equal(t, 0, r.calls)
}

func TestMaterializeReadsBackExactSize(t *testing.T) {
	tex := fakeTexture{w: 2, h: 2, fmt: pixelmath.FormatBGRA8}
	f, err := New(tex)
	require.NoError(t, err)
	r := &fakeReader{pixels: make([]byte, 2*2*4)}
	require.NoError(t, f.Materialize(r))
	require.Len(t, f.Pixels, 16)
	require.Equal(t, 1, r.calls)
}

func TestMaterializeFailsOnSizeMismatch(t *testing.T) {
	tex := fakeTexture{w: 2, h: 2, fmt: pixelmath.FormatBGRA8}
	f, err := New(tex)
	require.NoError(t, err)
	r := &fakeReader{pixels: make([]byte, 4)}
	require.Error(t, f.Materialize(r))
}

func TestMaterializeFailsWithNoSource(t *testing.T) {
	var f Frame
	f.Width, f.Height, f.BytesPerPixel = 1, 1, 4
	require.ErrorIs(t, f.Materialize(nil), ErrNoPixelSource)
}

func TestMaterializePropagatesReaderError(t *testing.T) {
	tex := fakeTexture{w: 1, h: 1, fmt: pixelmath.FormatBGRA8}
	f, err := New(tex)
	require.NoError(t, err)
	r := &fakeReader{err: errors.New("device lost")}
	require.Error(t, f.Materialize(r))
}

func makeTestFrame(t *testing.T, w, h uint32) Frame {
	t.Helper()
	pixels := make([]byte, w*h*4)
	for i := range pixels {
		pixels[i] = byte(i % 256)
	}
	f, err := NewFromPixels(w, h, pixelmath.FormatBGRA8, pixels)
	require.NoError(t, err)
	return f
}

func TestCropFullBoundsIsBitwiseEqual(t *testing.T) {
	f := makeTestFrame(t, 8, 6)
	c := Crop(f, 0, 0, 8, 6)
	require.Equal(t, f.Width, c.Width)
	require.Equal(t, f.Height, c.Height)
	require.Equal(t, f.Pixels, c.Pixels)
	require.Nil(t, c.GPUTexture)
}

func TestCropInteriorRegion(t *testing.T) {
	f := makeTestFrame(t, 4, 4)
	c := Crop(f, 1, 1, 2, 2)
	require.Equal(t, uint32(2), c.Width)
	require.Equal(t, uint32(2), c.Height)

	bpp := uint64(4)
	srcStride := uint64(4) * bpp
	for row := 0; row < 2; row++ {
		srcOff := (uint64(1+row))*srcStride + uint64(1)*bpp
		dstOff := uint64(row) * uint64(2) * bpp
		require.Equal(t, f.Pixels[srcOff:srcOff+2*bpp], c.Pixels[dstOff:dstOff+2*bpp])
	}
}

func TestCropClampsOutOfRangeRect(t *testing.T) {
	f := makeTestFrame(t, 4, 4)
	c := Crop(f, 2, 2, 100, 100)
	require.Equal(t, uint32(2), c.Width)
	require.Equal(t, uint32(2), c.Height)
}

func TestCropEmptyIntersectionYieldsZeroArea(t *testing.T) {
	f := makeTestFrame(t, 4, 4)
	c := Crop(f, 10, 10, 5, 5)
	require.Equal(t, uint32(0), c.Width)
	require.Equal(t, uint32(0), c.Height)
	require.Empty(t, c.Pixels)
}

func TestCropNegativeOriginClamps(t *testing.T) {
	f := makeTestFrame(t, 4, 4)
	c := Crop(f, -2, -2, 4, 4)
	require.Equal(t, uint32(2), c.Width)
	require.Equal(t, uint32(2), c.Height)
}
