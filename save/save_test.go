package save

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"

	"hdrcap/frame"
	"hdrcap/pixelmath"
)

func TestEncodePNGRoundTrip(t *testing.T) {
	pixels := []byte{
		10, 20, 30, 255, // BGRA pixel 0
		40, 50, 60, 255, // BGRA pixel 1
	}
	f, err := frame.NewFromPixels(2, 1, pixelmath.FormatBGRA8, pixels)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, EncodePNG(&buf, f))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	require.Equal(t, 2, img.Bounds().Dx())
	require.Equal(t, 1, img.Bounds().Dy())

	r, g, b, a := img.At(0, 0).RGBA()
	require.Equal(t, uint32(30*0x101), r)
	require.Equal(t, uint32(20*0x101), g)
	require.Equal(t, uint32(10*0x101), b)
	require.Equal(t, uint32(255*0x101), a)
}

func TestEncodePNGRejectsMissingPixels(t *testing.T) {
	f := frame.Frame{Width: 1, Height: 1, Format: pixelmath.FormatBGRA8}
	err := EncodePNG(&bytes.Buffer{}, f)
	require.ErrorIs(t, err, frame.ErrNoPixelSource)
}
