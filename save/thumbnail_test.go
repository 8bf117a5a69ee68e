package save

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"hdrcap/frame"
	"hdrcap/pixelmath"
)

func TestScaledDimensionsLandscape(t *testing.T) {
	w, h := scaledDimensions(3840, 2160, 360)
	require.Equal(t, 360, w)
	require.Equal(t, 202, h)
}

func TestScaledDimensionsPortrait(t *testing.T) {
	w, h := scaledDimensions(1080, 1920, 360)
	require.Equal(t, 202, w)
	require.Equal(t, 360, h)
}

func TestScaledDimensionsMinimumOnePixel(t *testing.T) {
	w, h := scaledDimensions(10000, 1, 360)
	require.Equal(t, 360, w)
	require.Equal(t, 1, h)
}

func TestScaleToLongestEdgePreservesFormat(t *testing.T) {
	f := makeBGRA8Frame(t, 100, 50, func(i int) byte { return byte(i % 256) })
	scaled, err := ScaleToLongestEdge(f, 40)
	require.NoError(t, err)
	require.Equal(t, pixelmath.FormatBGRA8, scaled.Format)
	require.Equal(t, uint32(40), scaled.Width)
	require.Equal(t, uint32(20), scaled.Height)
	require.Len(t, scaled.Pixels, 40*20*4)
}

func TestScaleToLongestEdgeRejectsNonBGRA8(t *testing.T) {
	f, err := frame.NewFromPixels(1, 1, pixelmath.FormatRGBA16F, make([]byte, 8))
	require.NoError(t, err)
	_, err = ScaleToLongestEdge(f, 360)
	require.ErrorIs(t, err, ErrNotBGRA8)
}

func TestWriteThumbnailDeletesExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "thumb.png")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	f := makeBGRA8Frame(t, 8, 8, func(i int) byte { return byte(i) })
	require.NoError(t, WriteThumbnail(f, path, 4))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotEqual(t, []byte("stale"), data)
	require.Greater(t, len(data), 8, "should contain a real PNG payload")
}
