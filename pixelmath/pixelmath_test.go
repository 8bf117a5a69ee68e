package pixelmath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHalfToFloatCorpus(t *testing.T) {
	cases := []struct {
		name string
		in   uint16
		want float32
	}{
		{"positive zero", 0x0000, 0},
		{"negative zero", 0x8000, float32(math.Copysign(0, -1))},
		{"one", 0x3C00, 1.0},
		{"negative one", 0xBC00, -1.0},
		{"min subnormal", 0x0001, float32(5.9604645e-08)},
		{"max normal", 0x7BFF, float32(65504.0)},
		{"min normal", 0x0400, float32(6.1035156e-05)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := HalfToFloat(tc.in)
			require.InDelta(t, float64(tc.want), float64(got), 1e-6)
		})
	}
}

func TestHalfToFloatSignPreserved(t *testing.T) {
	require.True(t, math.Signbit(float64(HalfToFloat(0x8000))))
	require.False(t, math.Signbit(float64(HalfToFloat(0x0000))))
}

func TestHalfToFloatInfinity(t *testing.T) {
	require.True(t, math.IsInf(float64(HalfToFloat(0x7C00)), 1))
	require.True(t, math.IsInf(float64(HalfToFloat(0xFC00)), -1))
}

func TestHalfToFloatNaN(t *testing.T) {
	require.True(t, math.IsNaN(float64(HalfToFloat(0x7E00))))
	require.True(t, math.IsNaN(float64(HalfToFloat(0xFE00))))
}

func TestLinearToSRGBMonotonic(t *testing.T) {
	prev := float32(-1)
	for i := 0; i <= 1000; i++ {
		c := float32(i) / 1000.0
		v := LinearToSRGB(c)
		require.GreaterOrEqual(t, v, prev)
		prev = v
	}
}

func TestLinearToSRGBEndpoints(t *testing.T) {
	require.InDelta(t, 0.0, float64(LinearToSRGB(0)), 1e-5)
	require.InDelta(t, 1.0, float64(LinearToSRGB(1)), 1e-5)
	require.InDelta(t, 0.04045, float64(LinearToSRGB(0.0031308)), 1e-4)
}

func TestSRGBRoundTrip(t *testing.T) {
	for i := 0; i <= 20; i++ {
		c := float32(i) / 20.0
		back := SRGBToLinear(LinearToSRGB(c))
		require.InDelta(t, float64(c), float64(back), 1e-3)
	}
}

func TestUnitClampTo8Idempotent(t *testing.T) {
	for x := 0; x <= 255; x++ {
		got := UnitClampTo8(float32(x) / 255.0)
		require.Equal(t, uint8(x), got)
	}
}

func TestUnitClampTo8ClampsOutOfRange(t *testing.T) {
	require.Equal(t, uint8(0), UnitClampTo8(-5))
	require.Equal(t, uint8(255), UnitClampTo8(5))
}

func TestBytesPerPixel(t *testing.T) {
	require.Equal(t, uint32(4), BytesPerPixel(FormatBGRA8))
	require.Equal(t, uint32(8), BytesPerPixel(FormatRGBA16F))
	require.Equal(t, uint32(0), BytesPerPixel(FormatUnknown))
}
