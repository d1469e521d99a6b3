package codec

import (
	"encoding/binary"
	m "math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/travaso/pipeline/mesh"
)

func f32Bytes(vals ...float32) []byte {
	b := make([]byte, len(vals)*4)
	for i, v := range vals {
		binary.LittleEndian.PutUint32(b[i*4:], m.Float32bits(v))
	}
	return b
}

func f32At(b []byte, i int) float32 {
	return m.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
}

func i16Bytes(vals ...int16) []byte {
	b := make([]byte, len(vals)*2)
	for i, v := range vals {
		binary.LittleEndian.PutUint16(b[i*2:], uint16(v))
	}
	return b
}

func i8Bytes(vals ...int8) []byte {
	b := make([]byte, len(vals))
	for i, v := range vals {
		b[i] = byte(v)
	}
	return b
}

func TestTransformPosition_FlipsFirstAxis(t *testing.T) {
	src := f32Bytes(1.5, -2.25, 3)
	dst := make([]byte, 12)

	TransformPosition(dst, src, mesh.Float32, 3)

	require.Equal(t, float32(-1.5), f32At(dst, 0))
	require.Equal(t, float32(-2.25), f32At(dst, 1))
	require.Equal(t, float32(3), f32At(dst, 2))
}

func TestTransformPosition_Involution(t *testing.T) {
	src := f32Bytes(0.125, 7, -42.5, 1)
	once := make([]byte, 16)
	twice := make([]byte, 16)

	TransformPosition(once, src, mesh.Float32, 4)
	TransformPosition(twice, once, mesh.Float32, 4)

	require.Equal(t, src, twice)
}

func TestTransformPosition_HalfFloatUpcast(t *testing.T) {
	// 0x3C00=1.0, 0x3E00=1.5, 0xC000=-2.0 in binary16.
	src := []byte{0x00, 0x3C, 0x00, 0x3E, 0x00, 0xC0}
	dst := make([]byte, 12)

	TransformPosition(dst, src, mesh.Float16, 3)

	require.Equal(t, float32(-1), f32At(dst, 0))
	require.Equal(t, float32(1.5), f32At(dst, 1))
	require.Equal(t, float32(-2), f32At(dst, 2))
}

func TestTransformNormal_Int16(t *testing.T) {
	src := i16Bytes(32767, 0, 0)
	dst := make([]byte, 12)

	TransformNormal(dst, src, mesh.Int16)

	require.Equal(t, float32(-1), f32At(dst, 0))
	require.Equal(t, float32(0), f32At(dst, 1))
	require.Equal(t, float32(0), f32At(dst, 2))
}

func TestTransformNormal_UnitLength(t *testing.T) {
	src := i16Bytes(11111, -22222, 7777)
	dst := make([]byte, 12)

	TransformNormal(dst, src, mesh.Int16)

	x, y, z := f32At(dst, 0), f32At(dst, 1), f32At(dst, 2)
	require.InDelta(t, 1.0, m.Sqrt(float64(x*x+y*y+z*z)), 1e-6)
}

func TestTransformNormalFast_SkipsNormalize(t *testing.T) {
	src := i16Bytes(16384, 0, 0)
	dst := make([]byte, 12)

	TransformNormalFast(dst, src, mesh.Int16)

	// 16384/32767, negated; fast path keeps the quantized length.
	require.InDelta(t, -16384.0/32767.0, f32At(dst, 0), 1e-7)
}

func TestTransformNormal_MaxNegativeClamps(t *testing.T) {
	// int8 -128 would decode below -1 without the clamp; -128 and -127 must
	// land on the same value.
	low := make([]byte, 12)
	TransformNormalFast(low, i8Bytes(-128, 0, 0), mesh.Int8)
	edge := make([]byte, 12)
	TransformNormalFast(edge, i8Bytes(-127, 0, 0), mesh.Int8)

	require.Equal(t, float32(1), f32At(low, 0))
	require.Equal(t, edge, low)
}

func TestTransformTangent_FlipsThirdAxisKeepsW(t *testing.T) {
	src := i8Bytes(0, 0, 127, -127)
	dst := make([]byte, 16)

	TransformTangent(dst, src, mesh.Int8)

	require.Equal(t, float32(0), f32At(dst, 0))
	require.Equal(t, float32(0), f32At(dst, 1))
	require.Equal(t, float32(-1), f32At(dst, 2))
	require.Equal(t, float32(-1), f32At(dst, 3))
}

func TestTransformTangent_FloatSource(t *testing.T) {
	src := f32Bytes(0.6, 0, 0.8, 1)
	dst := make([]byte, 16)

	TransformTangent(dst, src, mesh.Float32)

	require.InDelta(t, 0.6, f32At(dst, 0), 1e-6)
	require.InDelta(t, -0.8, f32At(dst, 2), 1e-6)
	require.Equal(t, float32(1), f32At(dst, 3))
}

func TestTransformTexCoord_InvertsV(t *testing.T) {
	src := f32Bytes(0.25, 0.25)
	dst := make([]byte, 8)

	TransformTexCoord(dst, src, mesh.Float32)

	require.Equal(t, float32(0.25), f32At(dst, 0))
	require.Equal(t, float32(0.75), f32At(dst, 1))
}

func TestTransformTexCoord_NormalizedUInt16(t *testing.T) {
	src := make([]byte, 4)
	binary.LittleEndian.PutUint16(src, 65535)     // u = 1
	binary.LittleEndian.PutUint16(src[2:], 65535) // v = 1

	dst := make([]byte, 8)
	TransformTexCoord(dst, src, mesh.UInt16)

	require.Equal(t, float32(1), f32At(dst, 0))
	require.Equal(t, float32(0), f32At(dst, 1))
}

func TestCopySkinWeight_Verbatim(t *testing.T) {
	src := f32Bytes(0.5, 0.25, 0.125, 0.125)
	dst := make([]byte, 16)

	CopySkinWeight(dst, src)

	require.Equal(t, src, dst)
}

func TestConvertSkinIndex_Widths(t *testing.T) {
	t.Run("uint8 widens", func(t *testing.T) {
		src := []byte{1, 2, 3, 255}
		dst := make([]byte, 8)
		ConvertSkinIndex(dst, src, mesh.UInt8)
		require.Equal(t, uint16(1), binary.LittleEndian.Uint16(dst))
		require.Equal(t, uint16(255), binary.LittleEndian.Uint16(dst[6:]))
	})

	t.Run("uint16 copies", func(t *testing.T) {
		src := make([]byte, 8)
		binary.LittleEndian.PutUint16(src, 4096)
		dst := make([]byte, 8)
		ConvertSkinIndex(dst, src, mesh.UInt16)
		require.Equal(t, uint16(4096), binary.LittleEndian.Uint16(dst))
	})

	t.Run("uint32 narrows", func(t *testing.T) {
		src := make([]byte, 16)
		binary.LittleEndian.PutUint32(src, 60000)
		dst := make([]byte, 8)
		ConvertSkinIndex(dst, src, mesh.UInt32)
		require.Equal(t, uint16(60000), binary.LittleEndian.Uint16(dst))
	})
}

func TestConvertSkinIndex_TruncationCeiling(t *testing.T) {
	// 70000 exceeds uint16 range and silently keeps its low 16 bits
	// (70000 - 65536 = 4464). Regression coverage for the documented
	// precision ceiling; this must not become an error.
	src := make([]byte, 16)
	binary.LittleEndian.PutUint32(src, 70000)
	dst := make([]byte, 8)

	ConvertSkinIndex(dst, src, mesh.UInt32)

	require.Equal(t, uint16(4464), binary.LittleEndian.Uint16(dst))
}

func TestTransformMatrix_SignPattern(t *testing.T) {
	vals := make([]float32, 16)
	for i := range vals {
		vals[i] = float32(i + 1)
	}
	src := f32Bytes(vals...)
	dst := make([]byte, 64)

	TransformMatrix(dst, src)

	flipped := map[int]bool{1: true, 2: true, 4: true, 8: true, 12: true}
	for i := 0; i < 16; i++ {
		want := vals[i]
		if flipped[i] {
			want = -want
		}
		require.Equal(t, want, f32At(dst, i), "element %d", i)
	}
}

func TestTransformMatrix_Involution(t *testing.T) {
	src := f32Bytes(
		0.5, 1, -2, 0,
		3, -0.25, 4, 0,
		-5, 6, 7, 0,
		8, 9, -10, 1,
	)
	once := make([]byte, 64)
	twice := make([]byte, 64)

	TransformMatrix(once, src)
	TransformMatrix(twice, once)

	require.Equal(t, src, twice)
}

func TestCopyOpaque(t *testing.T) {
	src := []byte{1, 2, 3, 4, 5, 6}
	dst := make([]byte, 6)

	CopyOpaque(dst, src, 6)

	require.Equal(t, src, dst)
}

func TestNormalizedRoundTrip(t *testing.T) {
	// Decoding then re-encoding a normalized component lands back on the
	// source value, within one quantization step.
	t.Run("int16", func(t *testing.T) {
		for _, v := range []int16{-32768, -32767, -12345, -1, 0, 1, 12345, 32767} {
			src := i16Bytes(v)
			f := normalizedComponent(src, mesh.Int16, 0)

			dst := make([]byte, 2)
			EncodeNormalized(dst, mesh.Int16, 0, f)
			got := int16(binary.LittleEndian.Uint16(dst))

			want := v
			if v == -32768 {
				// The clamp folds the maximal-negative value onto -1.
				want = -32767
			}
			require.InDelta(t, float64(want), float64(got), 1)
		}
	})

	t.Run("uint8", func(t *testing.T) {
		for _, v := range []byte{0, 1, 127, 254, 255} {
			f := normalizedComponent([]byte{v}, mesh.UInt8, 0)

			dst := make([]byte, 1)
			EncodeNormalized(dst, mesh.UInt8, 0, f)

			require.InDelta(t, float64(v), float64(dst[0]), 1)
		}
	})
}

func BenchmarkTransformPosition(b *testing.B) {
	src := f32Bytes(1, 2, 3)
	dst := make([]byte, 12)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		TransformPosition(dst, src, mesh.Float32, 3)
	}
}

func BenchmarkTransformNormal(b *testing.B) {
	src := i16Bytes(11111, -22222, 7777)
	dst := make([]byte, 12)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		TransformNormal(dst, src, mesh.Int16)
	}
}
