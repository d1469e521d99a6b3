// Package codec converts single typed elements between the wire format's
// packed encodings and the host's in-memory layout, applying the handedness
// flip that separates the two coordinate conventions.
//
// Every entry point is a pure function of its input bytes and shape
// descriptors: no shared state, safe to call from any number of goroutines.
// None of them log or validate sizes; batching, scheduling and contract
// checks live one layer up in the transcode package.
package codec

import (
	"encoding/binary"
	m "math"

	"golang.org/x/exp/constraints"

	"github.com/spaghettifunk/travaso/pipeline/mesh"
)

var le = binary.LittleEndian

// snorm decodes a signed normalized integer component to [-1, 1]. The
// maximal-negative value of the type would land just below -1 and is clamped,
// so -128 (int8) and -127 both decode to -1.
func snorm[T constraints.Signed](v T, max float32) float32 {
	f := float32(v) / max
	if f < -1 {
		f = -1
	}
	return f
}

// floatComponent reads component i of a float-typed element, widening half
// floats to full floats.
func floatComponent(src []byte, ct mesh.ComponentType, i int) float32 {
	if ct == mesh.Float16 {
		return Float16ToFloat32(le.Uint16(src[i*2:]))
	}
	return m.Float32frombits(le.Uint32(src[i*4:]))
}

// normalizedComponent reads component i of an element, decoding normalized
// integers to [-1, 1] (signed) or [0, 1] (unsigned) and passing floats
// through.
func normalizedComponent(src []byte, ct mesh.ComponentType, i int) float32 {
	switch ct {
	case mesh.Int8:
		return snorm(int8(src[i]), 127)
	case mesh.UInt8:
		return float32(src[i]) / 255
	case mesh.Int16:
		return snorm(int16(le.Uint16(src[i*2:])), 32767)
	case mesh.UInt16:
		return float32(le.Uint16(src[i*2:])) / 65535
	default:
		return floatComponent(src, ct, i)
	}
}

// uintComponent reads component i of an unsigned integer element.
func uintComponent(src []byte, ct mesh.ComponentType, i int) uint32 {
	switch ct {
	case mesh.UInt8:
		return uint32(src[i])
	case mesh.UInt16:
		return uint32(le.Uint16(src[i*2:]))
	default:
		return le.Uint32(src[i*4:])
	}
}

func putFloat32(dst []byte, i int, v float32) {
	le.PutUint32(dst[i*4:], m.Float32bits(v))
}

// EncodeNormalized writes v as component i of a normalized integer element,
// rounding to the nearest representable step. This is the export-side inverse
// of normalizedComponent; floats are written verbatim.
func EncodeNormalized(dst []byte, ct mesh.ComponentType, i int, v float32) {
	switch ct {
	case mesh.Int8:
		dst[i] = byte(int8(roundf(v * 127)))
	case mesh.UInt8:
		dst[i] = byte(roundf(v * 255))
	case mesh.Int16:
		le.PutUint16(dst[i*2:], uint16(int16(roundf(v*32767))))
	case mesh.UInt16:
		le.PutUint16(dst[i*2:], uint16(roundf(v*65535)))
	default:
		putFloat32(dst, i, v)
	}
}

func roundf(v float32) float32 {
	return float32(m.Round(float64(v)))
}

// TransformPosition converts a float position (or generic float vector) to
// the host's handedness by negating the first axis. Components beyond the
// first copy through. Source may be float32 or float16; the destination is
// always float32.
func TransformPosition(dst, src []byte, ct mesh.ComponentType, components int) {
	for c := 0; c < components; c++ {
		v := floatComponent(src, ct, c)
		if c == 0 {
			v = -v
		}
		putFloat32(dst, c, v)
	}
}

// TransformNormal decodes a 3-component normal, negates the first axis and
// writes a unit-length float32 result. Use this entry point when downstream
// shading requires the unit-length guarantee.
func TransformNormal(dst, src []byte, ct mesh.ComponentType) {
	x := -normalizedComponent(src, ct, 0)
	y := normalizedComponent(src, ct, 1)
	z := normalizedComponent(src, ct, 2)

	if l := float32(m.Sqrt(float64(x*x + y*y + z*z))); l > 0 {
		x, y, z = x/l, y/l, z/l
	}

	putFloat32(dst, 0, x)
	putFloat32(dst, 1, y)
	putFloat32(dst, 2, z)
}

// TransformNormalFast is TransformNormal without the renormalize step, for
// callers that accept quantization-length normals in exchange for skipping
// the square root.
func TransformNormalFast(dst, src []byte, ct mesh.ComponentType) {
	putFloat32(dst, 0, -normalizedComponent(src, ct, 0))
	putFloat32(dst, 1, normalizedComponent(src, ct, 1))
	putFloat32(dst, 2, normalizedComponent(src, ct, 2))
}

// TransformTangent decodes a 4-component tangent, negates the third axis and
// renormalizes xyz. The w component carries the bitangent handedness sign and
// passes through untouched.
func TransformTangent(dst, src []byte, ct mesh.ComponentType) {
	x := normalizedComponent(src, ct, 0)
	y := normalizedComponent(src, ct, 1)
	z := -normalizedComponent(src, ct, 2)
	w := normalizedComponent(src, ct, 3)

	if l := float32(m.Sqrt(float64(x*x + y*y + z*z))); l > 0 {
		x, y, z = x/l, y/l, z/l
	}

	putFloat32(dst, 0, x)
	putFloat32(dst, 1, y)
	putFloat32(dst, 2, z)
	putFloat32(dst, 3, w)
}

// TransformTangentFast is TransformTangent without the renormalize step.
func TransformTangentFast(dst, src []byte, ct mesh.ComponentType) {
	putFloat32(dst, 0, normalizedComponent(src, ct, 0))
	putFloat32(dst, 1, normalizedComponent(src, ct, 1))
	putFloat32(dst, 2, -normalizedComponent(src, ct, 2))
	putFloat32(dst, 3, normalizedComponent(src, ct, 3))
}

// TransformTexCoord converts a 2-component texture coordinate, flipping the
// V axis (v' = 1 - v) and passing U through.
func TransformTexCoord(dst, src []byte, ct mesh.ComponentType) {
	putFloat32(dst, 0, normalizedComponent(src, ct, 0))
	putFloat32(dst, 1, 1-normalizedComponent(src, ct, 1))
}

// CopySkinWeight copies a 4-component float32 weight element verbatim; no
// coordinate semantics apply to weights.
func CopySkinWeight(dst, src []byte) {
	copy(dst[:16], src[:16])
}

// ConvertSkinIndex converts a 4-component joint index element to uint16.
// 8-bit sources widen, 16-bit copy, 32-bit narrow by truncation. Values above
// 65535 lose their high bits silently; the wire format's joint space fits in
// 16 bits for every realistic asset and this ceiling is documented behavior,
// not an error.
func ConvertSkinIndex(dst, src []byte, ct mesh.ComponentType) {
	for c := 0; c < 4; c++ {
		le.PutUint16(dst[c*2:], uint16(uintComponent(src, ct, c)))
	}
}

// Matrix element indices (column-major) whose sign flips under conjugation by
// the first-axis reflection: column 0's y and z terms plus the x term of
// columns 1 through 3. All other elements, column 0's w included, copy
// through.
var matrixFlip = [16]bool{
	1: true, 2: true,
	4: true,
	8: true,
	12: true,
}

// TransformMatrix converts a column-major 4x4 float32 matrix between
// coordinate systems by negating the basis-flip sign pattern. Negating twice
// restores the original matrix exactly.
func TransformMatrix(dst, src []byte) {
	for i := 0; i < 16; i++ {
		v := m.Float32frombits(le.Uint32(src[i*4:]))
		if matrixFlip[i] {
			v = -v
		}
		le.PutUint32(dst[i*4:], m.Float32bits(v))
	}
}

// CopyOpaque copies n bytes verbatim, for attributes with no defined
// coordinate semantics.
func CopyOpaque(dst, src []byte, n int) {
	copy(dst[:n], src[:n])
}
