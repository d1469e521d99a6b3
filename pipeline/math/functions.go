package math

import (
	m "math"
)

const (
	/** @brief A huge number that should be larger than any valid number used. */
	K_INFINITY float32 = 1e30
	/** @brief Smallest positive number where 1.0 + FLOAT_EPSILON != 0 */
	K_FLOAT_EPSILON float32 = 1.192092896e-07
)

/**
 * Note that these are here in order to prevent having to import the
 * entire <math.h> everywhere.
 */
func Sqrt(x float32) float32 {
	return float32(m.Sqrt(float64(x)))
}

func Abs(x float32) float32 {
	return float32(m.Abs(float64(x)))
}

func Min(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func Max(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// ------------------------------------------
// Vector 3

func (v Vec3) LengthSquared() float32 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

func (v Vec3) Length() float32 {
	return Sqrt(v.LengthSquared())
}

// Normalized returns a unit-length copy of the vector. Vectors shorter than
// epsilon are returned unchanged to avoid dividing by zero.
func (v Vec3) Normalized() Vec3 {
	l := v.Length()
	if l < K_FLOAT_EPSILON {
		return v
	}
	return Vec3{v.X / l, v.Y / l, v.Z / l}
}

func MinVec3(a, b Vec3) Vec3 {
	return Vec3{Min(a.X, b.X), Min(a.Y, b.Y), Min(a.Z, b.Z)}
}

func MaxVec3(a, b Vec3) Vec3 {
	return Vec3{Max(a.X, b.X), Max(a.Y, b.Y), Max(a.Z, b.Z)}
}

// NewExtents3D returns extents primed for accumulation: Min at +infinity and
// Max at -infinity so the first accumulated point replaces both.
func NewExtents3D() Extents3D {
	return Extents3D{
		Min: Vec3{K_INFINITY, K_INFINITY, K_INFINITY},
		Max: Vec3{-K_INFINITY, -K_INFINITY, -K_INFINITY},
	}
}

// Accumulate grows the extents to include the given point.
func (e *Extents3D) Accumulate(p Vec3) {
	e.Min = MinVec3(e.Min, p)
	e.Max = MaxVec3(e.Max, p)
}

// Merge grows the extents to include another extents volume.
func (e *Extents3D) Merge(o Extents3D) {
	e.Min = MinVec3(e.Min, o.Min)
	e.Max = MaxVec3(e.Max, o.Max)
}
