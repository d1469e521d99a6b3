package math

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVec3_Normalized(t *testing.T) {
	v := Vec3{3, 0, 4}.Normalized()
	require.InDelta(t, 0.6, v.X, 1e-6)
	require.InDelta(t, 0.8, v.Z, 1e-6)
	require.InDelta(t, 1.0, v.Length(), 1e-6)

	// Degenerate vectors come back unchanged instead of dividing by zero.
	zero := Vec3{}.Normalized()
	require.Equal(t, Vec3{}, zero)
}

func TestExtents3D_Accumulate(t *testing.T) {
	e := NewExtents3D()
	e.Accumulate(Vec3{1, -2, 3})
	e.Accumulate(Vec3{-4, 5, 0})

	require.Equal(t, Vec3{-4, -2, 0}, e.Min)
	require.Equal(t, Vec3{1, 5, 3}, e.Max)
}

func TestExtents3D_Merge(t *testing.T) {
	a := NewExtents3D()
	a.Accumulate(Vec3{0, 0, 0})
	a.Accumulate(Vec3{1, 1, 1})

	b := NewExtents3D()
	b.Accumulate(Vec3{-1, 2, 0.5})

	a.Merge(b)
	require.Equal(t, Vec3{-1, 0, 0}, a.Min)
	require.Equal(t, Vec3{1, 2, 1}, a.Max)
}
