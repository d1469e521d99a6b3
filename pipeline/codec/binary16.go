package codec

import m "math"

// Float16ToFloat32 widens an IEEE 754 binary16 value to binary32. Subnormals,
// infinities and NaNs all map to their binary32 counterparts. Half floats are
// accepted on the source side only; destinations always hold full floats so
// the import never introduces a lossy half round-trip.
func Float16ToFloat32(h uint16) float32 {
	sign := uint32(h>>15) & 0x1
	exp := uint32(h>>10) & 0x1f
	mant := uint32(h) & 0x3ff

	var bits uint32
	switch {
	case exp == 0:
		if mant == 0 {
			// signed zero
			bits = sign << 31
		} else {
			// subnormal: renormalize into binary32 range
			e := uint32(113)
			for mant&0x400 == 0 {
				mant <<= 1
				e--
			}
			mant &= 0x3ff
			bits = sign<<31 | e<<23 | mant<<13
		}
	case exp == 0x1f:
		// infinity or NaN
		bits = sign<<31 | 0xff<<23 | mant<<13
	default:
		bits = sign<<31 | (exp+112)<<23 | mant<<13
	}

	return m.Float32frombits(bits)
}
