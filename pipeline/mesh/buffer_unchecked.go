//go:build meshunsafe

package mesh

import "unsafe"

// BoundsChecked reports whether element access re-validates bounds. Under the
// meshunsafe tag element access is raw stride arithmetic over the backing
// array; callers must have validated the view up front.
const BoundsChecked = false

// Element returns the tight byte span of element i using unchecked pointer
// arithmetic. Out-of-range access is undefined behavior in this build.
func (b TypedBuffer) Element(i int) []byte {
	p := unsafe.Add(unsafe.Pointer(unsafe.SliceData(b.Data)), b.Offset+i*b.Stride)
	return unsafe.Slice((*byte)(p), b.TightSize())
}
