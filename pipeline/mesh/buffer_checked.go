//go:build !meshunsafe

package mesh

// BoundsChecked reports whether element access re-validates bounds. The
// default build keeps the checks; the meshunsafe tag trades them for raw
// pointer stride arithmetic.
const BoundsChecked = true

// Element returns the tight byte span of element i. The returned slice has
// its capacity clipped so writes cannot run past the element.
func (b TypedBuffer) Element(i int) []byte {
	off := b.Offset + i*b.Stride
	end := off + b.TightSize()
	return b.Data[off:end:end]
}
