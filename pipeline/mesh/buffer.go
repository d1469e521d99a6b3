package mesh

import "fmt"

// TypedBuffer is a non-owning view over raw bytes describing a strided run of
// typed elements. The backing slice stays owned by the caller, who must keep
// it alive for as long as any view over it is in use.
type TypedBuffer struct {
	Data          []byte
	ComponentType ComponentType
	Shape         AttributeShape
	Count         int
	Stride        int
	Offset        int
}

// View builds a tightly packed view over data.
func View(data []byte, ct ComponentType, shape AttributeShape, count int) TypedBuffer {
	return TypedBuffer{
		Data:          data,
		ComponentType: ct,
		Shape:         shape,
		Count:         count,
		Stride:        TightSize(ct, shape),
	}
}

// TightSize is the minimum byte size of one element of this view.
func (b TypedBuffer) TightSize() int {
	return TightSize(b.ComponentType, b.Shape)
}

// Validate checks the view invariants: the stride covers at least one tight
// element and the described element range fits inside the backing slice.
func (b TypedBuffer) Validate() error {
	tight := b.TightSize()
	if tight == 0 {
		return fmt.Errorf("buffer has no element size: %s %s", b.ComponentType, b.Shape)
	}
	if b.Count < 0 {
		return fmt.Errorf("negative element count %d", b.Count)
	}
	if b.Offset < 0 {
		return fmt.Errorf("negative byte offset %d", b.Offset)
	}
	if b.Stride < tight {
		return fmt.Errorf("stride %d smaller than tight element size %d", b.Stride, tight)
	}
	if b.Count > 0 {
		// The final element only needs its tight size, not a full stride.
		need := b.Offset + (b.Count-1)*b.Stride + tight
		if need > len(b.Data) {
			return fmt.Errorf("view needs %d bytes but backing buffer has %d", need, len(b.Data))
		}
	}
	return nil
}
