package transcode

import (
	"encoding/binary"

	"github.com/spaghettifunk/travaso/pipeline/mesh"
)

// readIndex reads index i from a scalar unsigned index view.
func readIndex(b *mesh.TypedBuffer, i int) uint32 {
	e := b.Element(i)
	switch b.ComponentType {
	case mesh.UInt8:
		return uint32(e[0])
	case mesh.UInt16:
		return uint32(binary.LittleEndian.Uint16(e))
	default:
		return binary.LittleEndian.Uint32(e)
	}
}

// writeIndex writes index i of a scalar unsigned index view.
func writeIndex(b *mesh.TypedBuffer, i int, v uint32) {
	e := b.Element(i)
	switch b.ComponentType {
	case mesh.UInt16:
		binary.LittleEndian.PutUint16(e, uint16(v))
	default:
		binary.LittleEndian.PutUint32(e, v)
	}
}

// reverseTriangles rewinds triangles [start, end). Emitting [i0, i2, i1] for
// input [i0, i1, i2] is the unique swap that flips face winding without
// changing the triangle's vertex set; applying it twice restores the input.
func reverseTriangles(job *Job, start, end int) {
	base := job.BaseVertexOffset
	for p := start; p < end; p++ {
		i0 := readIndex(&job.Src, p*3)
		i1 := readIndex(&job.Src, p*3+1)
		i2 := readIndex(&job.Src, p*3+2)
		writeIndex(&job.Dst, p*3, i0+base)
		writeIndex(&job.Dst, p*3+1, i2+base)
		writeIndex(&job.Dst, p*3+2, i1+base)
	}
}

// triangulateQuads converts quads [start, end) to rewound triangle pairs.
// Input quad [a, b, c, d] emits [a, c, b] and [c, a, d]: 6 indices per 4,
// both triangles sharing the a-c diagonal. The diagonal choice is part of
// the format contract; a different fan is visibly wrong on non-planar quads.
func triangulateQuads(job *Job, start, end int) {
	base := job.BaseVertexOffset
	for q := start; q < end; q++ {
		a := readIndex(&job.Src, q*4) + base
		b := readIndex(&job.Src, q*4+1) + base
		c := readIndex(&job.Src, q*4+2) + base
		d := readIndex(&job.Src, q*4+3) + base
		writeIndex(&job.Dst, q*6, a)
		writeIndex(&job.Dst, q*6+1, c)
		writeIndex(&job.Dst, q*6+2, b)
		writeIndex(&job.Dst, q*6+3, c)
		writeIndex(&job.Dst, q*6+4, a)
		writeIndex(&job.Dst, q*6+5, d)
	}
}
