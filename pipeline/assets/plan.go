package assets

import (
	"fmt"

	"github.com/spaghettifunk/travaso/pipeline/mesh"
	"github.com/spaghettifunk/travaso/pipeline/transcode"
)

// BuildJob assembles a transcode.Job for one manifest conversion over the
// resolved sources. The destination buffer is allocated here, tightly
// packed, since the engine itself never allocates destination memory.
func (m *Manifest) BuildJob(conv Conversion, sources map[string]*Source) (transcode.Job, error) {
	acc, ok := m.accessor(conv.Accessor)
	if !ok {
		return transcode.Job{}, fmt.Errorf("conversion %q references unknown accessor %q", conv.Name, conv.Accessor)
	}

	src, ok := sources[acc.Buffer]
	if !ok {
		return transcode.Job{}, fmt.Errorf("conversion %q: buffer %q not resolved", conv.Name, acc.Buffer)
	}

	ct, err := mesh.ParseComponentType(acc.ComponentType)
	if err != nil {
		return transcode.Job{}, fmt.Errorf("conversion %q: %w", conv.Name, err)
	}
	shape, err := mesh.ParseAttributeShape(acc.Shape)
	if err != nil {
		return transcode.Job{}, fmt.Errorf("conversion %q: %w", conv.Name, err)
	}
	sem, err := mesh.ParseElementSemantics(conv.Semantics)
	if err != nil {
		return transcode.Job{}, fmt.Errorf("conversion %q: %w", conv.Name, err)
	}

	stride := acc.Stride
	if stride == 0 {
		stride = mesh.TightSize(ct, shape)
	}

	srcView := mesh.TypedBuffer{
		Data:          src.Data,
		ComponentType: ct,
		Shape:         shape,
		Count:         acc.Count,
		Stride:        stride,
		Offset:        acc.Offset,
	}

	dstCT, dstShape, dstCount := destinationFor(sem, srcView)
	dst := mesh.View(make([]byte, dstCount*mesh.TightSize(dstCT, dstShape)), dstCT, dstShape, dstCount)

	return transcode.Job{
		Src:              srcView,
		Dst:              dst,
		Semantics:        sem,
		BaseVertexOffset: conv.BaseVertex,
		Normalize:        conv.Normalize,
		TimeCritical:     conv.TimeCritical,
		CollectExtents:   conv.CollectExtents,
	}, nil
}

// destinationFor picks the host-side layout each semantics converts into:
// float32 for all float attributes, uint16 joints, widened 8-bit indices,
// and a verbatim layout for opaque copies.
func destinationFor(sem mesh.ElementSemantics, src mesh.TypedBuffer) (mesh.ComponentType, mesh.AttributeShape, int) {
	switch sem {
	case mesh.Position:
		return mesh.Float32, src.Shape, src.Count
	case mesh.Normal:
		return mesh.Float32, mesh.Vec3, src.Count
	case mesh.Tangent:
		return mesh.Float32, mesh.Vec4, src.Count
	case mesh.TexCoord:
		return mesh.Float32, mesh.Vec2, src.Count
	case mesh.SkinWeight:
		return mesh.Float32, mesh.Vec4, src.Count
	case mesh.SkinIndex:
		return mesh.UInt16, mesh.Vec4, src.Count
	case mesh.Matrix:
		return mesh.Float32, mesh.Mat4, src.Count
	case mesh.IndexTriangle, mesh.IndexQuad:
		ct := src.ComponentType
		if ct == mesh.UInt8 {
			// Hosts reject 8-bit index buffers; widen on the way in.
			ct = mesh.UInt16
		}
		count := src.Count
		if sem == mesh.IndexQuad {
			count = src.Count / 4 * 6
		}
		return ct, mesh.Scalar, count
	default:
		return src.ComponentType, src.Shape, src.Count
	}
}
