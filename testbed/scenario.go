// Package testbed generates synthetic strided buffers covering every
// conversion the pipeline supports, for the demo binary and for soak runs
// without a manifest on hand.
package testbed

import (
	"encoding/binary"
	m "math"

	"golang.org/x/exp/rand"

	"github.com/spaghettifunk/travaso/pipeline/mesh"
	"github.com/spaghettifunk/travaso/pipeline/transcode"
)

type Scenario struct {
	Name string
	Job  transcode.Job
}

const (
	vertexCount   = 10_000
	triangleCount = 3_000
	quadCount     = 500
	boneCount     = 96
)

// Build produces one scenario per semantics over freshly generated buffers.
// The same seed reproduces the same bytes.
func Build(seed uint64) []Scenario {
	rng := rand.New(rand.NewSource(seed))

	return []Scenario{
		{Name: "positions", Job: positions(rng)},
		{Name: "normals", Job: normals(rng)},
		{Name: "tangents", Job: tangents(rng)},
		{Name: "texcoords", Job: texcoords(rng)},
		{Name: "skin-weights", Job: skinWeights(rng)},
		{Name: "skin-indices", Job: skinIndices(rng)},
		{Name: "triangles", Job: triangles(rng)},
		{Name: "quads", Job: quads(rng)},
		{Name: "bone-matrices", Job: boneMatrices(rng)},
	}
}

func putF32(b []byte, v float32) {
	binary.LittleEndian.PutUint32(b, m.Float32bits(v))
}

func packedDst(ct mesh.ComponentType, shape mesh.AttributeShape, count int) mesh.TypedBuffer {
	return mesh.View(make([]byte, count*mesh.TightSize(ct, shape)), ct, shape, count)
}

// positions: float32 VEC3 interleaved at stride 16 to exercise strided reads.
func positions(rng *rand.Rand) transcode.Job {
	const stride = 16
	data := make([]byte, vertexCount*stride)
	for i := 0; i < vertexCount; i++ {
		for c := 0; c < 3; c++ {
			putF32(data[i*stride+c*4:], rng.Float32()*200-100)
		}
	}

	return transcode.Job{
		Src: mesh.TypedBuffer{
			Data:          data,
			ComponentType: mesh.Float32,
			Shape:         mesh.Vec3,
			Count:         vertexCount,
			Stride:        stride,
		},
		Dst:            packedDst(mesh.Float32, mesh.Vec3, vertexCount),
		Semantics:      mesh.Position,
		CollectExtents: true,
	}
}

// normals: normalized int16 VEC3 with 2 bytes of interleave padding.
func normals(rng *rand.Rand) transcode.Job {
	const stride = 8
	data := make([]byte, vertexCount*stride)
	for i := 0; i < vertexCount; i++ {
		for c := 0; c < 3; c++ {
			binary.LittleEndian.PutUint16(data[i*stride+c*2:], uint16(int16(rng.Intn(65536)-32768)))
		}
	}

	return transcode.Job{
		Src: mesh.TypedBuffer{
			Data:          data,
			ComponentType: mesh.Int16,
			Shape:         mesh.Vec3,
			Count:         vertexCount,
			Stride:        stride,
		},
		Dst:       packedDst(mesh.Float32, mesh.Vec3, vertexCount),
		Semantics: mesh.Normal,
		Normalize: true,
	}
}

// tangents: normalized int8 VEC4, w limited to the two handedness signs.
func tangents(rng *rand.Rand) transcode.Job {
	data := make([]byte, vertexCount*4)
	for i := 0; i < vertexCount; i++ {
		for c := 0; c < 3; c++ {
			data[i*4+c] = byte(int8(rng.Intn(255) - 127))
		}
		if rng.Intn(2) == 0 {
			data[i*4+3] = byte(int8(127))
		} else {
			negW := int8(-127)
			data[i*4+3] = byte(negW)
		}
	}

	return transcode.Job{
		Src:       mesh.View(data, mesh.Int8, mesh.Vec4, vertexCount),
		Dst:       packedDst(mesh.Float32, mesh.Vec4, vertexCount),
		Semantics: mesh.Tangent,
		Normalize: true,
	}
}

// texcoords: normalized uint16 VEC2.
func texcoords(rng *rand.Rand) transcode.Job {
	data := make([]byte, vertexCount*4)
	for i := 0; i < vertexCount*2; i++ {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(rng.Intn(65536)))
	}

	return transcode.Job{
		Src:       mesh.View(data, mesh.UInt16, mesh.Vec2, vertexCount),
		Dst:       packedDst(mesh.Float32, mesh.Vec2, vertexCount),
		Semantics: mesh.TexCoord,
	}
}

func skinWeights(rng *rand.Rand) transcode.Job {
	data := make([]byte, vertexCount*16)
	for i := 0; i < vertexCount; i++ {
		w := [4]float32{rng.Float32(), rng.Float32(), rng.Float32(), rng.Float32()}
		sum := w[0] + w[1] + w[2] + w[3]
		for c := 0; c < 4; c++ {
			putF32(data[i*16+c*4:], w[c]/sum)
		}
	}

	return transcode.Job{
		Src:       mesh.View(data, mesh.Float32, mesh.Vec4, vertexCount),
		Dst:       packedDst(mesh.Float32, mesh.Vec4, vertexCount),
		Semantics: mesh.SkinWeight,
	}
}

// skinIndices: uint32 VEC4 narrowing to uint16.
func skinIndices(rng *rand.Rand) transcode.Job {
	data := make([]byte, vertexCount*16)
	for i := 0; i < vertexCount*4; i++ {
		binary.LittleEndian.PutUint32(data[i*4:], uint32(rng.Intn(boneCount)))
	}

	return transcode.Job{
		Src:       mesh.View(data, mesh.UInt32, mesh.Vec4, vertexCount),
		Dst:       packedDst(mesh.UInt16, mesh.Vec4, vertexCount),
		Semantics: mesh.SkinIndex,
	}
}

func triangles(rng *rand.Rand) transcode.Job {
	count := triangleCount * 3
	data := make([]byte, count*2)
	for i := 0; i < count; i++ {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(rng.Intn(vertexCount)))
	}

	return transcode.Job{
		Src:              mesh.View(data, mesh.UInt16, mesh.Scalar, count),
		Dst:              packedDst(mesh.UInt16, mesh.Scalar, count),
		Semantics:        mesh.IndexTriangle,
		BaseVertexOffset: 100,
	}
}

func quads(rng *rand.Rand) transcode.Job {
	count := quadCount * 4
	data := make([]byte, count*4)
	for i := 0; i < count; i++ {
		binary.LittleEndian.PutUint32(data[i*4:], uint32(rng.Intn(vertexCount)))
	}

	return transcode.Job{
		Src:       mesh.View(data, mesh.UInt32, mesh.Scalar, count),
		Dst:       packedDst(mesh.UInt32, mesh.Scalar, quadCount*6),
		Semantics: mesh.IndexQuad,
	}
}

func boneMatrices(rng *rand.Rand) transcode.Job {
	data := make([]byte, boneCount*64)
	for i := 0; i < boneCount*16; i++ {
		putF32(data[i*4:], rng.Float32()*2-1)
	}

	return transcode.Job{
		Src:       mesh.View(data, mesh.Float32, mesh.Mat4, boneCount),
		Dst:       packedDst(mesh.Float32, mesh.Mat4, boneCount),
		Semantics: mesh.Matrix,
	}
}
