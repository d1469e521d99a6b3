package transcode

import (
	"fmt"

	"github.com/spaghettifunk/travaso/pipeline/mesh"
)

// Job describes one batch conversion: a source view, a pre-sized destination
// view, and the semantics selecting which element transform applies. Jobs
// are created per attribute per primitive, consumed exactly once, and carry
// no state after completion.
type Job struct {
	Src mesh.TypedBuffer
	Dst mesh.TypedBuffer

	Semantics mesh.ElementSemantics

	// BaseVertexOffset is added to every emitted index; ignored for
	// non-index jobs.
	BaseVertexOffset uint32

	// Normalize selects the full L2-normalize path for Normal and Tangent
	// jobs; the fast path skips the renormalize.
	Normalize bool

	// TimeCritical holds inline execution of this job to the agent's tick
	// budget.
	TimeCritical bool

	// CollectExtents accumulates min/max bounds of converted positions for
	// export metadata. Only honored for Vec3 Position jobs.
	CollectExtents bool
}

// units is the number of independent work items the job partitions into:
// primitives for index jobs, elements for everything else.
func (j *Job) units() int {
	switch j.Semantics {
	case mesh.IndexTriangle:
		return j.Src.Count / 3
	case mesh.IndexQuad:
		return j.Src.Count / 4
	}
	return j.Src.Count
}

func wantShape(sem mesh.ElementSemantics, got, want mesh.AttributeShape) error {
	if got != want {
		return fmt.Errorf("%s job requires %s elements, got %s", sem, want, got)
	}
	return nil
}

func wantFloatDst(sem mesh.ElementSemantics, b mesh.TypedBuffer) error {
	if b.ComponentType != mesh.Float32 {
		return fmt.Errorf("%s job requires a float32 destination, got %s", sem, b.ComponentType)
	}
	return nil
}

// Validate rejects jobs that violate the caller contract: bad view bounds,
// mismatched shapes, unsupported encodings or an undersized destination.
// The checked build runs this before any write; the meshunsafe build skips
// it and a bad job is undefined behavior.
func (j *Job) Validate() error {
	if err := j.Src.Validate(); err != nil {
		return fmt.Errorf("source view: %w", err)
	}
	if err := j.Dst.Validate(); err != nil {
		return fmt.Errorf("destination view: %w", err)
	}

	switch j.Semantics {
	case mesh.Position:
		if !j.Src.ComponentType.Float() {
			return fmt.Errorf("position job requires a float source, got %s", j.Src.ComponentType)
		}
		if err := wantFloatDst(j.Semantics, j.Dst); err != nil {
			return err
		}
		if j.Src.Shape != j.Dst.Shape {
			return fmt.Errorf("position job shape mismatch: %s vs %s", j.Src.Shape, j.Dst.Shape)
		}

	case mesh.Normal:
		if err := wantShape(j.Semantics, j.Src.Shape, mesh.Vec3); err != nil {
			return err
		}
		if err := wantShape(j.Semantics, j.Dst.Shape, mesh.Vec3); err != nil {
			return err
		}
		if err := wantFloatDst(j.Semantics, j.Dst); err != nil {
			return err
		}
		if err := normalizedSource(j.Semantics, j.Src.ComponentType); err != nil {
			return err
		}

	case mesh.Tangent:
		if err := wantShape(j.Semantics, j.Src.Shape, mesh.Vec4); err != nil {
			return err
		}
		if err := wantShape(j.Semantics, j.Dst.Shape, mesh.Vec4); err != nil {
			return err
		}
		if err := wantFloatDst(j.Semantics, j.Dst); err != nil {
			return err
		}
		if err := normalizedSource(j.Semantics, j.Src.ComponentType); err != nil {
			return err
		}

	case mesh.TexCoord:
		if err := wantShape(j.Semantics, j.Src.Shape, mesh.Vec2); err != nil {
			return err
		}
		if err := wantShape(j.Semantics, j.Dst.Shape, mesh.Vec2); err != nil {
			return err
		}
		if err := wantFloatDst(j.Semantics, j.Dst); err != nil {
			return err
		}
		if err := normalizedSource(j.Semantics, j.Src.ComponentType); err != nil {
			return err
		}

	case mesh.SkinWeight:
		if j.Src.ComponentType != mesh.Float32 || j.Src.Shape != mesh.Vec4 {
			return fmt.Errorf("skin-weight job requires float32 VEC4 source, got %s %s", j.Src.ComponentType, j.Src.Shape)
		}
		if j.Dst.ComponentType != mesh.Float32 || j.Dst.Shape != mesh.Vec4 {
			return fmt.Errorf("skin-weight job requires float32 VEC4 destination, got %s %s", j.Dst.ComponentType, j.Dst.Shape)
		}

	case mesh.SkinIndex:
		if err := wantShape(j.Semantics, j.Src.Shape, mesh.Vec4); err != nil {
			return err
		}
		if err := wantShape(j.Semantics, j.Dst.Shape, mesh.Vec4); err != nil {
			return err
		}
		switch j.Src.ComponentType {
		case mesh.UInt8, mesh.UInt16, mesh.UInt32:
		default:
			return fmt.Errorf("skin-index job requires an unsigned source, got %s", j.Src.ComponentType)
		}
		if j.Dst.ComponentType != mesh.UInt16 {
			return fmt.Errorf("skin-index job requires a uint16 destination, got %s", j.Dst.ComponentType)
		}

	case mesh.Matrix:
		if j.Src.ComponentType != mesh.Float32 || j.Src.Shape != mesh.Mat4 {
			return fmt.Errorf("matrix job requires float32 MAT4 source, got %s %s", j.Src.ComponentType, j.Src.Shape)
		}
		if j.Dst.ComponentType != mesh.Float32 || j.Dst.Shape != mesh.Mat4 {
			return fmt.Errorf("matrix job requires float32 MAT4 destination, got %s %s", j.Dst.ComponentType, j.Dst.Shape)
		}

	case mesh.GenericOpaque:
		if j.Src.TightSize() != j.Dst.TightSize() {
			return fmt.Errorf("opaque job element size mismatch: %d vs %d", j.Src.TightSize(), j.Dst.TightSize())
		}

	case mesh.IndexTriangle:
		if err := j.validateIndex(3, j.Src.Count); err != nil {
			return err
		}

	case mesh.IndexQuad:
		if err := j.validateIndex(4, j.Src.Count/4*6); err != nil {
			return err
		}

	default:
		return fmt.Errorf("unknown semantics %s", j.Semantics)
	}

	if !j.Semantics.Index() && j.Dst.Count < j.Src.Count {
		return fmt.Errorf("destination holds %d elements but job needs %d", j.Dst.Count, j.Src.Count)
	}

	return nil
}

func (j *Job) validateIndex(primSize, wantDst int) error {
	if err := wantShape(j.Semantics, j.Src.Shape, mesh.Scalar); err != nil {
		return err
	}
	if err := wantShape(j.Semantics, j.Dst.Shape, mesh.Scalar); err != nil {
		return err
	}
	if j.Src.Count%primSize != 0 {
		return fmt.Errorf("%s job index count %d is not a multiple of %d", j.Semantics, j.Src.Count, primSize)
	}
	switch j.Src.ComponentType {
	case mesh.UInt8, mesh.UInt16, mesh.UInt32:
	default:
		return fmt.Errorf("%s job requires an unsigned index source, got %s", j.Semantics, j.Src.ComponentType)
	}
	switch j.Dst.ComponentType {
	case mesh.UInt16, mesh.UInt32:
	default:
		return fmt.Errorf("%s job requires a uint16 or uint32 index destination, got %s", j.Semantics, j.Dst.ComponentType)
	}
	// Widening and same-width pass-through only; narrowing an index buffer
	// silently corrupts topology.
	if j.Dst.ComponentType.Size() < j.Src.ComponentType.Size() {
		return fmt.Errorf("%s job narrows indices from %s to %s", j.Semantics, j.Src.ComponentType, j.Dst.ComponentType)
	}
	if j.Dst.Count < wantDst {
		return fmt.Errorf("destination holds %d indices but job emits %d", j.Dst.Count, wantDst)
	}
	return nil
}

func normalizedSource(sem mesh.ElementSemantics, ct mesh.ComponentType) error {
	switch ct {
	case mesh.Int8, mesh.UInt8, mesh.Int16, mesh.UInt16, mesh.Float16, mesh.Float32:
		return nil
	}
	return fmt.Errorf("%s job does not support %s sources", sem, ct)
}
