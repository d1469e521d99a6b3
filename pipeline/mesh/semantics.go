package mesh

import "fmt"

// ElementSemantics tags what a buffer's elements mean, which selects the
// coordinate-system transform applied during transcoding.
type ElementSemantics uint8

const (
	Position ElementSemantics = iota
	Normal
	Tangent
	TexCoord
	SkinWeight
	SkinIndex
	GenericOpaque
	IndexTriangle
	IndexQuad
	Matrix
)

func (s ElementSemantics) String() string {
	switch s {
	case Position:
		return "position"
	case Normal:
		return "normal"
	case Tangent:
		return "tangent"
	case TexCoord:
		return "texcoord"
	case SkinWeight:
		return "skin-weight"
	case SkinIndex:
		return "skin-index"
	case GenericOpaque:
		return "opaque"
	case IndexTriangle:
		return "index-triangle"
	case IndexQuad:
		return "index-quad"
	case Matrix:
		return "matrix"
	}
	return fmt.Sprintf("semantics(%d)", uint8(s))
}

// ParseElementSemantics maps a manifest semantics name to its tag.
func ParseElementSemantics(name string) (ElementSemantics, error) {
	switch name {
	case "position":
		return Position, nil
	case "normal":
		return Normal, nil
	case "tangent":
		return Tangent, nil
	case "texcoord":
		return TexCoord, nil
	case "skin-weight":
		return SkinWeight, nil
	case "skin-index":
		return SkinIndex, nil
	case "opaque":
		return GenericOpaque, nil
	case "index-triangle":
		return IndexTriangle, nil
	case "index-quad":
		return IndexQuad, nil
	case "matrix":
		return Matrix, nil
	}
	return 0, fmt.Errorf("unknown element semantics %q", name)
}

// Index reports whether the semantics describe an index buffer rather than a
// vertex attribute.
func (s ElementSemantics) Index() bool {
	return s == IndexTriangle || s == IndexQuad
}
