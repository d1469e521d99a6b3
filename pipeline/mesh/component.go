package mesh

import "fmt"

// ComponentType identifies the packed numeric encoding of one component of an
// element. The values are the wire format's accessor component codes and must
// stay bit-exact with them.
type ComponentType uint16

const (
	Int8    ComponentType = 5120
	UInt8   ComponentType = 5121
	Int16   ComponentType = 5122
	UInt16  ComponentType = 5123
	Int32   ComponentType = 5124
	UInt32  ComponentType = 5125
	Float32 ComponentType = 5126
	Float16 ComponentType = 5131
)

// Size returns the byte size of one component, or 0 for unknown codes.
func (ct ComponentType) Size() int {
	switch ct {
	case Int8, UInt8:
		return 1
	case Int16, UInt16, Float16:
		return 2
	case Int32, UInt32, Float32:
		return 4
	}
	return 0
}

func (ct ComponentType) Signed() bool {
	switch ct {
	case Int8, Int16, Int32:
		return true
	}
	return false
}

func (ct ComponentType) Float() bool {
	return ct == Float16 || ct == Float32
}

// NormalizedMax returns the divisor used to decode a normalized integer
// component to float, i.e. the maximum positive value of the type. Returns 0
// for float types, which are never normalized.
func (ct ComponentType) NormalizedMax() float32 {
	switch ct {
	case Int8:
		return 127
	case UInt8:
		return 255
	case Int16:
		return 32767
	case UInt16:
		return 65535
	case Int32:
		return 2147483647
	case UInt32:
		return 4294967295
	}
	return 0
}

func (ct ComponentType) String() string {
	switch ct {
	case Int8:
		return "int8"
	case UInt8:
		return "uint8"
	case Int16:
		return "int16"
	case UInt16:
		return "uint16"
	case Int32:
		return "int32"
	case UInt32:
		return "uint32"
	case Float32:
		return "float32"
	case Float16:
		return "float16"
	}
	return fmt.Sprintf("component(%d)", uint16(ct))
}

// ParseComponentType validates a wire accessor code.
func ParseComponentType(code uint16) (ComponentType, error) {
	ct := ComponentType(code)
	if ct.Size() == 0 {
		return 0, fmt.Errorf("unknown component type code %d", code)
	}
	return ct, nil
}

// AttributeShape is the per-element arrangement of components.
type AttributeShape uint8

const (
	Scalar AttributeShape = iota
	Vec2
	Vec3
	Vec4
	Mat2
	Mat3
	Mat4
)

// ComponentCount returns the number of components one element of this shape
// carries.
func (s AttributeShape) ComponentCount() int {
	switch s {
	case Scalar:
		return 1
	case Vec2:
		return 2
	case Vec3:
		return 3
	case Vec4:
		return 4
	case Mat2:
		return 4
	case Mat3:
		return 9
	case Mat4:
		return 16
	}
	return 0
}

func (s AttributeShape) String() string {
	switch s {
	case Scalar:
		return "SCALAR"
	case Vec2:
		return "VEC2"
	case Vec3:
		return "VEC3"
	case Vec4:
		return "VEC4"
	case Mat2:
		return "MAT2"
	case Mat3:
		return "MAT3"
	case Mat4:
		return "MAT4"
	}
	return fmt.Sprintf("shape(%d)", uint8(s))
}

// ParseAttributeShape maps the wire format's shape name to an AttributeShape.
func ParseAttributeShape(name string) (AttributeShape, error) {
	switch name {
	case "SCALAR":
		return Scalar, nil
	case "VEC2":
		return Vec2, nil
	case "VEC3":
		return Vec3, nil
	case "VEC4":
		return Vec4, nil
	case "MAT2":
		return Mat2, nil
	case "MAT3":
		return Mat3, nil
	case "MAT4":
		return Mat4, nil
	}
	return 0, fmt.Errorf("unknown attribute shape %q", name)
}

// TightSize is the minimum byte size of one element implied by its component
// type and attribute shape, with no interleaving padding.
func TightSize(ct ComponentType, shape AttributeShape) int {
	return ct.Size() * shape.ComponentCount()
}
