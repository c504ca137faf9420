// Package tensor provides the raw buffer carrier shared by all spatial kernels.
//
// The enclosing framework owns the real tensor abstraction (allocation
// strategy, views, autograd bookkeeping). This package only describes what a
// kernel needs to address caller-supplied memory: a flat byte buffer plus
// shape, per-axis strides, element type and device.
package tensor

// DType is a constraint for supported element types.
// Spatial kernels operate on floating-point data only.
type DType interface {
	~float32 | ~float64
}

// DataType represents runtime element-type information for buffers.
type DataType int

// Supported element types.
const (
	Float32 DataType = iota
	Float64
)

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float32:
		return 4
	case Float64:
		return 8
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return "unknown"
	}
}

// inferDataType infers DataType from a generic type T.
func inferDataType[T DType](dummy T) DataType {
	switch any(dummy).(type) {
	case float32:
		return Float32
	case float64:
		return Float64
	default:
		panic("unsupported type")
	}
}
