package tensor

import (
	"fmt"
	"unsafe"
)

// Device represents the compute device a buffer is bound to.
type Device int

// Supported compute devices.
const (
	CPU Device = iota
	WebGPU
)

// String returns a human-readable device name.
func (d Device) String() string {
	switch d {
	case CPU:
		return "CPU"
	case WebGPU:
		return "WebGPU"
	default:
		return "Unknown"
	}
}

// RawTensor is the low-level buffer representation the kernels operate on.
// It never assumes a memory layout beyond the strides it carries: a kernel
// addresses element (i0, i1, ...) at offset Σ i_k * stride_k.
//
// All buffers are transient from the kernels' point of view: constructed per
// call from caller-supplied memory and never retained across calls.
type RawTensor struct {
	data   []byte
	shape  Shape
	stride []int // Strides in elements, not bytes.
	dtype  DataType
	device Device
}

// NewRaw creates a new contiguous RawTensor with the given shape and type.
// Memory is allocated and zero-initialized.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}

	byteSize := shape.NumElements() * dtype.Size()

	return &RawTensor{
		data:   make([]byte, byteSize),
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  dtype,
		device: device,
	}, nil
}

// Wrap adopts caller-supplied memory with explicit strides (in elements).
// The data is not copied; the caller keeps ownership of the backing array.
func Wrap(data []byte, shape Shape, stride []int, dtype DataType, device Device) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if len(stride) != len(shape) {
		return nil, fmt.Errorf("stride rank %d does not match shape rank %d", len(stride), len(shape))
	}
	return &RawTensor{
		data:   data,
		shape:  shape.Clone(),
		stride: append([]int(nil), stride...),
		dtype:  dtype,
		device: device,
	}, nil
}

// FromSlice creates a contiguous RawTensor from a Go slice.
// The slice is copied into the buffer's memory.
func FromSlice[T DType](data []T, shape Shape, device Device) (*RawTensor, error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}

	var dummy T
	raw, err := NewRaw(shape, inferDataType(dummy), device)
	if err != nil {
		return nil, err
	}
	copy(AsSlice[T](raw), data)
	return raw, nil
}

// Shape returns the buffer's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// Strides returns the buffer's per-axis strides, in elements.
func (r *RawTensor) Strides() []int {
	return r.stride
}

// DType returns the buffer's element type.
func (r *RawTensor) DType() DataType {
	return r.dtype
}

// Device returns the buffer's compute device.
func (r *RawTensor) Device() Device {
	return r.device
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// ByteSize returns the total memory size in bytes.
func (r *RawTensor) ByteSize() int {
	return r.NumElements() * r.dtype.Size()
}

// IsContiguous reports whether the buffer is laid out in dense row-major
// order. The WebGPU backend only accepts contiguous buffers.
func (r *RawTensor) IsContiguous() bool {
	want := r.shape.ComputeStrides()
	for i := range want {
		if r.stride[i] != want[i] {
			return false
		}
	}
	return true
}

// Data returns the raw byte slice.
// WARNING: Direct access to underlying memory. Use with caution.
func (r *RawTensor) Data() []byte {
	return r.data
}

// AsFloat32 interprets the data as []float32.
// The slice spans the whole backing array so strided views stay addressable.
// Panics if the buffer's dtype is not Float32.
func (r *RawTensor) AsFloat32() []float32 {
	if r.dtype != Float32 {
		panic(fmt.Sprintf("buffer dtype is %s, not float32", r.dtype))
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by len(data)
	return unsafe.Slice((*float32)(unsafe.Pointer(&r.data[0])), len(r.data)/4)
}

// AsFloat64 interprets the data as []float64.
// The slice spans the whole backing array so strided views stay addressable.
// Panics if the buffer's dtype is not Float64.
func (r *RawTensor) AsFloat64() []float64 {
	if r.dtype != Float64 {
		panic(fmt.Sprintf("buffer dtype is %s, not float64", r.dtype))
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by len(data)
	return unsafe.Slice((*float64)(unsafe.Pointer(&r.data[0])), len(r.data)/8)
}

// AsSlice interprets the data as []T for a generic kernel body.
func AsSlice[T DType](r *RawTensor) []T {
	var dummy T
	switch any(dummy).(type) {
	case float32:
		return any(r.AsFloat32()).([]T)
	case float64:
		return any(r.AsFloat64()).([]T)
	default:
		panic("unsupported type")
	}
}

// Clone creates a deep copy of the buffer.
func (r *RawTensor) Clone() *RawTensor {
	data := make([]byte, len(r.data))
	copy(data, r.data)
	return &RawTensor{
		data:   data,
		shape:  r.shape.Clone(),
		stride: append([]int(nil), r.stride...),
		dtype:  r.dtype,
		device: r.device,
	}
}

// String returns a human-readable representation of the buffer.
func (r *RawTensor) String() string {
	return fmt.Sprintf("RawTensor[%s]%v on %s", r.dtype, r.shape, r.device)
}
