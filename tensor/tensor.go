// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the buffer types shared by every spatial kernel.
//
// The package re-exports the internal tensor layer:
//   - RawTensor: a flat byte buffer with shape, strides, dtype and device
//   - Shape, DataType, Device: core type definitions
//   - FromSlice, NewRaw, Wrap: buffer constructors
//
// Example:
//
//	src, err := tensor.FromSlice(values, tensor.Shape{1, 64, 64}, tensor.CPU)
package tensor

import (
	"github.com/born-ml/spatial/internal/tensor"
)

// DType is a constraint for buffer element types.
// Supported types: float32, float64.
type DType = tensor.DType

// DataType represents the underlying element type of a buffer.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
)

// Device represents the device a buffer is bound to.
type Device = tensor.Device

// Device constants.
const (
	CPU    Device = tensor.CPU
	WebGPU Device = tensor.WebGPU
)

// Shape represents the dimensions of a buffer.
// Example: Shape{2, 64, 64} is a two-channel 64×64 field.
type Shape = tensor.Shape

// RawTensor is the flat buffer every kernel reads and writes: contiguous or
// strided element data plus shape, dtype and device.
type RawTensor = tensor.RawTensor

// NewRaw creates a zero-filled contiguous buffer.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, device)
}

// Wrap adopts caller-owned memory with explicit element strides, without
// copying. The buffer must outlive the returned tensor.
func Wrap(data []byte, shape Shape, stride []int, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.Wrap(data, shape, stride, dtype, device)
}

// FromSlice creates a contiguous buffer initialized from a Go slice.
//
// Example:
//
//	grid, err := tensor.FromSlice([]float32{0.5, 2.5}, tensor.Shape{2, 1}, tensor.CPU)
func FromSlice[T DType](data []T, shape Shape, device Device) (*RawTensor, error) {
	return tensor.FromSlice(data, shape, device)
}

// AsSlice views a buffer's backing memory as a typed slice without copying.
// The element type must match the buffer's dtype.
func AsSlice[T DType](r *RawTensor) []T {
	return tensor.AsSlice[T](r)
}
