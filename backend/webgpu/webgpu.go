// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package webgpu provides the GPU backend for the spatial kernels.
//
// WebGPU is a cross-platform compute API that works on Windows (D3D12),
// macOS (Metal) and Linux (Vulkan). The backend runs one shader invocation
// per output position; scatter kernels accumulate through emulated float
// atomics. Only float32 contiguous buffers are supported on the device.
//
// Example:
//
//	import (
//	    "github.com/born-ml/spatial/backend/webgpu"
//	    "github.com/born-ml/spatial/spatial"
//	)
//
//	func main() {
//	    gpu, err := webgpu.New()
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer gpu.Release()
//
//	    out, err := gpu.Pull(src, grid, spatial.DefaultOptions())
//	}
package webgpu

import (
	internalwebgpu "github.com/born-ml/spatial/internal/backend/webgpu"
	"github.com/born-ml/spatial/spatial"
)

// Backend represents the WebGPU backend implementation.
type Backend = internalwebgpu.Backend

// Compile-time check that Backend implements spatial.Backend.
var _ spatial.Backend = (*Backend)(nil)

// New creates a new WebGPU backend.
//
// This initializes the WebGPU instance, adapter, device and queue. Call
// Release() when done to free GPU resources. Returns an error when no
// compatible adapter is present.
func New() (*Backend, error) {
	return internalwebgpu.New()
}

// IsAvailable checks if WebGPU is available on this system without keeping
// any resources around.
func IsAvailable() bool {
	return internalwebgpu.IsAvailable()
}
