// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the multi-core CPU backend for the spatial kernels.
package cpu

import (
	internalcpu "github.com/born-ml/spatial/internal/backend/cpu"
	"github.com/born-ml/spatial/spatial"
)

// Backend represents the CPU backend implementation.
//
// Pull and Grad parallelize over disjoint output positions; Push and Count
// scatter through worker-private buffers followed by a parallel reduction,
// so results are deterministic for a fixed worker count.
type Backend = internalcpu.CPUBackend

// Compile-time check that Backend implements spatial.Backend.
var _ spatial.Backend = (*Backend)(nil)

// New creates a new CPU backend using every available core.
//
// Example:
//
//	import (
//	    "github.com/born-ml/spatial/backend/cpu"
//	    "github.com/born-ml/spatial/spatial"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    out, err := backend.Pull(src, grid, spatial.DefaultOptions())
//	}
func New() *Backend {
	return internalcpu.New()
}

// NewSequential creates a CPU backend that runs on the calling goroutine
// only. Useful for debugging and for bit-exact reference runs.
func NewSequential() *Backend {
	return internalcpu.NewSequential()
}
