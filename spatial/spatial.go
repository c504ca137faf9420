// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package spatial is the public API of the resampling engine: pull, push,
// count and gradient sampling of dense fields through arbitrary coordinate
// grids, with per-axis interpolation orders and boundary conditions.
//
// Source buffers are channel-first [C, S1..SD] with 1 to 3 spatial axes.
// Coordinate grids are [O1..OE, D]: one coordinate vector per output
// position, in voxel units.
//
// Example:
//
//	import (
//	    "github.com/born-ml/spatial/backend/cpu"
//	    "github.com/born-ml/spatial/spatial"
//	    "github.com/born-ml/spatial/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    opt := spatial.Options{
//	        Order: []spatial.Order{spatial.Cubic},
//	        Bound: []spatial.BoundMode{spatial.BoundDCT2},
//	    }
//	    warped, err := backend.Pull(src, grid, opt)
//	}
package spatial

import (
	"github.com/born-ml/spatial/internal/bound"
	internalspatial "github.com/born-ml/spatial/internal/spatial"
	"github.com/born-ml/spatial/internal/spline"
	"github.com/born-ml/spatial/tensor"
)

// Options configures one kernel invocation. Order and Bound are per spatial
// axis; a single entry broadcasts to every axis.
type Options = internalspatial.Options

// DefaultOptions returns linear interpolation with zero boundaries and no
// extrapolation.
func DefaultOptions() Options {
	return internalspatial.DefaultOptions()
}

// Backend is the execution engine driving the four kernels. The CPU and
// WebGPU implementations are numerically equivalent within floating-point
// tolerance; selection is always a caller decision.
type Backend = internalspatial.Backend

// Order is the interpolation order for one spatial axis: 0 is nearest,
// 1 is linear, 2..7 are B-splines of that degree.
type Order = spline.Order

// Interpolation orders.
const (
	Nearest   Order = spline.Nearest
	Linear    Order = spline.Linear
	Quadratic Order = spline.Quadratic
	Cubic     Order = spline.Cubic

	// MaxOrder is the highest supported B-spline degree.
	MaxOrder Order = spline.MaxOrder
)

// BoundMode decides how out-of-range sample coordinates fold back into the
// source extent.
type BoundMode = bound.Mode

// Boundary modes.
const (
	// BoundZero treats everything outside the source as zero.
	BoundZero BoundMode = bound.Zero
	// BoundReplicate clamps to the edge voxel.
	BoundReplicate BoundMode = bound.Replicate
	// BoundDCT1 mirrors about the edge voxel centers (whole-sample symmetry).
	BoundDCT1 BoundMode = bound.DCT1
	// BoundDCT2 mirrors about the half-voxel edges (half-sample symmetry).
	BoundDCT2 BoundMode = bound.DCT2
	// BoundDST1 antimirrors with zero crossings just outside the extent.
	BoundDST1 BoundMode = bound.DST1
	// BoundDST2 antimirrors about the half-voxel edges.
	BoundDST2 BoundMode = bound.DST2
	// BoundDFT wraps circularly.
	BoundDFT BoundMode = bound.DFT
	// BoundNoCheck skips folding entirely. The caller guarantees that every
	// neighbor index is in range; out-of-range access is undefined.
	BoundNoCheck BoundMode = bound.NoCheck
)

// Error sentinels. Every kernel error wraps exactly one of these.
var (
	// ErrConfiguration marks invalid shapes, options or dtype combinations.
	ErrConfiguration = internalspatial.ErrConfiguration
	// ErrDeviceMismatch marks buffers bound to the wrong device for the
	// chosen backend.
	ErrDeviceMismatch = internalspatial.ErrDeviceMismatch
	// ErrNumericEdgeCase marks option combinations that are undefined for
	// the given extent, such as DCT1 on a single-voxel axis.
	ErrNumericEdgeCase = internalspatial.ErrNumericEdgeCase
)

// Identity builds the identity sampling grid [S1..SD, D] for a spatial
// extent: pulling through it reproduces the source, and adding a
// displacement field to it yields a deformation grid.
func Identity(spatialShape tensor.Shape, dtype tensor.DataType, device tensor.Device) (*tensor.RawTensor, error) {
	return internalspatial.Identity(spatialShape, dtype, device)
}
