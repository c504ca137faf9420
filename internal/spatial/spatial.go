// Package spatial defines the contract shared by all resampling backends:
// per-call options, the Backend interface implemented by the CPU and WebGPU
// engines, eager validation and the error taxonomy.
//
// Conventions:
//   - Source buffers are channel-first: [C, S1..SD], D in {1, 2, 3}.
//   - Coordinate (grid) buffers are [O1..OE, D]: one D-vector of voxel
//     coordinates per output position, in array-index units.
//   - Pull produces [C, O1..OE], Push produces [C, S1..SD], Count produces
//     [S1..SD], Grad produces [C, O1..OE, D].
package spatial

import (
	"github.com/born-ml/spatial/internal/bound"
	"github.com/born-ml/spatial/internal/spline"
	"github.com/born-ml/spatial/internal/tensor"
)

// Options configures one kernel invocation. Order and Bound are per spatial
// axis; a single entry broadcasts to every axis. Both are immutable for the
// duration of the call.
type Options struct {
	// Order is the interpolation order per spatial axis (0..7).
	Order []spline.Order
	// Bound is the boundary condition per spatial axis.
	Bound []bound.Mode
	// Extrapolate controls whether coordinates outside the source domain
	// produce a boundary-folded value. When false, out-of-domain positions
	// yield zero (Pull/Grad) or contribute nothing (Push/Count).
	Extrapolate bool
}

// DefaultOptions returns linear interpolation with zero boundaries and no
// extrapolation, the conventional resampling default.
func DefaultOptions() Options {
	return Options{
		Order:       []spline.Order{1},
		Bound:       []bound.Mode{bound.Zero},
		Extrapolate: false,
	}
}

// Backend is the execution engine driving the four kernels over the full
// output range. Implementations must be numerically equivalent within
// floating-point tolerance; selection is a caller decision, never automatic.
//
// Every method validates eagerly and returns before any output mutation on
// error. Kernels run to completion once launched.
type Backend interface {
	// Pull samples source at every grid position:
	// out[c, o] = Σ_neighbors weight * source[c, offset].
	Pull(src, grid *tensor.RawTensor, opt Options) (*tensor.RawTensor, error)

	// Push is the exact adjoint of Pull: scatter-accumulates outGrad into a
	// source-shaped buffer with the same neighbor weights. srcSpatial gives
	// the spatial extent [S1..SD] of the target; the channel count comes
	// from outGrad.
	Push(outGrad, grid *tensor.RawTensor, srcSpatial tensor.Shape, opt Options) (*tensor.RawTensor, error)

	// Count accumulates the interpolation weights alone: the local sampling
	// density, equivalent to Push of an all-ones output.
	Count(grid *tensor.RawTensor, srcSpatial tensor.Shape, opt Options) (*tensor.RawTensor, error)

	// Grad returns the partial derivatives of Pull's output with respect to
	// each sampling coordinate: [C, O1..OE, D].
	Grad(src, grid *tensor.RawTensor, opt Options) (*tensor.RawTensor, error)

	// Name returns the backend name.
	Name() string
	// Device returns the compute device the backend executes on.
	Device() tensor.Device
}
