// Package ops defines the differentiable resampling operations recorded on
// the gradient tape.
//
// Each operation keeps the buffers of its forward pass and derives input
// gradients from the kernel adjoints:
//   - PullOp: gradient w.r.t. source is Push, w.r.t. coordinates is Grad
//     contracted with the output gradient over channels.
//   - PushOp: gradient w.r.t. the pushed values is Pull, w.r.t. coordinates
//     is again a Grad contraction.
//   - CountOp: no data input; the coordinate gradient is a second-derivative
//     case and is not propagated.
package ops

import (
	"github.com/born-ml/spatial/internal/spatial"
	"github.com/born-ml/spatial/internal/tensor"
)

// Operation is one differentiable step in the recorded computation.
// Backward returns one gradient per input, aligned with Inputs(); a nil
// entry means no gradient flows to that input.
type Operation interface {
	Backward(outputGrad *tensor.RawTensor, backend spatial.Backend) ([]*tensor.RawTensor, error)

	// Inputs returns the input tensors for this operation.
	Inputs() []*tensor.RawTensor

	// Output returns the output tensor produced by this operation.
	Output() *tensor.RawTensor
}
