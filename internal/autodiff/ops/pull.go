package ops

import (
	"github.com/born-ml/spatial/internal/spatial"
	"github.com/born-ml/spatial/internal/tensor"
)

// PullOp represents a recorded gather: output = Pull(src, grid).
//
// Backward pass:
//   - grad_src = Push(outputGrad, grid, shape(src)): the exact adjoint.
//   - grad_grid = Grad(src, grid) contracted with outputGrad over channels:
//     moving a sample point changes the output by the spatial derivative of
//     the interpolant at that point.
type PullOp struct {
	src    *tensor.RawTensor
	grid   *tensor.RawTensor
	output *tensor.RawTensor
	opt    spatial.Options
}

// NewPullOp creates a new PullOp.
func NewPullOp(src, grid, output *tensor.RawTensor, opt spatial.Options) *PullOp {
	return &PullOp{src: src, grid: grid, output: output, opt: opt}
}

func (op *PullOp) Backward(outputGrad *tensor.RawTensor, backend spatial.Backend) ([]*tensor.RawTensor, error) {
	srcSpatial := op.src.Shape()[1:]

	gradSrc, err := backend.Push(outputGrad, op.grid, srcSpatial, op.opt)
	if err != nil {
		return nil, err
	}

	field, err := backend.Grad(op.src, op.grid, op.opt)
	if err != nil {
		return nil, err
	}
	gradGrid, err := contractChannels(outputGrad, field, op.grid.Shape())
	if err != nil {
		return nil, err
	}

	return []*tensor.RawTensor{gradSrc, gradGrid}, nil
}

// Inputs returns the input tensors [src, grid].
func (op *PullOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.src, op.grid}
}

// Output returns the gathered output.
func (op *PullOp) Output() *tensor.RawTensor {
	return op.output
}
