package ops

import (
	"github.com/born-ml/spatial/internal/spatial"
	"github.com/born-ml/spatial/internal/tensor"
)

// PushOp represents a recorded scatter: output = Push(values, grid, target).
//
// Backward pass:
//   - grad_values = Pull(outputGrad, grid): Push and Pull are adjoints, so
//     the roles swap on the way back.
//   - grad_grid = Grad(outputGrad, grid) contracted with values over
//     channels: the scattered mass lands where the grid points, so moving a
//     point picks up the spatial derivative of the incoming gradient field.
type PushOp struct {
	values *tensor.RawTensor
	grid   *tensor.RawTensor
	output *tensor.RawTensor
	opt    spatial.Options
}

// NewPushOp creates a new PushOp.
func NewPushOp(values, grid, output *tensor.RawTensor, opt spatial.Options) *PushOp {
	return &PushOp{values: values, grid: grid, output: output, opt: opt}
}

func (op *PushOp) Backward(outputGrad *tensor.RawTensor, backend spatial.Backend) ([]*tensor.RawTensor, error) {
	gradValues, err := backend.Pull(outputGrad, op.grid, op.opt)
	if err != nil {
		return nil, err
	}

	field, err := backend.Grad(outputGrad, op.grid, op.opt)
	if err != nil {
		return nil, err
	}
	gradGrid, err := contractChannels(op.values, field, op.grid.Shape())
	if err != nil {
		return nil, err
	}

	return []*tensor.RawTensor{gradValues, gradGrid}, nil
}

// Inputs returns the input tensors [values, grid].
func (op *PushOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.values, op.grid}
}

// Output returns the scattered output.
func (op *PushOp) Output() *tensor.RawTensor {
	return op.output
}
