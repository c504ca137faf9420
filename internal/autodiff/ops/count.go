package ops

import (
	"github.com/born-ml/spatial/internal/spatial"
	"github.com/born-ml/spatial/internal/tensor"
)

// CountOp represents a recorded density scatter: output = Count(grid, target).
//
// Count has no data input, and its gradient with respect to the grid is a
// second-derivative quantity the kernels do not expose. No gradient is
// propagated.
type CountOp struct {
	grid   *tensor.RawTensor
	output *tensor.RawTensor
	opt    spatial.Options
}

// NewCountOp creates a new CountOp.
func NewCountOp(grid, output *tensor.RawTensor, opt spatial.Options) *CountOp {
	return &CountOp{grid: grid, output: output, opt: opt}
}

func (op *CountOp) Backward(outputGrad *tensor.RawTensor, backend spatial.Backend) ([]*tensor.RawTensor, error) {
	return []*tensor.RawTensor{nil}, nil
}

// Inputs returns the input tensors [grid].
func (op *CountOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.grid}
}

// Output returns the density map.
func (op *CountOp) Output() *tensor.RawTensor {
	return op.output
}
