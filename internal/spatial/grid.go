package spatial

import (
	"fmt"

	"github.com/born-ml/spatial/internal/tensor"
)

// Identity builds the identity sampling grid for a spatial extent: a
// [S1..SD, D] buffer where position (i1..iD) holds the coordinate vector
// (i1..iD). Pulling a source through its identity grid reproduces the source;
// adding a displacement field to it yields a deformation grid.
func Identity(spatialShape tensor.Shape, dtype tensor.DataType, device tensor.Device) (*tensor.RawTensor, error) {
	dim := len(spatialShape)
	if dim < 1 || dim > 3 {
		return nil, fmt.Errorf("%w: identity grid with %d spatial axes, supported range is 1..3",
			ErrConfiguration, dim)
	}
	if err := spatialShape.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	gridShape := append(spatialShape.Clone(), dim)
	grid, err := tensor.NewRaw(gridShape, dtype, device)
	if err != nil {
		return nil, err
	}

	switch dtype {
	case tensor.Float32:
		fillIdentity(grid.AsFloat32(), spatialShape)
	case tensor.Float64:
		fillIdentity(grid.AsFloat64(), spatialShape)
	default:
		return nil, fmt.Errorf("%w: identity grid dtype %s, want float32 or float64",
			ErrConfiguration, dtype)
	}
	return grid, nil
}

func fillIdentity[T tensor.DType](data []T, spatialShape tensor.Shape) {
	dim := len(spatialShape)
	idx := make([]int, dim)
	pos := 0
	for {
		for d := 0; d < dim; d++ {
			data[pos] = T(idx[d])
			pos++
		}
		// Row-major odometer over the spatial extent.
		d := dim - 1
		for ; d >= 0; d-- {
			idx[d]++
			if idx[d] < spatialShape[d] {
				break
			}
			idx[d] = 0
		}
		if d < 0 {
			return
		}
	}
}
