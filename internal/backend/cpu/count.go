package cpu

import (
	"github.com/born-ml/spatial/internal/parallel"
	"github.com/born-ml/spatial/internal/sampler"
	"github.com/born-ml/spatial/internal/spatial"
	"github.com/born-ml/spatial/internal/tensor"
)

// Count accumulates the interpolation weights of every grid position into a
// fresh [S1..SD] density map: Push applied to an all-ones output, without
// materializing the ones.
func (c *CPUBackend) Count(grid *tensor.RawTensor, srcSpatial tensor.Shape, opt spatial.Options) (*tensor.RawTensor, error) {
	if err := c.checkDevice(grid); err != nil {
		return nil, err
	}
	plan, err := spatial.PlanCount(grid, srcSpatial, opt)
	if err != nil {
		return nil, err
	}

	out, err := tensor.NewRaw(tensor.Shape(plan.SrcSpatial).Clone(), grid.DType(), tensor.CPU)
	if err != nil {
		return nil, err
	}

	switch grid.DType() {
	case tensor.Float32:
		countKernel[float32](out, grid, plan, c.par)
	case tensor.Float64:
		countKernel[float64](out, grid, plan, c.par)
	}
	return out, nil
}

func countKernel[T tensor.DType](out, grid *tensor.RawTensor, plan *spatial.Plan, par parallel.Config) {
	gridData := tensor.AsSlice[T](grid)
	outData := tensor.AsSlice[T](out)

	axes := plan.Axes(out.Strides())
	gstrides := grid.Strides()
	gpos, gvec := gstrides[:len(gstrides)-1], gstrides[len(gstrides)-1]
	dim := plan.Dim

	scatter := func(acc []T, r parallel.Range) {
		var point [sampler.MaxDim]float64
		for v := r.Start; v < r.End; v++ {
			gbase := positionOffset(v, plan.OutDims, gpos)
			for d := 0; d < dim; d++ {
				point[d] = float64(gridData[gbase+d*gvec])
			}
			pt := point[:dim]
			if !plan.Extrapolate && !sampler.InBounds(axes, pt) {
				continue
			}
			sampler.Visit(axes, pt, func(offset int, weight float64) {
				acc[offset] += T(weight)
			})
		}
	}

	reduceScatter(outData, plan.NumVox, par, scatter)
}
