package cpu

import (
	"github.com/born-ml/spatial/internal/parallel"
	"github.com/born-ml/spatial/internal/sampler"
	"github.com/born-ml/spatial/internal/spatial"
	"github.com/born-ml/spatial/internal/tensor"
)

// Grad returns the partial derivatives of Pull's output with respect to the
// sampling coordinates: [C, O1..OE, D]. Along each axis the compositor
// substitutes the derivative of the spline weight; the other axes keep their
// plain weights. This backs the gradient through the coordinates themselves,
// as opposed to Push, which backs the gradient through the source values.
func (c *CPUBackend) Grad(src, grid *tensor.RawTensor, opt spatial.Options) (*tensor.RawTensor, error) {
	if err := c.checkDevice(src, grid); err != nil {
		return nil, err
	}
	plan, err := spatial.PlanPull(src, grid, opt)
	if err != nil {
		return nil, err
	}

	outShape := append(tensor.Shape{plan.Channels}, plan.OutDims...)
	outShape = append(outShape, plan.Dim)
	out, err := tensor.NewRaw(outShape, src.DType(), tensor.CPU)
	if err != nil {
		return nil, err
	}

	switch src.DType() {
	case tensor.Float32:
		gradKernel[float32](out, src, grid, plan, c.par)
	case tensor.Float64:
		gradKernel[float64](out, src, grid, plan, c.par)
	}
	return out, nil
}

func gradKernel[T tensor.DType](out, src, grid *tensor.RawTensor, plan *spatial.Plan, par parallel.Config) {
	srcData := tensor.AsSlice[T](src)
	gridData := tensor.AsSlice[T](grid)
	outData := tensor.AsSlice[T](out)

	axes := plan.Axes(src.Strides()[1:])
	cstride := src.Strides()[0]
	gstrides := grid.Strides()
	gpos, gvec := gstrides[:len(gstrides)-1], gstrides[len(gstrides)-1]
	channels, nvox, dim := plan.Channels, plan.NumVox, plan.Dim

	parallel.For(nvox, func(v int) {
		var point [sampler.MaxDim]float64
		gbase := positionOffset(v, plan.OutDims, gpos)
		for d := 0; d < dim; d++ {
			point[d] = float64(gridData[gbase+d*gvec])
		}
		pt := point[:dim]
		if !plan.Extrapolate && !sampler.InBounds(axes, pt) {
			return
		}
		sampler.VisitGrad(axes, pt, func(offset int, dw []float64) {
			for ch := 0; ch < channels; ch++ {
				s := float64(srcData[ch*cstride+offset])
				base := (ch*nvox + v) * dim
				for d := 0; d < dim; d++ {
					outData[base+d] += T(dw[d] * s)
				}
			}
		})
	}, par)
}
