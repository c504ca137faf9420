package cpu

import (
	"github.com/born-ml/spatial/internal/parallel"
	"github.com/born-ml/spatial/internal/sampler"
	"github.com/born-ml/spatial/internal/spatial"
	"github.com/born-ml/spatial/internal/tensor"
)

// Pull samples src [C, S1..SD] at every position of grid [O1..OE, D] and
// returns [C, O1..OE]. The neighbor set of a position is composed once and
// applied to every channel.
func (c *CPUBackend) Pull(src, grid *tensor.RawTensor, opt spatial.Options) (*tensor.RawTensor, error) {
	if err := c.checkDevice(src, grid); err != nil {
		return nil, err
	}
	plan, err := spatial.PlanPull(src, grid, opt)
	if err != nil {
		return nil, err
	}

	outShape := append(tensor.Shape{plan.Channels}, plan.OutDims...)
	out, err := tensor.NewRaw(outShape, src.DType(), tensor.CPU)
	if err != nil {
		return nil, err
	}

	switch src.DType() {
	case tensor.Float32:
		pullKernel[float32](out, src, grid, plan, c.par)
	case tensor.Float64:
		pullKernel[float64](out, src, grid, plan, c.par)
	}
	return out, nil
}

func pullKernel[T tensor.DType](out, src, grid *tensor.RawTensor, plan *spatial.Plan, par parallel.Config) {
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
			return // Output stays zero for out-of-domain positions.
		}
		sampler.Visit(axes, pt, func(offset int, weight float64) {
			for ch := 0; ch < channels; ch++ {
				outData[ch*nvox+v] += T(weight * float64(srcData[ch*cstride+offset]))
			}
		})
	}, par)
}
