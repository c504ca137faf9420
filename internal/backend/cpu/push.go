package cpu

import (
	"github.com/born-ml/spatial/internal/parallel"
	"github.com/born-ml/spatial/internal/sampler"
	"github.com/born-ml/spatial/internal/spatial"
	"github.com/born-ml/spatial/internal/tensor"
)

// Push scatter-accumulates outGrad [C, O1..OE] through grid [O1..OE, D] into
// a fresh [C, S1..SD] buffer: the exact adjoint of Pull.
//
// Multiple positions may scatter into the same source cell. Each worker
// accumulates into a private buffer and the buffers are tree-reduced after
// the join, so the result is race-free; the floating-point accumulation
// order still depends on the chunking, which is why cross-backend tests
// compare within tolerance.
func (c *CPUBackend) Push(outGrad, grid *tensor.RawTensor, srcSpatial tensor.Shape, opt spatial.Options) (*tensor.RawTensor, error) {
	if err := c.checkDevice(outGrad, grid); err != nil {
		return nil, err
	}
	plan, err := spatial.PlanPush(outGrad, grid, srcSpatial, opt)
	if err != nil {
		return nil, err
	}

	outShape := append(tensor.Shape{plan.Channels}, plan.SrcSpatial...)
	out, err := tensor.NewRaw(outShape, outGrad.DType(), tensor.CPU)
	if err != nil {
		return nil, err
	}

	switch outGrad.DType() {
	case tensor.Float32:
		pushKernel[float32](out, outGrad, grid, plan, c.par)
	case tensor.Float64:
		pushKernel[float64](out, outGrad, grid, plan, c.par)
	}
	return out, nil
}

func pushKernel[T tensor.DType](out, outGrad, grid *tensor.RawTensor, plan *spatial.Plan, par parallel.Config) {
	ogData := tensor.AsSlice[T](outGrad)
	gridData := tensor.AsSlice[T](grid)
	outData := tensor.AsSlice[T](out)

	axes := plan.Axes(out.Strides()[1:])
	cstride := out.Strides()[0]
	ogStrides := outGrad.Strides()
	ogChan, ogPos := ogStrides[0], ogStrides[1:]
	gstrides := grid.Strides()
	gpos, gvec := gstrides[:len(gstrides)-1], gstrides[len(gstrides)-1]
	channels, dim := plan.Channels, plan.Dim

	scatter := func(acc []T, r parallel.Range) {
		var point [sampler.MaxDim]float64
		for v := r.Start; v < r.End; v++ {
			gbase := positionOffset(v, plan.OutDims, gpos)
			for d := 0; d < dim; d++ {
				point[d] = float64(gridData[gbase+d*gvec])
			}
			pt := point[:dim]
			if !plan.Extrapolate && !sampler.InBounds(axes, pt) {
				continue // Out-of-domain positions contribute nothing.
			}
			ogBase := positionOffset(v, plan.OutDims, ogPos)
			sampler.Visit(axes, pt, func(offset int, weight float64) {
				for ch := 0; ch < channels; ch++ {
					acc[ch*cstride+offset] += T(weight * float64(ogData[ch*ogChan+ogBase]))
				}
			})
		}
	}

	reduceScatter(outData, plan.NumVox, par, scatter)
}

// reduceScatter runs scatter over chunks of the output-position range. With a
// single chunk it accumulates straight into dst; otherwise every worker gets
// a private zeroed buffer and the buffers are summed into dst afterwards (the
// parallel-safe accumulation discipline for scatter kernels).
func reduceScatter[T tensor.DType](dst []T, nvox int, par parallel.Config, scatter func(acc []T, r parallel.Range)) {
	ranges := parallel.Ranges(nvox, par)
	if len(ranges) == 1 {
		scatter(dst, ranges[0])
		return
	}

	private := make([][]T, len(ranges))
	parallel.ForRanges(ranges, func(worker int, r parallel.Range) {
		acc := make([]T, len(dst))
		scatter(acc, r)
		private[worker] = acc
	})

	// Reduce across workers, parallel over destination cells.
	parallel.For(len(dst), func(i int) {
		s := dst[i]
		for _, acc := range private {
			s += acc[i]
		}
		dst[i] = s
	}, par)
}
