package spatial

import (
	"fmt"

	"github.com/born-ml/spatial/internal/bound"
	"github.com/born-ml/spatial/internal/sampler"
	"github.com/born-ml/spatial/internal/spline"
	"github.com/born-ml/spatial/internal/tensor"
)

// Plan is the validated, normalized description of one kernel invocation:
// per-axis options resolved, shapes agreed, nothing left to check inside the
// kernel loop.
type Plan struct {
	Dim         int            // Spatial rank D.
	Channels    int            // Channel count C.
	OutDims     []int          // Output spatial dims O1..OE.
	NumVox      int            // Π OutDims: output positions to drive.
	SrcSpatial  []int          // Source spatial dims S1..SD.
	Orders      []spline.Order // Per-axis, length D.
	Bounds      []bound.Mode   // Per-axis, length D.
	Extrapolate bool           // Whether out-of-domain positions produce values.
}

// Axes builds the compositor's per-axis descriptions from the source
// buffer's spatial strides (spatialStrides excludes the channel stride).
func (p *Plan) Axes(spatialStrides []int) []sampler.Axis {
	axes := make([]sampler.Axis, p.Dim)
	for d := 0; d < p.Dim; d++ {
		axes[d] = sampler.Axis{
			Size:   p.SrcSpatial[d],
			Stride: spatialStrides[d],
			Order:  p.Orders[d],
			Bound:  p.Bounds[d],
		}
	}
	return axes
}

// PlanPull validates a Pull or Grad invocation: src [C, S1..SD] sampled at
// grid [O1..OE, D].
func PlanPull(src, grid *tensor.RawTensor, opt Options) (*Plan, error) {
	plan, err := planGrid(grid, opt)
	if err != nil {
		return nil, err
	}
	if err := sameContext(src, grid); err != nil {
		return nil, err
	}

	srcShape := src.Shape()
	if len(srcShape) != plan.Dim+1 {
		return nil, fmt.Errorf("%w: source rank %d does not match grid with %d spatial axes (want channel-first rank %d)",
			ErrConfiguration, len(srcShape), plan.Dim, plan.Dim+1)
	}
	plan.Channels = srcShape[0]
	plan.SrcSpatial = srcShape[1:]

	return plan, plan.checkBounds()
}

// PlanPush validates a Push invocation: outGrad [C, O1..OE] scattered through
// grid [O1..OE, D] into a [C, S1..SD] target.
func PlanPush(outGrad, grid *tensor.RawTensor, srcSpatial tensor.Shape, opt Options) (*Plan, error) {
	plan, err := planGrid(grid, opt)
	if err != nil {
		return nil, err
	}
	if err := sameContext(outGrad, grid); err != nil {
		return nil, err
	}

	ogShape := outGrad.Shape()
	if len(ogShape) != len(plan.OutDims)+1 {
		return nil, fmt.Errorf("%w: output-gradient rank %d does not match grid output rank %d (want channel-first rank %d)",
			ErrConfiguration, len(ogShape), len(plan.OutDims), len(plan.OutDims)+1)
	}
	if !tensor.Shape(plan.OutDims).Equal(ogShape[1:]) {
		return nil, fmt.Errorf("%w: output-gradient spatial dims %v do not match grid dims %v",
			ErrConfiguration, []int(ogShape[1:]), plan.OutDims)
	}
	plan.Channels = ogShape[0]

	return plan, plan.setTarget(srcSpatial)
}

// PlanCount validates a Count invocation: grid [O1..OE, D] scattered into a
// [S1..SD] density map.
func PlanCount(grid *tensor.RawTensor, srcSpatial tensor.Shape, opt Options) (*Plan, error) {
	plan, err := planGrid(grid, opt)
	if err != nil {
		return nil, err
	}
	plan.Channels = 1
	return plan, plan.setTarget(srcSpatial)
}

// planGrid validates the coordinate buffer and the per-axis options.
func planGrid(grid *tensor.RawTensor, opt Options) (*Plan, error) {
	gridShape := grid.Shape()
	if len(gridShape) < 2 {
		return nil, fmt.Errorf("%w: grid rank %d, want at least 2 ([positions..., dim])",
			ErrConfiguration, len(gridShape))
	}
	dim := gridShape[len(gridShape)-1]
	if dim < 1 || dim > sampler.MaxDim {
		return nil, fmt.Errorf("%w: %d spatial axes, supported range is 1..%d",
			ErrConfiguration, dim, sampler.MaxDim)
	}
	if grid.DType() != tensor.Float32 && grid.DType() != tensor.Float64 {
		return nil, fmt.Errorf("%w: grid dtype %s, want float32 or float64",
			ErrConfiguration, grid.DType())
	}

	orders, err := broadcastOrders(opt.Order, dim)
	if err != nil {
		return nil, err
	}
	bounds, err := broadcastBounds(opt.Bound, dim)
	if err != nil {
		return nil, err
	}

	outDims := append([]int(nil), gridShape[:len(gridShape)-1]...)
	numVox := 1
	for _, d := range outDims {
		numVox *= d
	}

	return &Plan{
		Dim:         dim,
		OutDims:     outDims,
		NumVox:      numVox,
		Orders:      orders,
		Bounds:      bounds,
		Extrapolate: opt.Extrapolate,
	}, nil
}

// setTarget records the scatter target extent and re-runs the size-dependent
// boundary checks against it.
func (p *Plan) setTarget(srcSpatial tensor.Shape) error {
	if len(srcSpatial) != p.Dim {
		return fmt.Errorf("%w: target spatial rank %d does not match grid with %d spatial axes",
			ErrConfiguration, len(srcSpatial), p.Dim)
	}
	if err := srcSpatial.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	p.SrcSpatial = append([]int(nil), srcSpatial...)
	return p.checkBounds()
}

// checkBounds rejects boundary modes that are undefined for the axis size.
func (p *Plan) checkBounds() error {
	for d := 0; d < p.Dim; d++ {
		if p.Bounds[d] == bound.DCT1 && p.SrcSpatial[d] < 2 {
			return fmt.Errorf("%w: dct1 boundary on axis %d of size %d (requires size > 1)",
				ErrNumericEdgeCase, d, p.SrcSpatial[d])
		}
	}
	return nil
}

// sameContext checks that two buffers agree on dtype and device.
func sameContext(a, b *tensor.RawTensor) error {
	if a.Device() != b.Device() {
		return fmt.Errorf("%w: %s vs %s", ErrDeviceMismatch, a.Device(), b.Device())
	}
	if a.DType() != b.DType() {
		return fmt.Errorf("%w: dtype %s vs %s", ErrConfiguration, a.DType(), b.DType())
	}
	return nil
}

func broadcastOrders(orders []spline.Order, dim int) ([]spline.Order, error) {
	switch len(orders) {
	case 0:
		return nil, fmt.Errorf("%w: no interpolation order given", ErrConfiguration)
	case 1:
		out := make([]spline.Order, dim)
		for d := range out {
			out[d] = orders[0]
		}
		orders = out
	case dim:
		orders = append([]spline.Order(nil), orders...)
	default:
		return nil, fmt.Errorf("%w: %d interpolation orders for %d spatial axes",
			ErrConfiguration, len(orders), dim)
	}
	for d, o := range orders {
		if !o.Valid() {
			return nil, fmt.Errorf("%w: unsupported interpolation order %d on axis %d",
				ErrConfiguration, int(o), d)
		}
	}
	return orders, nil
}

func broadcastBounds(bounds []bound.Mode, dim int) ([]bound.Mode, error) {
	switch len(bounds) {
	case 0:
		return nil, fmt.Errorf("%w: no boundary mode given", ErrConfiguration)
	case 1:
		out := make([]bound.Mode, dim)
		for d := range out {
			out[d] = bounds[0]
		}
		bounds = out
	case dim:
		bounds = append([]bound.Mode(nil), bounds...)
	default:
		return nil, fmt.Errorf("%w: %d boundary modes for %d spatial axes",
			ErrConfiguration, len(bounds), dim)
	}
	for d, m := range bounds {
		if !m.Valid() {
			return nil, fmt.Errorf("%w: unknown boundary mode %d on axis %d",
				ErrConfiguration, int(m), d)
		}
	}
	return bounds, nil
}
