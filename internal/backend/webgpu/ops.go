package webgpu

import (
	"github.com/born-ml/spatial/internal/spatial"
	"github.com/born-ml/spatial/internal/tensor"
)

// packParams flattens a validated plan into the shader uniform block.
// The target layout is always freshly allocated contiguous, so the spatial
// strides are recomputed here rather than taken from a buffer.
func packParams(plan *spatial.Plan) *kernelParams {
	p := &kernelParams{
		//nolint:gosec // G115: validated plan fields are small and non-negative
		dim: uint32(plan.Dim),
		//nolint:gosec // G115: validated plan fields are small and non-negative
		channels: uint32(plan.Channels),
		//nolint:gosec // G115: validated plan fields are small and non-negative
		nvox: uint32(plan.NumVox),
	}
	if plan.Extrapolate {
		p.extrapolate = 1
	}

	strides := tensor.Shape(plan.SrcSpatial).ComputeStrides()
	cstride := 1
	for d := 0; d < plan.Dim; d++ {
		//nolint:gosec // G115: spatial extents fit in int32 on any supported target
		p.sizes[d] = int32(plan.SrcSpatial[d])
		//nolint:gosec // G115: spatial extents fit in int32 on any supported target
		p.strides[d] = int32(strides[d])
		p.orders[d] = uint32(plan.Orders[d])
		p.bounds[d] = uint32(plan.Bounds[d])
		cstride *= plan.SrcSpatial[d]
	}
	//nolint:gosec // G115: spatial extents fit in int32 on any supported target
	p.strides[3] = int32(cstride)
	return p
}

// wrapResult copies shader output bytes into a fresh device tensor.
func wrapResult(data []byte, shape tensor.Shape) (*tensor.RawTensor, error) {
	out, err := tensor.NewRaw(shape, tensor.Float32, tensor.WebGPU)
	if err != nil {
		return nil, err
	}
	copy(out.Data(), data)
	return out, nil
}

// Pull samples src [C, S1..SD] at grid [O1..OE, D] positions.
func (b *Backend) Pull(src, grid *tensor.RawTensor, opt spatial.Options) (*tensor.RawTensor, error) {
	if err := b.checkBuffers(src, grid); err != nil {
		return nil, err
	}
	plan, err := spatial.PlanPull(src, grid, opt)
	if err != nil {
		return nil, err
	}

	outShape := append(tensor.Shape{plan.Channels}, plan.OutDims...)
	resultSize := uint64(plan.Channels*plan.NumVox) * 4

	data, err := b.runKernel("spatialPull", pullShader,
		[][]byte{src.Data(), grid.Data()}, resultSize, packParams(plan))
	if err != nil {
		return nil, err
	}
	return wrapResult(data, outShape)
}

// Push scatters outGrad [C, O1..OE] through grid into a [C, S1..SD] target.
func (b *Backend) Push(outGrad, grid *tensor.RawTensor, srcSpatial tensor.Shape, opt spatial.Options) (*tensor.RawTensor, error) {
	if err := b.checkBuffers(outGrad, grid); err != nil {
		return nil, err
	}
	plan, err := spatial.PlanPush(outGrad, grid, srcSpatial, opt)
	if err != nil {
		return nil, err
	}

	outShape := append(tensor.Shape{plan.Channels}, plan.SrcSpatial...)
	resultSize := uint64(plan.Channels*outShape[1:].NumElements()) * 4

	data, err := b.runKernel("spatialPush", pushShader,
		[][]byte{outGrad.Data(), grid.Data()}, resultSize, packParams(plan))
	if err != nil {
		return nil, err
	}
	return wrapResult(data, outShape)
}

// Count scatters unit mass through grid into a [S1..SD] density map.
func (b *Backend) Count(grid *tensor.RawTensor, srcSpatial tensor.Shape, opt spatial.Options) (*tensor.RawTensor, error) {
	if err := b.checkBuffers(grid); err != nil {
		return nil, err
	}
	plan, err := spatial.PlanCount(grid, srcSpatial, opt)
	if err != nil {
		return nil, err
	}

	outShape := append(tensor.Shape(nil), plan.SrcSpatial...)
	resultSize := uint64(outShape.NumElements()) * 4

	data, err := b.runKernel("spatialCount", countShader,
		[][]byte{grid.Data()}, resultSize, packParams(plan))
	if err != nil {
		return nil, err
	}
	return wrapResult(data, outShape)
}

// Grad samples the spatial gradient of src at grid positions.
// Output is [C, O1..OE, D].
func (b *Backend) Grad(src, grid *tensor.RawTensor, opt spatial.Options) (*tensor.RawTensor, error) {
	if err := b.checkBuffers(src, grid); err != nil {
		return nil, err
	}
	plan, err := spatial.PlanPull(src, grid, opt)
	if err != nil {
		return nil, err
	}

	outShape := append(tensor.Shape{plan.Channels}, plan.OutDims...)
	outShape = append(outShape, plan.Dim)
	resultSize := uint64(plan.Channels*plan.NumVox*plan.Dim) * 4

	data, err := b.runKernel("spatialGrad", gradShader,
		[][]byte{src.Data(), grid.Data()}, resultSize, packParams(plan))
	if err != nil {
		return nil, err
	}
	return wrapResult(data, outShape)
}
