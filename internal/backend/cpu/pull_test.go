package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/spatial/internal/bound"
	"github.com/born-ml/spatial/internal/spatial"
	"github.com/born-ml/spatial/internal/spline"
	"github.com/born-ml/spatial/internal/tensor"
)

func options(order spline.Order, mode bound.Mode, extrapolate bool) spatial.Options {
	return spatial.Options{
		Order:       []spline.Order{order},
		Bound:       []bound.Mode{mode},
		Extrapolate: extrapolate,
	}
}

// TestPullLinear1D: order-1 pull on [1,2,3,4] at coordinate 1.5 with a
// replicate boundary interpolates halfway between 2 and 3.
func TestPullLinear1D(t *testing.T) {
	backend := New()
	src, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{1, 4}, tensor.CPU)
	require.NoError(t, err)
	grid, err := tensor.FromSlice([]float32{1.5}, tensor.Shape{1, 1}, tensor.CPU)
	require.NoError(t, err)

	out, err := backend.Pull(src, grid, options(1, bound.Replicate, true))
	require.NoError(t, err)

	require.True(t, out.Shape().Equal(tensor.Shape{1, 1}), "shape %v", out.Shape())
	assert.InDelta(t, 2.5, out.AsFloat32()[0], 1e-6)
}

// TestPullNearestOutOfRange: order-0 pull at coordinate -1 with a zero
// boundary drops the contribution entirely.
func TestPullNearestOutOfRange(t *testing.T) {
	backend := New()
	src, _ := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{1, 4}, tensor.CPU)
	grid, _ := tensor.FromSlice([]float32{-1}, tensor.Shape{1, 1}, tensor.CPU)

	out, err := backend.Pull(src, grid, options(0, bound.Zero, true))
	require.NoError(t, err)
	assert.Equal(t, float32(0), out.AsFloat32()[0])
}

func TestPullIdentityGrid(t *testing.T) {
	backend := New()
	src, _ := tensor.FromSlice([]float64{
		1, 2, 3,
		4, 5, 6,
	}, tensor.Shape{1, 2, 3}, tensor.CPU)
	grid, err := spatial.Identity(tensor.Shape{2, 3}, tensor.Float64, tensor.CPU)
	require.NoError(t, err)

	out, err := backend.Pull(src, grid, options(1, bound.Replicate, true))
	require.NoError(t, err)

	want := src.AsFloat64()
	got := out.AsFloat64()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-12, "voxel %d", i)
	}
}

func TestPullMultiChannelSharesNeighborSet(t *testing.T) {
	backend := New()
	// Two channels holding v and 10*v: the interpolated values must keep the
	// same factor because both channels reuse one neighbor set.
	src, _ := tensor.FromSlice([]float32{
		1, 2, 3, 4,
		10, 20, 30, 40,
	}, tensor.Shape{2, 4}, tensor.CPU)
	grid, _ := tensor.FromSlice([]float32{0.25, 2.75}, tensor.Shape{2, 1}, tensor.CPU)

	out, err := backend.Pull(src, grid, options(1, bound.Replicate, true))
	require.NoError(t, err)

	data := out.AsFloat32()
	require.True(t, out.Shape().Equal(tensor.Shape{2, 2}))
	assert.InDelta(t, 1.25, data[0], 1e-6)
	assert.InDelta(t, 3.75, data[1], 1e-6)
	assert.InDelta(t, 10*data[0], data[2], 1e-4)
	assert.InDelta(t, 10*data[1], data[3], 1e-4)
}

func TestPullNoExtrapolationZeroesOutside(t *testing.T) {
	backend := New()
	src, _ := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{1, 4}, tensor.CPU)
	grid, _ := tensor.FromSlice([]float32{-2, 1}, tensor.Shape{2, 1}, tensor.CPU)

	// Replicate would clamp -2 onto the edge, but with extrapolation off the
	// out-of-domain position must stay zero.
	out, err := backend.Pull(src, grid, options(1, bound.Replicate, false))
	require.NoError(t, err)

	data := out.AsFloat32()
	assert.Equal(t, float32(0), data[0])
	assert.InDelta(t, 2.0, data[1], 1e-6)
}

func TestPullStridedSource(t *testing.T) {
	backend := New()
	// One channel viewed out of a 2-channel interleaved backing: stride 2.
	backing, _ := tensor.FromSlice([]float32{1, -1, 2, -2, 3, -3, 4, -4}, tensor.Shape{8}, tensor.CPU)
	src, err := tensor.Wrap(backing.Data(), tensor.Shape{1, 4}, []int{8, 2}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	grid, _ := tensor.FromSlice([]float32{1.5}, tensor.Shape{1, 1}, tensor.CPU)

	out, err := backend.Pull(src, grid, options(1, bound.Replicate, true))
	require.NoError(t, err)
	assert.InDelta(t, 2.5, out.AsFloat32()[0], 1e-6)
}

func TestPull2DBilinear(t *testing.T) {
	backend := New()
	src, _ := tensor.FromSlice([]float64{
		0, 1,
		2, 3,
	}, tensor.Shape{1, 2, 2}, tensor.CPU)
	grid, _ := tensor.FromSlice([]float64{0.5, 0.5}, tensor.Shape{1, 2}, tensor.CPU)

	out, err := backend.Pull(src, grid, options(1, bound.Replicate, true))
	require.NoError(t, err)
	assert.InDelta(t, 1.5, out.AsFloat64()[0], 1e-12)
}

func TestPullValidationErrors(t *testing.T) {
	backend := New()
	src, _ := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{1, 4}, tensor.CPU)
	grid, _ := tensor.FromSlice([]float32{1}, tensor.Shape{1, 1}, tensor.CPU)

	_, err := backend.Pull(src, grid, spatial.Options{
		Order: []spline.Order{9},
		Bound: []bound.Mode{bound.Zero},
	})
	assert.ErrorIs(t, err, spatial.ErrConfiguration)

	_, err = backend.Pull(src, grid, spatial.Options{
		Order: []spline.Order{1},
		Bound: []bound.Mode{bound.Mode(42)},
	})
	assert.ErrorIs(t, err, spatial.ErrConfiguration)

	// DCT1 on a size-1 axis is a numeric edge case, caught eagerly.
	one, _ := tensor.FromSlice([]float32{5}, tensor.Shape{1, 1}, tensor.CPU)
	_, err = backend.Pull(one, grid, options(1, bound.DCT1, true))
	assert.ErrorIs(t, err, spatial.ErrNumericEdgeCase)

	// Mixed dtypes are a configuration error.
	grid64, _ := tensor.FromSlice([]float64{1}, tensor.Shape{1, 1}, tensor.CPU)
	_, err = backend.Pull(src, grid64, options(1, bound.Zero, true))
	assert.ErrorIs(t, err, spatial.ErrConfiguration)

	// Foreign-device buffers are a device mismatch.
	gpuGrid, _ := tensor.FromSlice([]float32{1}, tensor.Shape{1, 1}, tensor.WebGPU)
	_, err = backend.Pull(src, gpuGrid, options(1, bound.Zero, true))
	assert.ErrorIs(t, err, spatial.ErrDeviceMismatch)
}

func TestPullHighOrderSmoke(t *testing.T) {
	backend := New()
	src, _ := tensor.FromSlice([]float64{1, 1, 1, 1, 1, 1, 1, 1}, tensor.Shape{1, 8}, tensor.CPU)
	grid, _ := tensor.FromSlice([]float64{3.3}, tensor.Shape{1, 1}, tensor.CPU)

	// Interpolating a constant field must reproduce the constant at every
	// order: partition of unity end to end.
	for order := spline.Order(0); order <= spline.MaxOrder; order++ {
		out, err := backend.Pull(src, grid, options(order, bound.DCT2, true))
		require.NoError(t, err)
		assert.InDelta(t, 1.0, out.AsFloat64()[0], 1e-5, "order %d", order)
	}
}
