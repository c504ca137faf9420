package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/spatial/internal/bound"
	"github.com/born-ml/spatial/internal/spline"
	"github.com/born-ml/spatial/internal/tensor"
)

func TestPlanBroadcastsSingleOption(t *testing.T) {
	src, err := tensor.NewRaw(tensor.Shape{1, 4, 5, 6}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	grid, err := tensor.NewRaw(tensor.Shape{2, 2, 3}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)

	plan, err := PlanPull(src, grid, Options{
		Order: []spline.Order{spline.Cubic},
		Bound: []bound.Mode{bound.DCT2},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, plan.Dim)
	assert.Equal(t, 1, plan.Channels)
	assert.Equal(t, []int{2, 2}, plan.OutDims)
	assert.Equal(t, 4, plan.NumVox)
	assert.Equal(t, []int{4, 5, 6}, plan.SrcSpatial)
	assert.Equal(t, []spline.Order{spline.Cubic, spline.Cubic, spline.Cubic}, plan.Orders)
	assert.Equal(t, []bound.Mode{bound.DCT2, bound.DCT2, bound.DCT2}, plan.Bounds)
}

func TestPlanRejectsOptionCountMismatch(t *testing.T) {
	src, err := tensor.NewRaw(tensor.Shape{1, 4, 5, 6}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	grid, err := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)

	_, err = PlanPull(src, grid, Options{
		Order: []spline.Order{1, 1},
		Bound: []bound.Mode{bound.Zero},
	})
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = PlanPull(src, grid, Options{
		Order: []spline.Order{1},
		Bound: []bound.Mode{bound.Zero, bound.Zero},
	})
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = PlanPull(src, grid, Options{Bound: []bound.Mode{bound.Zero}})
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestPlanRejectsGridShape(t *testing.T) {
	opt := DefaultOptions()

	t.Run("rank too small", func(t *testing.T) {
		grid, err := tensor.NewRaw(tensor.Shape{3}, tensor.Float32, tensor.CPU)
		require.NoError(t, err)
		_, err = PlanCount(grid, tensor.Shape{4}, opt)
		assert.ErrorIs(t, err, ErrConfiguration)
	})

	t.Run("too many spatial axes", func(t *testing.T) {
		grid, err := tensor.NewRaw(tensor.Shape{2, 4}, tensor.Float32, tensor.CPU)
		require.NoError(t, err)
		_, err = PlanCount(grid, tensor.Shape{4, 4, 4, 4}, opt)
		assert.ErrorIs(t, err, ErrConfiguration)
	})

	t.Run("source rank disagrees", func(t *testing.T) {
		src, err := tensor.NewRaw(tensor.Shape{1, 4}, tensor.Float32, tensor.CPU)
		require.NoError(t, err)
		grid, err := tensor.NewRaw(tensor.Shape{2, 2}, tensor.Float32, tensor.CPU)
		require.NoError(t, err)
		_, err = PlanPull(src, grid, opt)
		assert.ErrorIs(t, err, ErrConfiguration)
	})
}

func TestPlanPushValidatesOutputGradient(t *testing.T) {
	opt := DefaultOptions()
	grid, err := tensor.NewRaw(tensor.Shape{3, 2, 2}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)

	t.Run("spatial dims disagree with grid", func(t *testing.T) {
		og, err := tensor.NewRaw(tensor.Shape{1, 3, 3}, tensor.Float32, tensor.CPU)
		require.NoError(t, err)
		_, err = PlanPush(og, grid, tensor.Shape{4, 4}, opt)
		assert.ErrorIs(t, err, ErrConfiguration)
	})

	t.Run("target rank disagrees", func(t *testing.T) {
		og, err := tensor.NewRaw(tensor.Shape{1, 3, 2}, tensor.Float32, tensor.CPU)
		require.NoError(t, err)
		_, err = PlanPush(og, grid, tensor.Shape{4}, opt)
		assert.ErrorIs(t, err, ErrConfiguration)
	})

	t.Run("valid", func(t *testing.T) {
		og, err := tensor.NewRaw(tensor.Shape{2, 3, 2}, tensor.Float32, tensor.CPU)
		require.NoError(t, err)
		plan, err := PlanPush(og, grid, tensor.Shape{4, 5}, opt)
		require.NoError(t, err)
		assert.Equal(t, 2, plan.Channels)
		assert.Equal(t, []int{4, 5}, plan.SrcSpatial)
	})
}

func TestIdentityGrid(t *testing.T) {
	grid, err := Identity(tensor.Shape{2, 3}, tensor.Float64, tensor.CPU)
	require.NoError(t, err)
	require.True(t, grid.Shape().Equal(tensor.Shape{2, 3, 2}))

	want := []float64{
		0, 0, 0, 1, 0, 2,
		1, 0, 1, 1, 1, 2,
	}
	assert.Equal(t, want, grid.AsFloat64())
}

func TestIdentityGridRejectsRank(t *testing.T) {
	_, err := Identity(tensor.Shape{}, tensor.Float32, tensor.CPU)
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = Identity(tensor.Shape{2, 2, 2, 2}, tensor.Float32, tensor.CPU)
	assert.ErrorIs(t, err, ErrConfiguration)
}
