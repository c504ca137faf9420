package cpu

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/spatial/internal/bound"
	"github.com/born-ml/spatial/internal/parallel"
	"github.com/born-ml/spatial/internal/spline"
	"github.com/born-ml/spatial/internal/tensor"
)

// TestPushLinearSplit: pushing gradient 1.0 at coordinate 1.5 splits the
// value evenly between cells 1 and 2.
func TestPushLinearSplit(t *testing.T) {
	backend := New()
	outGrad, _ := tensor.FromSlice([]float32{1}, tensor.Shape{1, 1}, tensor.CPU)
	grid, _ := tensor.FromSlice([]float32{1.5}, tensor.Shape{1, 1}, tensor.CPU)

	out, err := backend.Push(outGrad, grid, tensor.Shape{4}, options(1, bound.Replicate, true))
	require.NoError(t, err)

	want := []float32{0, 0.5, 0.5, 0}
	got := out.AsFloat32()
	require.True(t, out.Shape().Equal(tensor.Shape{1, 4}))
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-6, "cell %d", i)
	}
}

// TestPushAccumulates: two positions scattering into the same cell must add,
// never overwrite.
func TestPushAccumulates(t *testing.T) {
	backend := New()
	outGrad, _ := tensor.FromSlice([]float32{1, 1}, tensor.Shape{1, 2}, tensor.CPU)
	grid, _ := tensor.FromSlice([]float32{1, 1}, tensor.Shape{2, 1}, tensor.CPU)

	out, err := backend.Push(outGrad, grid, tensor.Shape{4}, options(1, bound.Replicate, true))
	require.NoError(t, err)
	assert.InDelta(t, 2.0, out.AsFloat32()[1], 1e-6)
}

func TestCountMatchesPushOfOnes(t *testing.T) {
	backend := New()
	rng := rand.New(rand.NewSource(3))

	coords := make([]float64, 20)
	ones := make([]float64, 10)
	for i := range coords {
		coords[i] = rng.Float64()*7 - 1
	}
	for i := range ones {
		ones[i] = 1
	}
	grid, _ := tensor.FromSlice(coords, tensor.Shape{10, 2}, tensor.CPU)
	outGrad, _ := tensor.FromSlice(ones, tensor.Shape{1, 10}, tensor.CPU)

	opt := options(3, bound.DCT2, true)
	count, err := backend.Count(grid, tensor.Shape{5, 6}, opt)
	require.NoError(t, err)
	pushed, err := backend.Push(outGrad, grid, tensor.Shape{5, 6}, opt)
	require.NoError(t, err)

	c := count.AsFloat64()
	p := pushed.AsFloat64()
	require.True(t, count.Shape().Equal(tensor.Shape{5, 6}))
	for i := range c {
		assert.InDelta(t, p[i], c[i], 1e-10, "cell %d", i)
	}
}

// TestCountNonNegative: without sign-flipping boundaries every accumulated
// weight is non-negative.
func TestCountNonNegative(t *testing.T) {
	backend := New()
	rng := rand.New(rand.NewSource(11))

	coords := make([]float64, 60)
	for i := range coords {
		coords[i] = rng.Float64()*14 - 4
	}
	grid, _ := tensor.FromSlice(coords, tensor.Shape{30, 2}, tensor.CPU)

	for _, mode := range []bound.Mode{bound.Zero, bound.Replicate, bound.DCT1, bound.DCT2, bound.DFT} {
		for _, order := range []spline.Order{0, 1, 2, 3} {
			out, err := backend.Count(grid, tensor.Shape{6, 6}, options(order, mode, true))
			require.NoError(t, err)
			for i, v := range out.AsFloat64() {
				if v < 0 {
					t.Fatalf("%s order %d: negative density %v at cell %d", mode, order, v, i)
				}
			}
		}
	}
}

// TestPushParallelMatchesSequential: the private-buffer reduction must agree
// with a single-threaded scatter within accumulation tolerance.
func TestPushParallelMatchesSequential(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	const nvox = 500

	coords := make([]float32, nvox*2)
	grads := make([]float32, nvox)
	for i := range coords {
		coords[i] = rng.Float32()*10 - 1
	}
	for i := range grads {
		grads[i] = rng.Float32()*2 - 1
	}
	grid, _ := tensor.FromSlice(coords, tensor.Shape{nvox, 2}, tensor.CPU)
	outGrad, _ := tensor.FromSlice(grads, tensor.Shape{1, nvox}, tensor.CPU)
	opt := options(3, bound.DCT2, true)

	seq := NewSequential()
	par := New()
	par.SetParallelism(parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 16})

	a, err := seq.Push(outGrad, grid, tensor.Shape{8, 8}, opt)
	require.NoError(t, err)
	b, err := par.Push(outGrad, grid, tensor.Shape{8, 8}, opt)
	require.NoError(t, err)

	av, bv := a.AsFloat32(), b.AsFloat32()
	for i := range av {
		assert.InDelta(t, av[i], bv[i], 1e-4, "cell %d", i)
	}
}

// TestAdjointness: <Pull(s, grid), g> == <s, Push(g, grid)>, the defining
// property of an adjoint pair, for random inputs across orders and bounds.
func TestAdjointness(t *testing.T) {
	backend := New()
	rng := rand.New(rand.NewSource(17))

	const (
		sx, sy = 5, 6
		nvox   = 40
	)
	src := make([]float64, sx*sy)
	for i := range src {
		src[i] = rng.NormFloat64()
	}
	coords := make([]float64, nvox*2)
	for i := range coords {
		coords[i] = rng.Float64()*9 - 2
	}
	grads := make([]float64, nvox)
	for i := range grads {
		grads[i] = rng.NormFloat64()
	}

	s, _ := tensor.FromSlice(src, tensor.Shape{1, sx, sy}, tensor.CPU)
	grid, _ := tensor.FromSlice(coords, tensor.Shape{nvox, 2}, tensor.CPU)
	g, _ := tensor.FromSlice(grads, tensor.Shape{1, nvox}, tensor.CPU)

	cases := []struct {
		order spline.Order
		mode  bound.Mode
	}{
		{0, bound.Replicate},
		{1, bound.Zero},
		{1, bound.DCT2},
		{2, bound.DFT},
		{3, bound.DCT1},
		{3, bound.DST2},
		{5, bound.DCT2},
	}
	for _, tc := range cases {
		opt := options(tc.order, tc.mode, true)

		pulled, err := backend.Pull(s, grid, opt)
		require.NoError(t, err)
		pushed, err := backend.Push(g, grid, tensor.Shape{sx, sy}, opt)
		require.NoError(t, err)

		lhs := dot(pulled.AsFloat64(), grads)
		rhs := dot(pushed.AsFloat64(), src)
		assert.InDelta(t, lhs, rhs, 1e-8, "order %d bound %s: <Pull(s),g>=%v <s,Push(g)>=%v",
			tc.order, tc.mode, lhs, rhs)
	}
}

func dot(a, b []float64) float64 {
	s := 0.0
	for i := range b {
		s += a[i] * b[i]
	}
	return s
}
