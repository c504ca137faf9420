// Package velocity integrates stationary velocity fields into dense
// displacement fields by scaling and squaring: the field is scaled down to a
// small step, then recursively composed with itself. The result is a
// diffeomorphic deformation for any smooth input field.
//
// Layout convention: velocity and displacement fields are channel-first
// [D, S1..SD], one channel per spatial axis, matching the source layout of
// the resampling kernels. Sampling grids remain [S1..SD, D].
package velocity

import (
	"fmt"

	"github.com/born-ml/spatial/internal/bound"
	"github.com/born-ml/spatial/internal/spatial"
	"github.com/born-ml/spatial/internal/spline"
	"github.com/born-ml/spatial/internal/tensor"
)

// DefaultSteps is the number of squaring steps used when the caller has no
// opinion. Eight steps scale the field by 1/256, small enough for the
// one-step approximation to hold on typical registration velocities.
const DefaultSteps = 8

// integrationOptions are fixed for field composition: linear interpolation,
// mirrored boundaries and extrapolation on, so compositions near the edge
// stay smooth instead of decaying to zero.
func integrationOptions() spatial.Options {
	return spatial.Options{
		Order:       []spline.Order{spline.Linear},
		Bound:       []bound.Mode{bound.DCT2},
		Extrapolate: true,
	}
}

// Exponentiate integrates a stationary velocity field [D, S1..SD] into a
// displacement field of the same shape. steps is the number of squaring
// iterations; use DefaultSteps when unsure.
func Exponentiate(b spatial.Backend, vel *tensor.RawTensor, steps int) (*tensor.RawTensor, error) {
	if steps < 0 {
		return nil, fmt.Errorf("%w: %d squaring steps", spatial.ErrConfiguration, steps)
	}
	if err := checkField(vel); err != nil {
		return nil, err
	}

	disp := vel.Clone()
	if err := scale(disp, 1/float64(int64(1)<<uint(steps))); err != nil {
		return nil, err
	}
	for i := 0; i < steps; i++ {
		next, err := Compose(b, disp, disp)
		if err != nil {
			return nil, err
		}
		disp = next
	}
	return disp, nil
}

// Compose chains two displacement fields: the result moves a point by v
// first, then by u from the landing position.
//
//	w(x) = v(x) + u(x + v(x))
func Compose(b spatial.Backend, u, v *tensor.RawTensor) (*tensor.RawTensor, error) {
	if err := checkField(u); err != nil {
		return nil, err
	}
	if err := checkField(v); err != nil {
		return nil, err
	}
	if !u.Shape().Equal(v.Shape()) {
		return nil, fmt.Errorf("%w: composing displacement fields %v and %v",
			spatial.ErrConfiguration, u.Shape(), v.Shape())
	}

	spatialShape := v.Shape()[1:]
	grid, err := spatial.Identity(spatialShape, v.DType(), v.Device())
	if err != nil {
		return nil, err
	}
	// grid[x] = x + v(x): transpose the channel-first field onto the
	// trailing coordinate axis.
	if err := addTransposed(grid, v); err != nil {
		return nil, err
	}

	pulled, err := b.Pull(u, grid, integrationOptions())
	if err != nil {
		return nil, err
	}

	out := v.Clone()
	if err := add(out, pulled); err != nil {
		return nil, err
	}
	return out, nil
}

// checkField validates the channel-first displacement layout [D, S1..SD].
func checkField(f *tensor.RawTensor) error {
	shape := f.Shape()
	if len(shape) < 2 {
		return fmt.Errorf("%w: displacement field rank %d, want [dim, spatial...]",
			spatial.ErrConfiguration, len(shape))
	}
	dim := len(shape) - 1
	if dim > 3 {
		return fmt.Errorf("%w: displacement field with %d spatial axes, supported range is 1..3",
			spatial.ErrConfiguration, dim)
	}
	if shape[0] != dim {
		return fmt.Errorf("%w: displacement field %v carries %d channels for %d spatial axes",
			spatial.ErrConfiguration, shape, shape[0], dim)
	}
	// The flat accumulation helpers address the backing array directly.
	if !f.IsContiguous() {
		return fmt.Errorf("%w: displacement field must be contiguous", spatial.ErrConfiguration)
	}
	return nil
}

func scale(f *tensor.RawTensor, s float64) error {
	switch f.DType() {
	case tensor.Float32:
		data := f.AsFloat32()
		for i := range data {
			data[i] *= float32(s)
		}
	case tensor.Float64:
		data := f.AsFloat64()
		for i := range data {
			data[i] *= s
		}
	default:
		return fmt.Errorf("%w: displacement dtype %s", spatial.ErrConfiguration, f.DType())
	}
	return nil
}

// add accumulates b into a element-wise. Shapes already agree.
func add(a, b *tensor.RawTensor) error {
	switch a.DType() {
	case tensor.Float32:
		av, bv := a.AsFloat32(), b.AsFloat32()
		for i := range av {
			av[i] += bv[i]
		}
	case tensor.Float64:
		av, bv := a.AsFloat64(), b.AsFloat64()
		for i := range av {
			av[i] += bv[i]
		}
	default:
		return fmt.Errorf("%w: displacement dtype %s", spatial.ErrConfiguration, a.DType())
	}
	return nil
}

// addTransposed accumulates a channel-first field [D, S...] into a grid
// [S..., D]: grid[v*dim+d] += field[d*nvox+v].
func addTransposed(grid, field *tensor.RawTensor) error {
	dim := field.Shape()[0]
	nvox := field.NumElements() / dim

	switch grid.DType() {
	case tensor.Float32:
		g, f := grid.AsFloat32(), field.AsFloat32()
		for v := 0; v < nvox; v++ {
			for d := 0; d < dim; d++ {
				g[v*dim+d] += f[d*nvox+v]
			}
		}
	case tensor.Float64:
		g, f := grid.AsFloat64(), field.AsFloat64()
		for v := 0; v < nvox; v++ {
			for d := 0; d < dim; d++ {
				g[v*dim+d] += f[d*nvox+v]
			}
		}
	default:
		return fmt.Errorf("%w: displacement dtype %s", spatial.ErrConfiguration, grid.DType())
	}
	return nil
}
