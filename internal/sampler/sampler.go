// Package sampler composes per-axis spline bases and boundary conditions into
// the neighbor set of one N-dimensional grid point: every contributing source
// element as a (linear offset, signed weight) pair.
//
// All four spatial kernels are built on this composition; Pull/Push/Count use
// Visit, Grad uses VisitGrad.
package sampler

import (
	"github.com/born-ml/spatial/internal/bound"
	"github.com/born-ml/spatial/internal/spline"
)

// MaxDim is the highest supported number of spatial axes.
const MaxDim = 3

// Axis describes one spatial axis of the source buffer.
type Axis struct {
	Size   int          // Voxel count along the axis.
	Stride int          // Element stride along the axis.
	Order  spline.Order // Interpolation order.
	Bound  bound.Mode   // Boundary condition.
}

// axisBasis is the boundary-resolved basis of one axis: per contributing node
// the pre-multiplied stride offset, the signed weight and its derivative.
type axisBasis struct {
	n       int
	offset  [spline.MaxSupport]int
	weight  [spline.MaxSupport]float64
	dweight [spline.MaxSupport]float64
}

// resolve folds the raw spline nodes of one axis through its boundary
// condition. Dropped nodes (zero-mode out-of-range, DST1 symmetry nodes) are
// skipped entirely rather than emitted with weight 0.
func (a *Axis) resolve(x float64, grad bool, basis *axisBasis) {
	var nodes [spline.MaxSupport]int
	var w, dw [spline.MaxSupport]float64

	var count int
	if grad {
		count = spline.WeightsGrad(a.Order, x, &nodes, &w, &dw)
	} else {
		count = spline.Weights(a.Order, x, &nodes, &w)
	}

	basis.n = 0
	for k := 0; k < count; k++ {
		idx, sign := bound.Resolve(nodes[k], a.Size, a.Bound)
		if sign == bound.Dropped {
			continue
		}
		j := basis.n
		basis.offset[j] = idx * a.Stride
		basis.weight[j] = w[k] * float64(sign)
		if grad {
			basis.dweight[j] = dw[k] * float64(sign)
		}
		basis.n = j + 1
	}
}

// Visit calls visit for every neighbor of the grid point: the tensor product
// of the per-axis bases, with offset = Σ per-axis offsets and weight =
// Π per-axis signed weights. The neighbor set is valid to reuse across
// channels; channel addressing is the caller's concern.
func Visit(axes []Axis, point []float64, visit func(offset int, weight float64)) {
	dim := len(axes)
	var basis [MaxDim]axisBasis
	for d := 0; d < dim; d++ {
		axes[d].resolve(point[d], false, &basis[d])
		if basis[d].n == 0 {
			return // A fully dropped axis kills every combination.
		}
	}

	switch dim {
	case 1:
		b0 := &basis[0]
		for i := 0; i < b0.n; i++ {
			visit(b0.offset[i], b0.weight[i])
		}
	case 2:
		b0, b1 := &basis[0], &basis[1]
		for i := 0; i < b0.n; i++ {
			o0, w0 := b0.offset[i], b0.weight[i]
			for j := 0; j < b1.n; j++ {
				visit(o0+b1.offset[j], w0*b1.weight[j])
			}
		}
	default:
		b0, b1, b2 := &basis[0], &basis[1], &basis[2]
		for i := 0; i < b0.n; i++ {
			o0, w0 := b0.offset[i], b0.weight[i]
			for j := 0; j < b1.n; j++ {
				o1, w1 := o0+b1.offset[j], w0*b1.weight[j]
				for k := 0; k < b2.n; k++ {
					visit(o1+b2.offset[k], w1*b2.weight[k])
				}
			}
		}
	}
}

// VisitGrad is the derivative composition used by the Grad kernel: for every
// neighbor it reports, per axis d, the product where that axis contributes
// its weight derivative and every other axis its plain weight. dw is reused
// across calls and valid only inside visit.
func VisitGrad(axes []Axis, point []float64, visit func(offset int, dw []float64)) {
	dim := len(axes)
	var basis [MaxDim]axisBasis
	for d := 0; d < dim; d++ {
		axes[d].resolve(point[d], true, &basis[d])
		if basis[d].n == 0 {
			return
		}
	}

	var dw [MaxDim]float64
	switch dim {
	case 1:
		b0 := &basis[0]
		for i := 0; i < b0.n; i++ {
			dw[0] = b0.dweight[i]
			visit(b0.offset[i], dw[:1])
		}
	case 2:
		b0, b1 := &basis[0], &basis[1]
		for i := 0; i < b0.n; i++ {
			for j := 0; j < b1.n; j++ {
				dw[0] = b0.dweight[i] * b1.weight[j]
				dw[1] = b0.weight[i] * b1.dweight[j]
				visit(b0.offset[i]+b1.offset[j], dw[:2])
			}
		}
	default:
		b0, b1, b2 := &basis[0], &basis[1], &basis[2]
		for i := 0; i < b0.n; i++ {
			for j := 0; j < b1.n; j++ {
				for k := 0; k < b2.n; k++ {
					dw[0] = b0.dweight[i] * b1.weight[j] * b2.weight[k]
					dw[1] = b0.weight[i] * b1.dweight[j] * b2.weight[k]
					dw[2] = b0.weight[i] * b1.weight[j] * b2.dweight[k]
					visit(b0.offset[i]+b1.offset[j]+b2.offset[k], dw[:3])
				}
			}
		}
	}
}

// InBounds reports whether the grid point lies inside the source domain,
// per axis within [-0.5, size-0.5]. Used to implement the extrapolate flag:
// when extrapolation is disabled, out-of-domain points produce no value at
// all rather than a boundary-folded one.
func InBounds(axes []Axis, point []float64) bool {
	for d := range axes {
		if point[d] < -0.5 || point[d] > float64(axes[d].Size)-0.5 {
			return false
		}
	}
	return true
}
