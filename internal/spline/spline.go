// Package spline implements the interpolation bases used by the spatial
// kernels: nearest (order 0), linear (order 1) and centered B-splines of
// degree 2 through 7, together with the analytic derivatives needed for
// coordinate gradients.
package spline

import (
	"fmt"
	"math"
)

// Order is the interpolation order for one spatial axis.
// 0 is nearest, 1 is linear, 2..7 are B-splines of that degree.
type Order int

// MaxOrder is the highest supported B-spline degree.
const MaxOrder = 7

// Named constants for the orders used most often. Higher degrees are spelled
// numerically: Order(5), Order(7).
const (
	Nearest   Order = 0
	Linear    Order = 1
	Quadratic Order = 2
	Cubic     Order = 3
)

// Valid reports whether o is a supported order.
func (o Order) Valid() bool {
	return o >= 0 && o <= MaxOrder
}

// String returns a human-readable order name.
func (o Order) String() string {
	switch o {
	case 0:
		return "nearest"
	case 1:
		return "linear"
	default:
		return fmt.Sprintf("spline%d", int(o))
	}
}

// Support returns the number of grid nodes contributing to one sample.
func (o Order) Support() int {
	return int(o) + 1
}

// MaxSupport is the largest neighbor count along one axis (order 7).
const MaxSupport = MaxOrder + 1

// Weights computes the contributing integer nodes and their weights for a
// sample at coordinate x. It fills nodes and w and returns the node count
// (Support() for orders >= 1, always 1 for order 0).
//
// The returned nodes are raw grid indices, not yet folded through a boundary
// condition. Weights along one axis always sum to 1: every supported basis is
// a partition of unity.
func Weights(o Order, x float64, nodes *[MaxSupport]int, w *[MaxSupport]float64) int {
	switch o {
	case 0:
		nodes[0] = int(math.Floor(x + 0.5))
		w[0] = 1
		return 1
	case 1:
		b := int(math.Floor(x))
		t := x - float64(b)
		nodes[0], nodes[1] = b, b+1
		w[0], w[1] = 1-t, t
		return 2
	default:
		n := firstNode(o, x)
		count := o.Support()
		for k := 0; k < count; k++ {
			nodes[k] = n + k
			w[k] = bspline(int(o), x-float64(n+k))
		}
		return count
	}
}

// WeightsGrad is Weights plus the derivative of each weight with respect to
// the sampling coordinate, used by the Grad kernel.
func WeightsGrad(o Order, x float64, nodes *[MaxSupport]int, w, dw *[MaxSupport]float64) int {
	switch o {
	case 0:
		// Nearest interpolation is piecewise constant: zero derivative.
		nodes[0] = int(math.Floor(x + 0.5))
		w[0] = 1
		dw[0] = 0
		return 1
	case 1:
		b := int(math.Floor(x))
		t := x - float64(b)
		nodes[0], nodes[1] = b, b+1
		w[0], w[1] = 1-t, t
		dw[0], dw[1] = -1, 1
		return 2
	default:
		n := firstNode(o, x)
		count := o.Support()
		for k := 0; k < count; k++ {
			nodes[k] = n + k
			u := x - float64(n+k)
			w[k] = bspline(int(o), u)
			dw[k] = bsplineDeriv(int(o), u)
		}
		return count
	}
}

// firstNode returns the lowest contributing node for order >= 2.
// Odd orders center the support on the lower node, even orders on the
// nearest node, so that |x - node| stays within (order+1)/2 for every node.
func firstNode(o Order, x float64) int {
	if o%2 == 1 {
		return int(math.Floor(x)) - (int(o)-1)/2
	}
	return int(math.Floor(x+0.5)) - int(o)/2
}

// bspline evaluates the centered B-spline of degree p at u.
// Degrees 2 and 3 use hand-expanded polynomial pieces (the hot path);
// higher degrees use the exact truncated-power form
//
//	B_p(u) = 1/p! * Σ_k (-1)^k C(p+1, k) ((p+1)/2 - k - |u|)_+^p
//
// which is a closed-form finite sum, not a recursion.
func bspline(p int, u float64) float64 {
	a := math.Abs(u)
	switch p {
	case 2:
		switch {
		case a < 0.5:
			return 0.75 - a*a
		case a < 1.5:
			d := 1.5 - a
			return 0.5 * d * d
		default:
			return 0
		}
	case 3:
		switch {
		case a < 1:
			return 2.0/3.0 + a*a*(0.5*a-1)
		case a < 2:
			d := 2 - a
			return d * d * d / 6
		default:
			return 0
		}
	default:
		half := float64(p+1) / 2
		if a >= half {
			return 0
		}
		s := 0.0
		sign := 1.0
		for k := 0; ; k++ {
			d := half - float64(k) - a
			if d <= 0 {
				break
			}
			s += sign * binomial[p+1][k] * intPow(d, p)
			sign = -sign
		}
		return s / factorial[p]
	}
}

// bsplineDeriv evaluates dB_p/du. Degrees 2 and 3 are hand-expanded; higher
// degrees use the exact identity B'_p(u) = B_{p-1}(u+1/2) - B_{p-1}(u-1/2).
func bsplineDeriv(p int, u float64) float64 {
	a := math.Abs(u)
	sign := 1.0
	if u < 0 {
		sign = -1
	}
	switch p {
	case 2:
		switch {
		case a < 0.5:
			return sign * (-2 * a)
		case a < 1.5:
			return sign * (a - 1.5)
		default:
			return 0
		}
	case 3:
		switch {
		case a < 1:
			return sign * (1.5*a*a - 2*a)
		case a < 2:
			d := 2 - a
			return sign * (-0.5 * d * d)
		default:
			return 0
		}
	default:
		return bspline(p-1, u+0.5) - bspline(p-1, u-0.5)
	}
}

// intPow computes d^p for small non-negative integer p by repeated
// multiplication; exact and faster than math.Pow for p <= 7.
func intPow(d float64, p int) float64 {
	r := 1.0
	for i := 0; i < p; i++ {
		r *= d
	}
	return r
}

// binomial[n][k] = C(n, k) for n <= MaxOrder+1.
var binomial = [MaxSupport + 1][MaxSupport + 1]float64{}

// factorial[p] = p! for p <= MaxOrder.
var factorial = [MaxSupport]float64{}

func init() {
	for n := 0; n <= MaxSupport; n++ {
		binomial[n][0] = 1
		for k := 1; k <= n; k++ {
			binomial[n][k] = binomial[n-1][k-1] + binomial[n-1][k]
		}
	}
	factorial[0] = 1
	for p := 1; p < MaxSupport; p++ {
		factorial[p] = factorial[p-1] * float64(p)
	}
}
