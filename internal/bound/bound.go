// Package bound implements the boundary-condition algebra used by the spatial
// kernels: folding an out-of-range integer index back into [0, size) together
// with a sign multiplier.
//
// The modes mirror the symmetric extensions of the discrete cosine/sine/
// Fourier transform families. A mode is a pure value; Resolve has no state.
package bound

import "fmt"

// Mode enumerates the supported boundary conditions for one spatial axis.
type Mode int

const (
	// Zero drops contributions that fall outside [0, size).
	Zero Mode = iota
	// Replicate clamps to the nearest edge voxel.
	Replicate
	// DCT1 reflects around the boundary nodes 0 and size-1 ("whole-sample
	// symmetric"); requires size > 1.
	DCT1
	// DCT2 reflects around -0.5 and size-0.5 ("half-sample symmetric",
	// Neumann-like).
	DCT2
	// DST1 is the odd counterpart of DCT1: reflects around -1 and size,
	// flipping the sign on each reflection. The field is exactly zero on the
	// reflection nodes themselves.
	DST1
	// DST2 is the odd counterpart of DCT2: same folding, sign flipped on
	// each reflection.
	DST2
	// DFT wraps around with period size (circular).
	DFT
	// NoCheck uses the index as-is; the caller guarantees validity.
	// Interior-only fast path.
	NoCheck
)

// String returns a human-readable mode name.
func (m Mode) String() string {
	switch m {
	case Zero:
		return "zero"
	case Replicate:
		return "replicate"
	case DCT1:
		return "dct1"
	case DCT2:
		return "dct2"
	case DST1:
		return "dst1"
	case DST2:
		return "dst2"
	case DFT:
		return "dft"
	case NoCheck:
		return "nocheck"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m >= Zero && m <= NoCheck
}

// FlipsSign reports whether the mode can produce negative signs.
func (m Mode) FlipsSign() bool {
	return m == DST1 || m == DST2
}

// Period returns the index period of a periodic mode for the given axis size,
// or 0 for modes that are not periodic (Zero, Replicate, NoCheck).
func (m Mode) Period(size int) int {
	switch m {
	case DCT1:
		return 2 * (size - 1)
	case DCT2, DST2:
		return 2 * size
	case DST1:
		return 2 * (size + 1)
	case DFT:
		return size
	default:
		return 0
	}
}

// Dropped is the sign value marking a contribution that must be skipped
// entirely: either an out-of-range index under Zero, or a node sitting on a
// DST1 symmetry point where the extension is exactly zero.
const Dropped = 0

// Resolve folds index into [0, size) under mode and returns the in-range
// index together with a sign multiplier in {-1, Dropped, +1}.
//
// The folding is done with modulo arithmetic, never iteratively, so the
// result is exact for indices arbitrarily many periods out of range
// (scaling-and-squaring can request such coordinates).
func Resolve(index, size int, mode Mode) (int, int) {
	if mode == NoCheck {
		return index, 1
	}
	if index >= 0 && index < size {
		return index, 1
	}

	switch mode {
	case Zero:
		return 0, Dropped

	case Replicate:
		if index < 0 {
			return 0, 1
		}
		return size - 1, 1

	case DCT2:
		n2 := 2 * size
		i := floorMod(index, n2)
		if i >= size {
			i = n2 - 1 - i
		}
		return i, 1

	case DCT1:
		if size == 1 {
			return 0, 1
		}
		n2 := 2 * (size - 1)
		i := floorMod(index, n2)
		if i >= size {
			i = n2 - i
		}
		return i, 1

	case DST2:
		n2 := 2 * size
		i := floorMod(index, n2)
		if i >= size {
			return n2 - 1 - i, -1
		}
		return i, 1

	case DST1:
		// Shift so the symmetry nodes -1 and size land on 0 and size+1.
		n2 := 2 * (size + 1)
		i := floorMod(index+1, n2)
		switch {
		case i == 0 || i == size+1:
			return 0, Dropped // Extension is exactly zero on the nodes.
		case i <= size:
			return i - 1, 1
		default:
			return n2 - i - 1, -1
		}

	case DFT:
		return floorMod(index, size), 1

	default:
		panic(fmt.Sprintf("bound: unknown mode %d", int(mode)))
	}
}

// floorMod returns i mod n with the sign of n (always in [0, n) for n > 0),
// unlike Go's truncated % operator.
func floorMod(i, n int) int {
	m := i % n
	if m < 0 {
		m += n
	}
	return m
}
