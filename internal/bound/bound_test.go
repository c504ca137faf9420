package bound

import (
	"testing"
)

func TestResolveInRange(t *testing.T) {
	modes := []Mode{Zero, Replicate, DCT1, DCT2, DST1, DST2, DFT, NoCheck}
	for _, mode := range modes {
		for i := 0; i < 5; i++ {
			idx, sign := Resolve(i, 5, mode)
			if idx != i || sign != 1 {
				t.Errorf("%s: in-range index %d resolved to (%d, %d)", mode, i, idx, sign)
			}
		}
	}
}

func TestResolveZero(t *testing.T) {
	if _, sign := Resolve(-1, 4, Zero); sign != Dropped {
		t.Error("zero: index -1 not dropped")
	}
	if _, sign := Resolve(4, 4, Zero); sign != Dropped {
		t.Error("zero: index 4 not dropped")
	}
}

func TestResolveReplicate(t *testing.T) {
	tests := []struct{ in, want int }{
		{-100, 0}, {-1, 0}, {4, 3}, {250, 3},
	}
	for _, tt := range tests {
		idx, sign := Resolve(tt.in, 4, Replicate)
		if idx != tt.want || sign != 1 {
			t.Errorf("replicate(%d) = (%d, %d), want (%d, 1)", tt.in, idx, sign, tt.want)
		}
	}
}

func TestResolveDCT2(t *testing.T) {
	// Reflection around -0.5: f(-1) = f(0), f(-2) = f(1), ...
	// Reflection around size-0.5 (size 4): f(4) = f(3), f(5) = f(2), ...
	tests := []struct{ in, want int }{
		{-1, 0}, {-2, 1}, {-4, 3}, {-5, 3},
		{4, 3}, {5, 2}, {7, 0}, {8, 0},
	}
	for _, tt := range tests {
		idx, sign := Resolve(tt.in, 4, DCT2)
		if idx != tt.want || sign != 1 {
			t.Errorf("dct2(%d) = (%d, %d), want (%d, 1)", tt.in, idx, sign, tt.want)
		}
	}
}

func TestResolveDCT1(t *testing.T) {
	// Reflection around the boundary nodes 0 and size-1 (size 4):
	// f(-1) = f(1), f(4) = f(2), f(5) = f(1), f(6) = f(0).
	tests := []struct{ in, want int }{
		{-1, 1}, {-2, 2}, {-3, 3}, {4, 2}, {5, 1}, {6, 0}, {7, 1},
	}
	for _, tt := range tests {
		idx, sign := Resolve(tt.in, 4, DCT1)
		if idx != tt.want || sign != 1 {
			t.Errorf("dct1(%d) = (%d, %d), want (%d, 1)", tt.in, idx, sign, tt.want)
		}
	}
}

func TestResolveDST2(t *testing.T) {
	// Odd symmetry around -0.5 and size-0.5: f(-1) = -f(0), f(4) = -f(3).
	tests := []struct {
		in, want, sign int
	}{
		{-1, 0, -1}, {-2, 1, -1}, {4, 3, -1}, {5, 2, -1}, {8, 0, 1},
	}
	for _, tt := range tests {
		idx, sign := Resolve(tt.in, 4, DST2)
		if idx != tt.want || sign != tt.sign {
			t.Errorf("dst2(%d) = (%d, %d), want (%d, %d)", tt.in, idx, sign, tt.want, tt.sign)
		}
	}
}

func TestResolveDST1(t *testing.T) {
	// Odd symmetry with zero nodes at -1 and size: f(-1) = 0, f(4) = 0,
	// f(-2) = -f(0), f(5) = -f(3).
	if _, sign := Resolve(-1, 4, DST1); sign != Dropped {
		t.Error("dst1: node -1 not dropped")
	}
	if _, sign := Resolve(4, 4, DST1); sign != Dropped {
		t.Error("dst1: node size not dropped")
	}
	if idx, sign := Resolve(-2, 4, DST1); idx != 0 || sign != -1 {
		t.Errorf("dst1(-2) = (%d, %d), want (0, -1)", idx, sign)
	}
	if idx, sign := Resolve(5, 4, DST1); idx != 3 || sign != -1 {
		t.Errorf("dst1(5) = (%d, %d), want (3, -1)", idx, sign)
	}
}

func TestResolveDFT(t *testing.T) {
	tests := []struct{ in, want int }{
		{-1, 3}, {-4, 0}, {-5, 3}, {4, 0}, {9, 1},
	}
	for _, tt := range tests {
		idx, sign := Resolve(tt.in, 4, DFT)
		if idx != tt.want || sign != 1 {
			t.Errorf("dft(%d) = (%d, %d), want (%d, 1)", tt.in, idx, sign, tt.want)
		}
	}
}

func TestResolveNoCheck(t *testing.T) {
	idx, sign := Resolve(-3, 4, NoCheck)
	if idx != -3 || sign != 1 {
		t.Errorf("nocheck(-3) = (%d, %d), want (-3, 1)", idx, sign)
	}
}

// TestPeriodicityRoundTrip checks the periodicity law: resolving an index one
// full period away from an in-range index yields the same resolved index and
// sign, for every periodic mode.
func TestPeriodicityRoundTrip(t *testing.T) {
	modes := []Mode{DCT1, DCT2, DST1, DST2, DFT}
	const size = 5
	for _, mode := range modes {
		period := mode.Period(size)
		if period == 0 {
			t.Fatalf("%s: expected periodic mode", mode)
		}
		for i := -2 * period; i <= 2*period; i++ {
			idx0, sign0 := Resolve(i, size, mode)
			idx1, sign1 := Resolve(i+period, size, mode)
			if idx0 != idx1 || sign0 != sign1 {
				t.Errorf("%s: Resolve(%d) = (%d, %d) but Resolve(%d) = (%d, %d)",
					mode, i, idx0, sign0, i+period, idx1, sign1)
			}
		}
	}
}

// TestFarOutOfRange exercises indices many periods away; the modulo folding
// must stay exact (no iterative reflection).
func TestFarOutOfRange(t *testing.T) {
	modes := []Mode{DCT1, DCT2, DST1, DST2, DFT}
	const size = 7
	for _, mode := range modes {
		period := mode.Period(size)
		for i := 0; i < size; i++ {
			idx, sign := Resolve(i+1000*period, size, mode)
			if idx != i || sign != 1 {
				t.Errorf("%s: far-out index %d resolved to (%d, %d), want (%d, 1)",
					mode, i+1000*period, idx, sign, i)
			}
			idx, sign = Resolve(i-1000*period, size, mode)
			if idx != i || sign != 1 {
				t.Errorf("%s: far-out index %d resolved to (%d, %d), want (%d, 1)",
					mode, i-1000*period, idx, sign, i)
			}
		}
	}
}

func TestFlipsSign(t *testing.T) {
	if !DST1.FlipsSign() || !DST2.FlipsSign() {
		t.Error("DST modes must report sign flips")
	}
	if Zero.FlipsSign() || DCT2.FlipsSign() || DFT.FlipsSign() {
		t.Error("non-DST modes must not report sign flips")
	}
}
