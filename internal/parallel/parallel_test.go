package parallel

import (
	"sync/atomic"
	"testing"
)

func TestForVisitsEveryIndexOnce(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 8}
	const n = 1000

	var visits [n]int32
	For(n, func(i int) {
		atomic.AddInt32(&visits[i], 1)
	}, cfg)

	for i, v := range visits {
		if v != 1 {
			t.Fatalf("index %d visited %d times", i, v)
		}
	}
}

func TestForSequentialFallback(t *testing.T) {
	var count int // Not atomic: the fallback runs on one goroutine.
	For(100, func(i int) { count++ }, Sequential())
	if count != 100 {
		t.Errorf("visited %d indices, want 100", count)
	}
}

func TestRangesCoverWithoutOverlap(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 3, MinChunkSize: 4}
	ranges := Ranges(100, cfg)

	next := 0
	for _, r := range ranges {
		if r.Start != next {
			t.Fatalf("range starts at %d, want %d", r.Start, next)
		}
		if r.End <= r.Start {
			t.Fatalf("empty range %v", r)
		}
		next = r.End
	}
	if next != 100 {
		t.Errorf("ranges cover up to %d, want 100", next)
	}
}

func TestRangesSingleWhenDisabled(t *testing.T) {
	ranges := Ranges(100, Sequential())
	if len(ranges) != 1 || ranges[0] != (Range{0, 100}) {
		t.Errorf("got %v, want a single full range", ranges)
	}
}

func TestForRanges(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1}
	ranges := Ranges(64, cfg)

	var total int64
	ForRanges(ranges, func(worker int, r Range) {
		var local int64
		for i := r.Start; i < r.End; i++ {
			local += int64(i)
		}
		atomic.AddInt64(&total, local)
	})

	if total != 64*63/2 {
		t.Errorf("sum = %d, want %d", total, 64*63/2)
	}
}
