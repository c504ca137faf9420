// Package parallel provides the worker fan-out used by the CPU backend.
//
// Kernels are data-parallel loops over output positions. Pull and Grad own
// disjoint output positions per worker and need no synchronization; Push and
// Count accumulate into shared source cells and therefore run through Ranges,
// one private accumulator per worker, reduced after the join.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 1024, // Interpolating one voxel is cheap; chunk coarsely.
	}
}

// Sequential returns a config that disables the fan-out entirely.
func Sequential() Config {
	return Config{Enabled: false, NumWorkers: 1, MinChunkSize: 1}
}

// For executes f(i) for i in [0, n) with optional parallelism.
// Falls back to sequential execution if parallelism is disabled or n is too
// small. Each index is visited exactly once by exactly one goroutine.
func For(n int, f func(i int), cfg Config) {
	if !cfg.Enabled || n < cfg.MinChunkSize {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	var wg sync.WaitGroup
	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize)

	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				f(i)
			}
		}(start, end)
	}
	wg.Wait()
}

// Range is a half-open index interval [Start, End).
type Range struct {
	Start, End int
}

// Ranges splits [0, n) into contiguous chunks, one per worker, for kernels
// that need a private accumulator per worker (Push/Count). Returns a single
// range when parallelism is disabled or n is too small.
func Ranges(n int, cfg Config) []Range {
	if !cfg.Enabled || n < cfg.MinChunkSize || cfg.NumWorkers <= 1 {
		return []Range{{0, n}}
	}

	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize)
	var ranges []Range
	for start := 0; start < n; start += chunkSize {
		ranges = append(ranges, Range{start, min(start+chunkSize, n)})
	}
	return ranges
}

// ForRanges runs f once per range on its own goroutine and waits for all of
// them. The worker index selects the caller's private accumulator.
func ForRanges(ranges []Range, f func(worker int, r Range)) {
	if len(ranges) == 1 {
		f(0, ranges[0])
		return
	}
	var wg sync.WaitGroup
	for w, r := range ranges {
		wg.Add(1)
		go func(w int, r Range) {
			defer wg.Done()
			f(w, r)
		}(w, r)
	}
	wg.Wait()
}
